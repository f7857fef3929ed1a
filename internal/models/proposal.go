package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"rfp-service/internal/apiutil"

	"github.com/google/uuid"
)

// FeeLineItem is a single fee row submitted on a proposal.
// FeeItemID references the RFP fee item when the vendor used the structured form;
// free-typed rows only carry a description.
type FeeLineItem struct {
	FeeItemID   *uuid.UUID `json:"fee_item_id,omitempty"`
	Description string     `json:"description"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
}

type FeeLineItems []FeeLineItem

func (f FeeLineItems) Value() (driver.Value, error) {
	if f == nil {
		return json.Marshal([]FeeLineItem{})
	}
	return json.Marshal(f)
}

func (f *FeeLineItems) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("FeeLineItems: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, f)
}

// MilestoneAdjustment is a payment milestone entry proposed by the vendor.
type MilestoneAdjustment struct {
	Description string  `json:"description"`
	Trigger     string  `json:"trigger,omitempty"`
	Percent     float64 `json:"percent"`
}

type MilestoneAdjustments []MilestoneAdjustment

func (m MilestoneAdjustments) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal([]MilestoneAdjustment{})
	}
	return json.Marshal(m)
}

func (m *MilestoneAdjustments) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("MilestoneAdjustments: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, m)
}

type Proposal struct {
	ID                   uuid.UUID            `json:"id" db:"id"`
	ProjectID            uuid.UUID            `json:"project_id" db:"project_id"`
	AdvisorID            uuid.UUID            `json:"advisor_id" db:"advisor_id"`
	RFPInviteID          uuid.UUID            `json:"rfp_invite_id" db:"rfp_invite_id"`
	Price                *float64             `json:"price,omitempty" db:"price"`
	Currency             string               `json:"currency" db:"currency"`
	TimelineDays         *int                 `json:"timeline_days,omitempty" db:"timeline_days"`
	ScopeText            string               `json:"scope_text" db:"scope_text"`
	ExtractedText        *string              `json:"extracted_text,omitempty" db:"extracted_text"`
	TermsText            *string              `json:"terms_text,omitempty" db:"terms_text"`
	SupplierName         *string              `json:"supplier_name,omitempty" db:"supplier_name"`
	DocumentObjectKey    *string              `json:"document_object_key,omitempty" db:"document_object_key"`
	FeeLineItems         FeeLineItems         `json:"fee_line_items" db:"fee_line_items"`
	SelectedServices     apiutil.StringArray  `json:"selected_services" db:"selected_services"`
	MilestoneAdjustments MilestoneAdjustments `json:"milestone_adjustments" db:"milestone_adjustments"`
	Status               ProposalStatus       `json:"status" db:"status"`
	SubmittedAt          time.Time            `json:"submitted_at" db:"submitted_at"`
	CurrentVersion       int                  `json:"current_version" db:"current_version"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
}

// EvaluationText returns the best available scope text for this proposal:
// the extracted document text when present and longer than the form text.
func (p *Proposal) EvaluationText() string {
	if p.ExtractedText != nil && len(*p.ExtractedText) > len(p.ScopeText) {
		return *p.ExtractedText
	}
	return p.ScopeText
}
