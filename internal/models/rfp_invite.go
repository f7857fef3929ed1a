package models

import (
	"time"

	"github.com/google/uuid"
)

// RFPInvite is a directed invitation to one advisor for one request-for-proposal.
// It carries the requirement definition all competing proposals are measured against.
type RFPInvite struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	RFPID            uuid.UUID    `json:"rfp_id" db:"rfp_id"`
	ProjectID        uuid.UUID    `json:"project_id" db:"project_id"`
	AdvisorID        uuid.UUID    `json:"advisor_id" db:"advisor_id"`
	AdvisorType      string       `json:"advisor_type" db:"advisor_type"`
	Status           InviteStatus `json:"status" db:"status"`
	RequestText      string       `json:"request_text" db:"request_text"`
	PaymentTermsText *string      `json:"payment_terms_text,omitempty" db:"payment_terms_text"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

// FeeItem is a fee line the requester defined on the RFP.
// Matched against submitted line items by id first, then by normalized description.
type FeeItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RFPID       uuid.UUID `json:"rfp_id" db:"rfp_id"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Unit        *string   `json:"unit,omitempty" db:"unit"`
	IsOptional  bool      `json:"is_optional" db:"is_optional"`
}

// ServiceScopeItem is a scope-of-service line the requester defined on the RFP.
// Covered when its id appears in a proposal's selected services.
type ServiceScopeItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	RFPID      uuid.UUID `json:"rfp_id" db:"rfp_id"`
	Name       string    `json:"name" db:"name"`
	IsOptional bool      `json:"is_optional" db:"is_optional"`
}
