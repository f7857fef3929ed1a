package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is the procurement project proposals are evaluated against.
// Immutable as far as this service is concerned.
type Project struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	ProjectType    string    `json:"project_type" db:"project_type"`
	Location       *string   `json:"location,omitempty" db:"location"`
	BudgetMin      *float64  `json:"budget_min,omitempty" db:"budget_min"`
	BudgetMax      *float64  `json:"budget_max,omitempty" db:"budget_max"`
	LargeScale     bool      `json:"large_scale" db:"large_scale"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Advisor struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AdvisorType string    `json:"advisor_type" db:"advisor_type"`
	CompanyName *string   `json:"company_name,omitempty" db:"company_name"`
	Email       *string   `json:"email,omitempty" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VendorCompany is a best-effort profile resolved via the advisor.
// A missing record never fails an evaluation run.
type VendorCompany struct {
	ID             uuid.UUID `json:"id" db:"id"`
	AdvisorID      uuid.UUID `json:"advisor_id" db:"advisor_id"`
	Name           string    `json:"name" db:"name"`
	RegistrationID *string   `json:"registration_id,omitempty" db:"registration_id"`
	ContactEmail   *string   `json:"contact_email,omitempty" db:"contact_email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
