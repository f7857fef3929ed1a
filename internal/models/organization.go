package models

import (
	"time"

	"rfp-service/internal/apiutil"

	"github.com/google/uuid"
)

// OrganizationPolicy is the procuring organization's rule set.
// Every field is optional; an absent policy (or field) disables the matching check.
type OrganizationPolicy struct {
	ID                      uuid.UUID           `json:"id" db:"id"`
	OrganizationID          string              `json:"organization_id" db:"organization_id"`
	AllowedCurrencies       apiutil.StringArray `json:"allowed_currencies" db:"allowed_currencies"`
	MaxUpfrontPercent       *float64            `json:"max_upfront_percent,omitempty" db:"max_upfront_percent"`
	ProcurementRules        apiutil.JSONMap     `json:"procurement_rules" db:"procurement_rules"`
	RequiredContractClauses apiutil.StringArray `json:"required_contract_clauses" db:"required_contract_clauses"`
	CreatedAt               time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at" db:"updated_at"`
}
