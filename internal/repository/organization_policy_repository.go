package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rfp-service/internal/models"

	"github.com/jmoiron/sqlx"
)

type OrganizationPolicyRepository struct {
	db *sqlx.DB
}

func NewOrganizationPolicyRepository(db *sqlx.DB) *OrganizationPolicyRepository {
	return &OrganizationPolicyRepository{db: db}
}

// GetByOrganizationID returns the organization's policy, or nil when none is
// configured. Absence disables the corresponding prechecks.
func (r *OrganizationPolicyRepository) GetByOrganizationID(organizationID string) (*models.OrganizationPolicy, error) {
	var policy models.OrganizationPolicy
	query := `SELECT * FROM organization_policies WHERE organization_id = $1`

	err := r.db.Get(&policy, query, organizationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization policy: %w", err)
	}

	return &policy, nil
}
