package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AdvisorRepository struct {
	db *sqlx.DB
}

func NewAdvisorRepository(db *sqlx.DB) *AdvisorRepository {
	return &AdvisorRepository{db: db}
}

// GetByIDs returns the advisors for the given ids, keyed by advisor id.
func (r *AdvisorRepository) GetByIDs(ids []uuid.UUID) (map[uuid.UUID]models.Advisor, error) {
	result := make(map[uuid.UUID]models.Advisor, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM advisors WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build advisor query: %w", err)
	}

	var advisors []models.Advisor
	if err := r.db.Select(&advisors, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get advisors: %w", err)
	}

	for _, a := range advisors {
		result[a.ID] = a
	}
	return result, nil
}

// GetVendorCompanyByAdvisorID resolves the vendor company profile of an
// advisor. Returns nil without error when no record exists; callers treat the
// lookup as best-effort.
func (r *AdvisorRepository) GetVendorCompanyByAdvisorID(advisorID uuid.UUID) (*models.VendorCompany, error) {
	var company models.VendorCompany
	query := `SELECT * FROM vendor_companies WHERE advisor_id = $1 ORDER BY created_at DESC LIMIT 1`

	err := r.db.Get(&company, query, advisorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor company: %w", err)
	}

	return &company, nil
}
