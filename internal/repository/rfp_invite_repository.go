package repository

import (
	"fmt"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RFPInviteRepository struct {
	db *sqlx.DB
}

func NewRFPInviteRepository(db *sqlx.DB) *RFPInviteRepository {
	return &RFPInviteRepository{db: db}
}

// GetByIDs returns the invites for the given ids, keyed by invite id.
// Missing ids are simply absent from the map.
func (r *RFPInviteRepository) GetByIDs(ids []uuid.UUID) (map[uuid.UUID]models.RFPInvite, error) {
	result := make(map[uuid.UUID]models.RFPInvite, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM rfp_invites WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build invite query: %w", err)
	}

	var invites []models.RFPInvite
	if err := r.db.Select(&invites, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get rfp invites: %w", err)
	}

	for _, inv := range invites {
		result[inv.ID] = inv
	}
	return result, nil
}

func (r *RFPInviteRepository) GetFeeItemsByRFPID(rfpID uuid.UUID) ([]models.FeeItem, error) {
	var items []models.FeeItem
	query := `SELECT * FROM fee_items WHERE rfp_id = $1 ORDER BY description ASC`

	if err := r.db.Select(&items, query, rfpID); err != nil {
		return nil, fmt.Errorf("failed to get fee items: %w", err)
	}

	return items, nil
}

func (r *RFPInviteRepository) GetScopeItemsByRFPID(rfpID uuid.UUID) ([]models.ServiceScopeItem, error) {
	var items []models.ServiceScopeItem
	query := `SELECT * FROM service_scope_items WHERE rfp_id = $1 ORDER BY name ASC`

	if err := r.db.Select(&items, query, rfpID); err != nil {
		return nil, fmt.Errorf("failed to get service scope items: %w", err)
	}

	return items, nil
}
