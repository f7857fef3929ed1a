package repository

import (
	"fmt"
	"time"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ProposalRepository struct {
	db *sqlx.DB
}

func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// GetEligibleByProject loads all proposals for the project whose status is in
// the eligible set, optionally restricted to an explicit id subset.
func (r *ProposalRepository) GetEligibleByProject(projectID uuid.UUID, proposalIDs []uuid.UUID) ([]models.Proposal, error) {
	statuses := make([]string, 0, len(models.EligibleProposalStatuses))
	for _, s := range models.EligibleProposalStatuses {
		statuses = append(statuses, string(s))
	}

	var (
		query string
		args  []any
		err   error
	)

	if len(proposalIDs) > 0 {
		query, args, err = sqlx.In(
			`SELECT * FROM proposals WHERE project_id = ? AND status IN (?) AND id IN (?) ORDER BY submitted_at DESC`,
			projectID, statuses, proposalIDs)
	} else {
		query, args, err = sqlx.In(
			`SELECT * FROM proposals WHERE project_id = ? AND status IN (?) ORDER BY submitted_at DESC`,
			projectID, statuses)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build proposal query: %w", err)
	}

	var proposals []models.Proposal
	if err := r.db.Select(&proposals, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}

	return proposals, nil
}

// UpdateExtractedText stores document text recovered by the extraction
// collaborator so later runs can reuse it.
func (r *ProposalRepository) UpdateExtractedText(proposalID uuid.UUID, text string) error {
	query := `UPDATE proposals SET extracted_text = $1, updated_at = $2 WHERE id = $3`

	_, err := r.db.Exec(query, text, time.Now(), proposalID)
	if err != nil {
		return fmt.Errorf("failed to update extracted text: %w", err)
	}

	return nil
}
