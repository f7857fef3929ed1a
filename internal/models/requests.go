package models

import (
	"errors"

	"github.com/google/uuid"
)

// EvaluateRequest triggers an evaluation run for a project's proposals.
type EvaluateRequest struct {
	ProjectID       uuid.UUID   `json:"project_id"`
	ProposalIDs     []uuid.UUID `json:"proposal_ids,omitempty"`
	ForceReevaluate bool        `json:"force_reevaluate,omitempty"`
}

func (r *EvaluateRequest) Validate() error {
	if r.ProjectID == uuid.Nil {
		return errors.New("project_id is required")
	}
	for _, id := range r.ProposalIDs {
		if id == uuid.Nil {
			return errors.New("proposal_ids must not contain empty ids")
		}
	}
	return nil
}
