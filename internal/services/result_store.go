package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"rfp-service/internal/apiutil"
	"rfp-service/internal/models"
	"rfp-service/internal/repository"

	"github.com/google/uuid"
)

// ResultStore persists merged evaluation results and serves the idempotency
// read path. Postgres is authoritative; the repository keeps a Redis hot
// cache in front of it.
type ResultStore struct {
	resultRepo *repository.EvaluationResultRepository
}

func NewResultStore(resultRepo *repository.EvaluationResultRepository) *ResultStore {
	return &ResultStore{resultRepo: resultRepo}
}

// ReadCached rebuilds a previously completed response for the frame's
// candidate set. It returns nil when any targeted proposal lacks a completed
// result; a partial set always triggers a fresh run.
func (s *ResultStore) ReadCached(ctx context.Context, frame *models.EvaluationFrame) (*models.EvaluationResponse, error) {
	ids := make([]uuid.UUID, 0, len(frame.Candidates))
	for i := range frame.Candidates {
		ids = append(ids, frame.Candidates[i].Proposal.ID)
	}

	stored, err := s.resultRepo.GetByProposalIDs(ctx, ids)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to read stored evaluation results", err)
	}

	rows := make([]models.EvaluationResult, 0, len(ids))
	for _, id := range ids {
		row, ok := stored[id]
		if !ok || row.Status != models.ResultCompleted {
			return nil, nil
		}
		rows = append(rows, row)
	}

	response, err := responseFromRows(frame.Project.ID, rows)
	if err != nil {
		// A corrupt stored payload falls back to a fresh run.
		slog.Warn("Discarding undecodable stored evaluation results", "project_id", frame.Project.ID, "error", err)
		return nil, nil
	}

	slog.Info("Serving evaluation from stored results", "project_id", frame.Project.ID, "proposals", len(rows))
	return response, nil
}

// Persist writes one row per ranked proposal. Each row carries the full
// merged record and the shared batch summary so a cached read can rebuild the
// response without recomputation.
func (s *ResultStore) Persist(response *models.EvaluationResponse) error {
	summaryMap, err := toJSONMap(response.BatchSummary)
	if err != nil {
		return wrapEvalError(CodeEvaluationFailed, "failed to encode batch summary", err)
	}

	now := time.Now()
	meta := response.EvaluationMetadata

	for i := range response.RankedProposals {
		rp := &response.RankedProposals[i]

		payload, err := toJSONMap(rp)
		if err != nil {
			return wrapEvalError(CodeEvaluationFailed, "failed to encode ranked proposal", err)
		}

		row := &models.EvaluationResult{
			ProposalID:   rp.ProposalID,
			ProjectID:    response.ProjectID,
			FinalScore:   rp.FinalScore,
			Rank:         rp.Rank,
			Status:       models.ResultCompleted,
			Payload:      payload,
			BatchSummary: summaryMap,
			CompletedAt:  &now,
		}
		if meta != nil {
			row.ModelName = meta.ModelName
			row.Provider = meta.Provider
			row.ElapsedMS = meta.ElapsedMS
		}

		if err := s.resultRepo.Upsert(row); err != nil {
			return wrapEvalError(CodeEvaluationFailed, "failed to persist evaluation result", err)
		}
	}

	return nil
}

// GetByProject returns the stored response for a project, or NOT_FOUND when
// nothing has been evaluated yet.
func (s *ResultStore) GetByProject(projectID uuid.UUID) (*models.EvaluationResponse, error) {
	rows, err := s.resultRepo.GetByProjectID(projectID)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to read stored evaluation results", err)
	}
	if len(rows) == 0 {
		return nil, newEvalError(CodeNotFound, "no evaluation results exist for the project")
	}

	response, err := responseFromRows(projectID, rows)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to decode stored evaluation results", err)
	}
	return response, nil
}

// GetByProposal returns the stored merged record for one proposal.
func (s *ResultStore) GetByProposal(ctx context.Context, proposalID uuid.UUID) (*models.RankedProposal, error) {
	row, err := s.resultRepo.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to read stored evaluation result", err)
	}
	if row == nil {
		return nil, newEvalError(CodeNotFound, "no evaluation result exists for the proposal")
	}

	var rp models.RankedProposal
	if err := fromJSONMap(row.Payload, &rp); err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to decode stored evaluation result", err)
	}
	return &rp, nil
}

func responseFromRows(projectID uuid.UUID, rows []models.EvaluationResult) (*models.EvaluationResponse, error) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Rank != rows[j].Rank {
			return rows[i].Rank < rows[j].Rank
		}
		return rows[i].ProposalID.String() < rows[j].ProposalID.String()
	})

	ranked := make([]models.RankedProposal, 0, len(rows))
	for i := range rows {
		var rp models.RankedProposal
		if err := fromJSONMap(rows[i].Payload, &rp); err != nil {
			return nil, err
		}
		ranked = append(ranked, rp)
	}

	var summary models.BatchSummary
	if err := fromJSONMap(rows[0].BatchSummary, &summary); err != nil {
		return nil, err
	}

	response := &models.EvaluationResponse{
		ProjectID:       projectID,
		Cached:          true,
		BatchSummary:    summary,
		RankedProposals: ranked,
	}
	if rows[0].ModelName != "" || rows[0].Provider != "" {
		response.EvaluationMetadata = &models.EvaluationMetadata{
			ModelName: rows[0].ModelName,
			Provider:  rows[0].Provider,
			ElapsedMS: rows[0].ElapsedMS,
		}
	}
	return response, nil
}

func toJSONMap(v any) (apiutil.JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m apiutil.JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromJSONMap(m apiutil.JSONMap, target any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
