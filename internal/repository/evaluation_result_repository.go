package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const resultCacheTTL = 24 * time.Hour

type EvaluationResultRepository struct {
	db          *sqlx.DB
	redisClient *redis.Client
}

func NewEvaluationResultRepository(db *sqlx.DB, redisClient *redis.Client) *EvaluationResultRepository {
	return &EvaluationResultRepository{
		db:          db,
		redisClient: redisClient,
	}
}

func resultCacheKey(proposalID uuid.UUID) string {
	return fmt.Sprintf("evaluation:result:%s", proposalID)
}

// Upsert overwrites any prior result for the proposal.
func (r *EvaluationResultRepository) Upsert(result *models.EvaluationResult) error {
	now := time.Now()
	result.UpdatedAt = now
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}

	query := `
		INSERT INTO evaluation_results (
			proposal_id, project_id, final_score, rank, status,
			payload, batch_summary, model_name, provider, elapsed_ms,
			completed_at, created_at, updated_at
		) VALUES (
			:proposal_id, :project_id, :final_score, :rank, :status,
			:payload, :batch_summary, :model_name, :provider, :elapsed_ms,
			:completed_at, :created_at, :updated_at
		)
		ON CONFLICT (proposal_id) DO UPDATE SET
			project_id = EXCLUDED.project_id, final_score = EXCLUDED.final_score,
			rank = EXCLUDED.rank, status = EXCLUDED.status,
			payload = EXCLUDED.payload, batch_summary = EXCLUDED.batch_summary,
			model_name = EXCLUDED.model_name, provider = EXCLUDED.provider,
			elapsed_ms = EXCLUDED.elapsed_ms, completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExec(query, result)
	if err != nil {
		return fmt.Errorf("failed to upsert evaluation result: %w", err)
	}

	r.writeCache(result)

	return nil
}

// writeCache refreshes the hot cache entry. Cache failures are logged, never
// surfaced; Postgres stays authoritative.
func (r *EvaluationResultRepository) writeCache(result *models.EvaluationResult) {
	if r.redisClient == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn("Failed to marshal evaluation result for cache", "proposal_id", result.ProposalID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.redisClient.Set(ctx, resultCacheKey(result.ProposalID), data, resultCacheTTL).Err(); err != nil {
		slog.Warn("Failed to cache evaluation result", "proposal_id", result.ProposalID, "error", err)
	}
}

// GetByProposalIDs returns persisted results keyed by proposal id. The Redis
// hot cache is consulted first; misses fall through to Postgres.
func (r *EvaluationResultRepository) GetByProposalIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.EvaluationResult, error) {
	results := make(map[uuid.UUID]models.EvaluationResult, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if cached, ok := r.readCache(ctx, id); ok {
			results[id] = *cached
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return results, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM evaluation_results WHERE proposal_id IN (?)`, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to build result query: %w", err)
	}

	var rows []models.EvaluationResult
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get evaluation results: %w", err)
	}

	for _, row := range rows {
		results[row.ProposalID] = row
		r.writeCache(&row)
	}

	return results, nil
}

func (r *EvaluationResultRepository) readCache(ctx context.Context, id uuid.UUID) (*models.EvaluationResult, bool) {
	if r.redisClient == nil {
		return nil, false
	}

	data, err := r.redisClient.Get(ctx, resultCacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var result models.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("Discarding undecodable cached evaluation result", "proposal_id", id, "error", err)
		return nil, false
	}

	return &result, true
}

// GetByProjectID returns all persisted results for a project in stored rank order.
func (r *EvaluationResultRepository) GetByProjectID(projectID uuid.UUID) ([]models.EvaluationResult, error) {
	var rows []models.EvaluationResult
	query := `SELECT * FROM evaluation_results WHERE project_id = $1 ORDER BY rank ASC, proposal_id ASC`

	if err := r.db.Select(&rows, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to get evaluation results by project: %w", err)
	}

	return rows, nil
}

// GetByProposalID returns one persisted result, or nil when none exists.
func (r *EvaluationResultRepository) GetByProposalID(ctx context.Context, proposalID uuid.UUID) (*models.EvaluationResult, error) {
	results, err := r.GetByProposalIDs(ctx, []uuid.UUID{proposalID})
	if err != nil {
		return nil, err
	}
	if result, ok := results[proposalID]; ok {
		return &result, nil
	}
	return nil, nil
}
