package services

import (
	"context"
	"log/slog"
	"time"

	"rfp-service/internal/event"
	"rfp-service/internal/extraction"
	"rfp-service/internal/models"

	"github.com/google/uuid"
)

// FrameBuilder assembles the input set for one run.
type FrameBuilder interface {
	BuildFrame(projectID uuid.UUID, proposalIDs []uuid.UUID) (*models.EvaluationFrame, error)
}

// NarrativeGenerator produces the narrative review for a locked ranking.
type NarrativeGenerator interface {
	CheckConfigured() error
	GenerateBatchReview(ctx context.Context, frame *models.EvaluationFrame, locked []models.LockedScore) (*models.RawBatchReview, error)
	ProviderName() string
	ModelName() string
}

// ResultReaderWriter is the persistence surface the orchestrator needs.
type ResultReaderWriter interface {
	ReadCached(ctx context.Context, frame *models.EvaluationFrame) (*models.EvaluationResponse, error)
	Persist(response *models.EvaluationResponse) error
}

// TextExtractor recovers document text for proposals with thin scope text.
type TextExtractor interface {
	ExtractProposalText(ctx context.Context, objectKey string) (string, error)
}

// ExtractedTextWriter persists recovered document text back to the proposal.
type ExtractedTextWriter interface {
	UpdateExtractedText(proposalID uuid.UUID, text string) error
}

// CompletionPublisher emits the run-completed event. Best effort.
type CompletionPublisher interface {
	PublishEvaluationCompleted(ctx context.Context, evt event.EvaluationCompletedEvent)
}

// EvaluationService orchestrates one run end to end:
// frame -> cached read -> extraction -> precheck -> scoring -> rank lock ->
// narrative -> validate and merge -> persist -> publish.
type EvaluationService struct {
	frames    FrameBuilder
	narrative NarrativeGenerator
	store     ResultReaderWriter
	extractor TextExtractor
	proposals ExtractedTextWriter
	publisher CompletionPublisher
}

func NewEvaluationService(
	frames FrameBuilder,
	narrative NarrativeGenerator,
	store ResultReaderWriter,
	extractor TextExtractor,
	proposals ExtractedTextWriter,
	publisher CompletionPublisher,
) *EvaluationService {
	return &EvaluationService{
		frames:    frames,
		narrative: narrative,
		store:     store,
		extractor: extractor,
		proposals: proposals,
		publisher: publisher,
	}
}

// Evaluate runs one evaluation. Repeated calls with an unchanged proposal set
// are served from stored results without touching the narrative backend,
// unless the caller forces a re-evaluation.
func (s *EvaluationService) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.EvaluationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, wrapEvalError(CodeValidation, err.Error(), err)
	}

	// Fail before any data is read when no backend is wired.
	if err := s.narrative.CheckConfigured(); err != nil {
		return nil, err
	}

	// Step 1: aggregate inputs
	frame, err := s.frames.BuildFrame(req.ProjectID, req.ProposalIDs)
	if err != nil {
		return nil, err
	}

	// Step 2: idempotency - serve a completed prior run as-is
	if !req.ForceReevaluate {
		cached, err := s.store.ReadCached(ctx, frame)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	// Step 3: best-effort document text recovery
	s.enrichScopeText(ctx, frame)

	// Step 4: policy precheck
	violations := RunPolicyPrecheck(frame.Candidates, frame.Policy)

	// Step 5: deterministic scoring and rank lock
	scores := ComputeDeterministicScores(frame, violations)
	locked := LockRanks(scores)

	// Step 6: narrative generation, timed
	started := time.Now()
	raw, err := s.narrative.GenerateBatchReview(ctx, frame, locked)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

	// Step 7: validate and merge
	response, err := ValidateAndMerge(frame, locked, raw)
	if err != nil {
		return nil, err
	}
	response.EvaluationMetadata = &models.EvaluationMetadata{
		ModelName: s.narrative.ModelName(),
		Provider:  s.narrative.ProviderName(),
		ElapsedMS: elapsed.Milliseconds(),
	}

	// Step 8: persist
	if err := s.store.Persist(response); err != nil {
		return nil, err
	}

	// Step 9: notify listeners, best effort
	s.publishCompleted(ctx, response)

	slog.Info("Evaluation run completed",
		"project_id", response.ProjectID,
		"mode", response.BatchSummary.EvaluationMode,
		"proposals", len(response.RankedProposals),
		"elapsed_ms", elapsed.Milliseconds())

	return response, nil
}

// enrichScopeText attempts document extraction for candidates whose scope
// text is below the threshold. Failures are logged and the form text is used
// as-is.
func (s *EvaluationService) enrichScopeText(ctx context.Context, frame *models.EvaluationFrame) {
	if s.extractor == nil {
		return
	}

	for i := range frame.Candidates {
		p := &frame.Candidates[i].Proposal
		if len(p.EvaluationText()) >= extraction.MinScopeTextLength || p.DocumentObjectKey == nil {
			continue
		}

		text, err := s.extractor.ExtractProposalText(ctx, *p.DocumentObjectKey)
		if err != nil {
			slog.Warn("Document text extraction failed, using form text",
				"proposal_id", p.ID, "error", err)
			continue
		}
		if len(text) <= len(p.ScopeText) {
			continue
		}

		p.ExtractedText = &text
		if s.proposals != nil {
			if err := s.proposals.UpdateExtractedText(p.ID, text); err != nil {
				slog.Warn("Failed to persist extracted text", "proposal_id", p.ID, "error", err)
			}
		}
	}
}

func (s *EvaluationService) publishCompleted(ctx context.Context, response *models.EvaluationResponse) {
	if s.publisher == nil || len(response.RankedProposals) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(response.RankedProposals))
	for i := range response.RankedProposals {
		ids = append(ids, response.RankedProposals[i].ProposalID)
	}

	s.publisher.PublishEvaluationCompleted(ctx, event.EvaluationCompletedEvent{
		ProjectID:      response.ProjectID,
		ProposalIDs:    ids,
		EvaluationMode: string(response.BatchSummary.EvaluationMode),
		TopProposalID:  response.RankedProposals[0].ProposalID,
		CompletedAt:    time.Now(),
	})
}
