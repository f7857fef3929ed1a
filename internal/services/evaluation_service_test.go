package services

import (
	"context"
	"testing"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST DOUBLES
// ============================================================================

type stubFrames struct {
	frame *models.EvaluationFrame
	err   error
}

func (s *stubFrames) BuildFrame(projectID uuid.UUID, proposalIDs []uuid.UUID) (*models.EvaluationFrame, error) {
	return s.frame, s.err
}

type stubNarrative struct {
	review *models.RawBatchReview
	err    error
	calls  int
}

func (s *stubNarrative) CheckConfigured() error { return nil }

func (s *stubNarrative) GenerateBatchReview(ctx context.Context, frame *models.EvaluationFrame, locked []models.LockedScore) (*models.RawBatchReview, error) {
	s.calls++
	return s.review, s.err
}

func (s *stubNarrative) ProviderName() string { return "stub" }
func (s *stubNarrative) ModelName() string    { return "stub-model" }

type stubResultStore struct {
	cached    *models.EvaluationResponse
	persisted []*models.EvaluationResponse
}

func (s *stubResultStore) ReadCached(ctx context.Context, frame *models.EvaluationFrame) (*models.EvaluationResponse, error) {
	return s.cached, nil
}

func (s *stubResultStore) Persist(response *models.EvaluationResponse) error {
	s.persisted = append(s.persisted, response)
	return nil
}

func singleCandidateFrame() (*models.EvaluationFrame, uuid.UUID) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	frame := createTestFrame(candidate)
	return frame, candidate.Proposal.ID
}

func reviewBatchFor(id uuid.UUID) *models.RawBatchReview {
	return &models.RawBatchReview{
		BatchSummary: models.RawBatchSummary{EvaluationMode: "SINGLE"},
		RankedProposals: []models.RawProposalReview{{
			ProposalID:        id.String(),
			VendorName:        "Acme Advisory",
			OverallAssessment: strPtr("covers the requested scope"),
		}},
	}
}

// ============================================================================
// TEST SUITE 1: REQUEST VALIDATION
// ============================================================================

func TestEvaluate_RejectsMissingProjectID(t *testing.T) {
	svc := NewEvaluationService(&stubFrames{}, &stubNarrative{}, &stubResultStore{}, nil, nil, nil)

	_, err := svc.Evaluate(context.Background(), &models.EvaluateRequest{})

	assert.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestEvaluate_RejectsNilProposalID(t *testing.T) {
	svc := NewEvaluationService(&stubFrames{}, &stubNarrative{}, &stubResultStore{}, nil, nil, nil)

	req := &models.EvaluateRequest{
		ProjectID:   uuid.New(),
		ProposalIDs: []uuid.UUID{uuid.Nil},
	}

	_, err := svc.Evaluate(context.Background(), req)

	assert.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

// ============================================================================
// TEST SUITE 2: IDEMPOTENCY
// ============================================================================

func TestEvaluate_ServesStoredResultsWithoutBackendCall(t *testing.T) {
	frame, _ := singleCandidateFrame()
	cached := &models.EvaluationResponse{ProjectID: frame.Project.ID, Cached: true}

	narrative := &stubNarrative{}
	store := &stubResultStore{cached: cached}
	svc := NewEvaluationService(&stubFrames{frame: frame}, narrative, store, nil, nil, nil)

	response, err := svc.Evaluate(context.Background(), &models.EvaluateRequest{ProjectID: frame.Project.ID})

	assert.NoError(t, err)
	assert.True(t, response.Cached)
	assert.Equal(t, 0, narrative.calls, "a cached run must never touch the narrative backend")
	assert.Empty(t, store.persisted)
}

func TestEvaluate_ForceReevaluateBypassesCache(t *testing.T) {
	frame, proposalID := singleCandidateFrame()
	cached := &models.EvaluationResponse{ProjectID: frame.Project.ID, Cached: true}

	narrative := &stubNarrative{review: reviewBatchFor(proposalID)}
	store := &stubResultStore{cached: cached}
	svc := NewEvaluationService(&stubFrames{frame: frame}, narrative, store, nil, nil, nil)

	response, err := svc.Evaluate(context.Background(), &models.EvaluateRequest{
		ProjectID:       frame.Project.ID,
		ForceReevaluate: true,
	})

	assert.NoError(t, err)
	assert.False(t, response.Cached)
	assert.Equal(t, 1, narrative.calls)
	assert.Len(t, store.persisted, 1)
}

// ============================================================================
// TEST SUITE 3: FULL RUN
// ============================================================================

func TestEvaluate_FullRunProducesMergedResponse(t *testing.T) {
	frame, proposalID := singleCandidateFrame()

	narrative := &stubNarrative{review: reviewBatchFor(proposalID)}
	store := &stubResultStore{}
	svc := NewEvaluationService(&stubFrames{frame: frame}, narrative, store, nil, nil, nil)

	response, err := svc.Evaluate(context.Background(), &models.EvaluateRequest{ProjectID: frame.Project.ID})

	assert.NoError(t, err)
	assert.Equal(t, frame.Project.ID, response.ProjectID)
	assert.Len(t, response.RankedProposals, 1)
	assert.Equal(t, proposalID, response.RankedProposals[0].ProposalID)
	assert.Equal(t, 1, response.RankedProposals[0].Rank)
	assert.Equal(t, models.ModeSingle, response.BatchSummary.EvaluationMode)

	assert.NotNil(t, response.EvaluationMetadata)
	assert.Equal(t, "stub", response.EvaluationMetadata.Provider)
	assert.Equal(t, "stub-model", response.EvaluationMetadata.ModelName)

	assert.Len(t, store.persisted, 1)
}

func TestEvaluate_BackendErrorAbortsRun(t *testing.T) {
	frame, _ := singleCandidateFrame()

	narrative := &stubNarrative{err: newEvalError(CodeTimeout, "narrative backend exceeded the evaluation time budget")}
	store := &stubResultStore{}
	svc := NewEvaluationService(&stubFrames{frame: frame}, narrative, store, nil, nil, nil)

	_, err := svc.Evaluate(context.Background(), &models.EvaluateRequest{ProjectID: frame.Project.ID})

	assert.Error(t, err)
	assert.Equal(t, CodeTimeout, CodeOf(err))
	assert.Empty(t, store.persisted, "nothing may be persisted after a failed run")
}

func TestEvaluate_FrameErrorPropagates(t *testing.T) {
	frames := &stubFrames{err: newEvalError(CodeNotFound, "project not found")}
	svc := NewEvaluationService(frames, &stubNarrative{}, &stubResultStore{}, nil, nil, nil)

	_, err := svc.Evaluate(context.Background(), &models.EvaluateRequest{ProjectID: uuid.New()})

	assert.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}
