package services

import (
	"testing"

	"rfp-service/internal/ai"
	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func lockedBundle(id uuid.UUID, vendor string, final, rank int) models.LockedScore {
	return models.LockedScore{
		DeterministicScore: models.DeterministicScore{
			ProposalID:       id,
			VendorName:       vendor,
			FinalScore:       final,
			DataCompleteness: 0.75,
		},
		Rank:                rank,
		RecommendationLevel: recommendationLevel(final),
	}
}

func reviewFor(id uuid.UUID, priceAssessment *string) models.RawProposalReview {
	return models.RawProposalReview{
		ProposalID:        id.String(),
		VendorName:        "Model Vendor",
		Strengths:         []string{"clear methodology"},
		Weaknesses:        []string{"thin staffing plan"},
		OverallAssessment: strPtr("A solid offer overall."),
		PriceAssessment:   priceAssessment,
	}
}

func compareFrame(ids ...uuid.UUID) *models.EvaluationFrame {
	candidates := make([]models.ProposalCandidate, 0, len(ids))
	for _, id := range ids {
		c := createTestCandidate(floatPtr(1000), nil, nil)
		c.Proposal.ID = id
		candidates = append(candidates, c)
	}
	return createTestFrame(candidates...)
}

// ============================================================================
// TEST SUITE 1: SHAPE VALIDATION
// ============================================================================

func TestValidateAndMerge_EmptyOutputRejected(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	_, err := ValidateAndMerge(frame, locked, &models.RawBatchReview{})

	assert.Error(t, err)
	assert.Equal(t, CodeSchemaViolation, CodeOf(err))
}

func TestValidateAndMerge_MissingProposalRejected(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	frame := compareFrame(a, b)
	locked := []models.LockedScore{lockedBundle(a, "Acme", 80, 1), lockedBundle(b, "Beta", 60, 2)}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{
		reviewFor(a, strPtr("competitive")),
		reviewFor(uuid.New(), strPtr("competitive")), // unknown id instead of b
	}}

	_, err := ValidateAndMerge(frame, locked, raw)

	assert.Error(t, err)
	assert.Equal(t, CodeSchemaViolation, CodeOf(err))
}

func TestValidateAndMerge_DuplicateReviewRejected(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	frame := compareFrame(id, other)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1), lockedBundle(other, "Beta", 60, 2)}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{
		reviewFor(id, strPtr("competitive")),
		reviewFor(id, strPtr("competitive")),
	}}

	_, err := ValidateAndMerge(frame, locked, raw)

	assert.Error(t, err)
	assert.Equal(t, CodeSchemaViolation, CodeOf(err))
}

func TestValidateAndMerge_WrongModeDeclarationRejected(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id) // one candidate -> SINGLE
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	raw := &models.RawBatchReview{
		BatchSummary:    models.RawBatchSummary{EvaluationMode: "COMPARE"},
		RankedProposals: []models.RawProposalReview{reviewFor(id, nil)},
	}

	_, err := ValidateAndMerge(frame, locked, raw)

	assert.Error(t, err)
	assert.Equal(t, CodeSchemaViolation, CodeOf(err))
}

func TestValidateAndMerge_SingleModeForbidsPriceAssessment(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{
		reviewFor(id, strPtr("cheapest of the lot")),
	}}

	_, err := ValidateAndMerge(frame, locked, raw)

	assert.Error(t, err)
	assert.Equal(t, CodeSchemaViolation, CodeOf(err))
}

func TestValidateAndMerge_CompareModeRequiresPriceAssessment(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	frame := compareFrame(a, b)
	locked := []models.LockedScore{lockedBundle(a, "Acme", 80, 1), lockedBundle(b, "Beta", 60, 2)}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{
		reviewFor(a, strPtr("competitive")),
		reviewFor(b, nil),
	}}

	_, err := ValidateAndMerge(frame, locked, raw)

	assert.Error(t, err)
	assert.Equal(t, CodeSchemaViolation, CodeOf(err))
}

// ============================================================================
// TEST SUITE 2: LOCKED FIELDS WIN
// ============================================================================

func TestValidateAndMerge_ModelCannotAlterLockedNumbers(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	frame := compareFrame(a, b)
	locked := []models.LockedScore{lockedBundle(a, "Acme", 85, 1), lockedBundle(b, "Beta", 55, 2)}

	// Adversarial output: inverted scores and ranks, altered completeness.
	reviewA := reviewFor(a, strPtr("competitive"))
	reviewA.FinalScore = floatPtr(10)
	reviewA.Rank = intPtr(2)
	reviewA.DataCompleteness = floatPtr(0.1)
	reviewA.RecommendationLevel = strPtr("Not Recommended")
	reviewA.KnockoutTriggered = boolPtr(true)

	reviewB := reviewFor(b, strPtr("expensive"))
	reviewB.FinalScore = floatPtr(99)
	reviewB.Rank = intPtr(1)

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{reviewB, reviewA}}

	response, err := ValidateAndMerge(frame, locked, raw)

	assert.NoError(t, err)
	assert.Equal(t, a, response.RankedProposals[0].ProposalID)
	assert.Equal(t, 85, response.RankedProposals[0].FinalScore)
	assert.Equal(t, 1, response.RankedProposals[0].Rank)
	assert.Equal(t, 0.75, response.RankedProposals[0].DataCompleteness)
	assert.Equal(t, models.HighlyRecommended, response.RankedProposals[0].RecommendationLevel)
	assert.False(t, response.RankedProposals[0].Flags.KnockoutTriggered)
	assert.Equal(t, 55, response.RankedProposals[1].FinalScore)
	assert.Equal(t, 2, response.RankedProposals[1].Rank)
}

func TestValidateAndMerge_KnockoutReasonPrefersModelPhrasing(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)

	locked := lockedBundle(id, "Acme", 0, 1)
	locked.KnockoutTriggered = true
	locked.KnockoutReasonHint = missingMandatoryHint
	locked.RecommendationLevel = models.NotRecommended

	review := reviewFor(id, nil)
	review.KnockoutReason = strPtr("the proposal omits most mandatory deliverables")

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, []models.LockedScore{locked}, raw)

	assert.NoError(t, err)
	assert.True(t, response.RankedProposals[0].Flags.KnockoutTriggered)
	assert.Equal(t, "the proposal omits most mandatory deliverables", *response.RankedProposals[0].Flags.KnockoutReason)
}

func TestValidateAndMerge_KnockoutReasonFallsBackToHint(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)

	locked := lockedBundle(id, "Acme", 0, 1)
	locked.KnockoutTriggered = true
	locked.KnockoutReasonHint = missingMandatoryHint

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{reviewFor(id, nil)}}

	response, err := ValidateAndMerge(frame, []models.LockedScore{locked}, raw)

	assert.NoError(t, err)
	assert.Equal(t, missingMandatoryHint, *response.RankedProposals[0].Flags.KnockoutReason)
}

func TestValidateAndMerge_NoKnockoutMeansNoReason(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	review := reviewFor(id, nil)
	review.KnockoutReason = strPtr("fabricated reason")

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, locked, raw)

	assert.NoError(t, err)
	assert.Nil(t, response.RankedProposals[0].Flags.KnockoutReason)
}

// ============================================================================
// TEST SUITE 3: NARRATIVE MERGE
// ============================================================================

func TestValidateAndMerge_RedFlagsUnionViolationsFirst(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)

	locked := lockedBundle(id, "Acme", 80, 1)
	locked.Violations = []models.PolicyViolation{{
		ProposalID: id,
		Type:       models.ViolationPaymentTerms,
		Message:    "upfront payment of 40.0% exceeds the policy maximum of 30.0%",
	}}

	review := reviewFor(id, nil)
	review.RedFlags = []string{
		"upfront payment of 40.0% exceeds the policy maximum of 30.0%", // duplicate
		"no insurance certificate attached",
	}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, []models.LockedScore{locked}, raw)

	assert.NoError(t, err)
	flags := response.RankedProposals[0].Flags.RedFlags
	assert.Equal(t, []string{
		"upfront payment of 40.0% exceeds the policy maximum of 30.0%",
		"no insurance certificate attached",
	}, flags)
}

func TestValidateAndMerge_NoneSentinelFilteredFromLists(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	review := reviewFor(id, nil)
	review.GreenFlags = []string{ai.NoneSentinel}
	review.MissingRequirements = []string{"None", "missing handover plan"}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, locked, raw)

	assert.NoError(t, err)
	assert.Empty(t, response.RankedProposals[0].Flags.GreenFlags)
	assert.Equal(t, []string{"missing handover plan"}, response.RankedProposals[0].IndividualAnalysis.MissingRequirements)
}

func TestValidateAndMerge_MissingRequirementsFallBackToDeterministicLists(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)

	locked := lockedBundle(id, "Acme", 50, 1)
	locked.MissingFeeItems = []string{"Design work"}
	locked.MissingScopeItems = []string{"Site survey"}

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{reviewFor(id, nil)}}

	response, err := ValidateAndMerge(frame, []models.LockedScore{locked}, raw)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Design work", "Site survey"}, response.RankedProposals[0].IndividualAnalysis.MissingRequirements)
}

func TestValidateAndMerge_MissingNarrativeGetsSentinel(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	review := reviewFor(id, nil)
	review.OverallAssessment = nil

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, locked, raw)

	assert.NoError(t, err)
	assert.Equal(t, ai.NotProvidedSentinel, response.RankedProposals[0].IndividualAnalysis.OverallAssessment)
}

func TestValidateAndMerge_VendorNameNeverEmpty(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)

	locked := lockedBundle(id, "", 80, 1)
	review := reviewFor(id, nil)
	review.VendorName = ""

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, []models.LockedScore{locked}, raw)

	assert.NoError(t, err)
	assert.Equal(t, ai.NotProvidedSentinel, response.RankedProposals[0].VendorName)
}

func TestValidateAndMerge_ComparativeNotesOnlyInCompareMode(t *testing.T) {
	id := uuid.New()
	frame := compareFrame(id)
	locked := []models.LockedScore{lockedBundle(id, "Acme", 80, 1)}

	review := reviewFor(id, nil)
	review.ComparativeNotes = strPtr("cheapest of three offers")

	raw := &models.RawBatchReview{RankedProposals: []models.RawProposalReview{review}}

	response, err := ValidateAndMerge(frame, locked, raw)

	assert.NoError(t, err)
	assert.Nil(t, response.RankedProposals[0].ComparativeNotes)
}

// ============================================================================
// TEST SUITE 4: BATCH SUMMARY
// ============================================================================

func TestValidateAndMerge_BatchSummaryIsDeterministic(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	frame := compareFrame(a, b)
	frame.Project.LargeScale = true
	frame.Candidates[0].Proposal.Price = floatPtr(500)
	frame.Candidates[1].Proposal.Price = floatPtr(800)

	locked := []models.LockedScore{lockedBundle(a, "Acme", 80, 1), lockedBundle(b, "Beta", 60, 2)}

	raw := &models.RawBatchReview{
		BatchSummary: models.RawBatchSummary{
			EvaluationMode:      "COMPARE",
			TotalProposals:      99, // ignored
			ProjectTypeDetected: "STANDARD",
			PriceBenchmarkUsed:  floatPtr(1),
			MarketContext:       strPtr("prices trend above regional average"),
		},
		RankedProposals: []models.RawProposalReview{
			reviewFor(a, strPtr("competitive")),
			reviewFor(b, strPtr("high")),
		},
	}

	response, err := ValidateAndMerge(frame, locked, raw)

	assert.NoError(t, err)
	assert.Equal(t, 2, response.BatchSummary.TotalProposals)
	assert.Equal(t, models.ModeCompare, response.BatchSummary.EvaluationMode)
	assert.Equal(t, models.ProjectLargeScale, response.BatchSummary.ProjectTypeDetected)
	assert.Equal(t, 500.0, *response.BatchSummary.PriceBenchmarkUsed)
	assert.Equal(t, "prices trend above regional average", *response.BatchSummary.MarketContext)
}

func boolPtr(v bool) *bool { return &v }
