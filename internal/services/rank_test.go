package services

import (
	"testing"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func scoreWithFinal(id uuid.UUID, final int) models.DeterministicScore {
	return models.DeterministicScore{ProposalID: id, FinalScore: final}
}

// ============================================================================
// TEST SUITE 1: ORDERING
// ============================================================================

func TestLockRanks_SortsByFinalScoreDescending(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	locked := LockRanks([]models.DeterministicScore{
		scoreWithFinal(a, 40),
		scoreWithFinal(b, 90),
		scoreWithFinal(c, 65),
	})

	assert.Equal(t, b, locked[0].ProposalID)
	assert.Equal(t, c, locked[1].ProposalID)
	assert.Equal(t, a, locked[2].ProposalID)
	assert.Equal(t, 1, locked[0].Rank)
	assert.Equal(t, 2, locked[1].Rank)
	assert.Equal(t, 3, locked[2].Rank)
}

func TestLockRanks_TieBreaksOnProposalIDAscending(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	// Input in reverse id order; equal scores must still rank a before b.
	locked := LockRanks([]models.DeterministicScore{
		scoreWithFinal(b, 75),
		scoreWithFinal(a, 75),
	})

	assert.Equal(t, a, locked[0].ProposalID)
	assert.Equal(t, b, locked[1].ProposalID)
}

func TestLockRanks_DoesNotMutateInput(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	input := []models.DeterministicScore{
		scoreWithFinal(a, 10),
		scoreWithFinal(b, 90),
	}

	LockRanks(input)

	assert.Equal(t, a, input[0].ProposalID)
	assert.Equal(t, b, input[1].ProposalID)
}

func TestLockRanks_EmptyInput(t *testing.T) {
	assert.Empty(t, LockRanks(nil))
}

// ============================================================================
// TEST SUITE 2: RECOMMENDATION BANDS
// ============================================================================

func TestRecommendationLevel_Bands(t *testing.T) {
	assert.Equal(t, models.HighlyRecommended, recommendationLevel(100))
	assert.Equal(t, models.HighlyRecommended, recommendationLevel(80))
	assert.Equal(t, models.Recommended, recommendationLevel(79))
	assert.Equal(t, models.Recommended, recommendationLevel(60))
	assert.Equal(t, models.ReviewRequired, recommendationLevel(59))
	assert.Equal(t, models.ReviewRequired, recommendationLevel(40))
	assert.Equal(t, models.NotRecommended, recommendationLevel(39))
	assert.Equal(t, models.NotRecommended, recommendationLevel(0))
}
