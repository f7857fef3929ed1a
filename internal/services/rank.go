package services

import (
	"sort"

	"rfp-service/internal/models"
)

// LockRanks stable-sorts the scored proposals by final score descending with
// proposal id ascending as the tie-break, assigns 1-based ranks and the
// recommendation level. The returned bundles are locked: no downstream
// component may alter final_score, rank, recommendation_level,
// data_completeness or knockout_triggered.
func LockRanks(scores []models.DeterministicScore) []models.LockedScore {
	ordered := make([]models.DeterministicScore, len(scores))
	copy(ordered, scores)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].FinalScore != ordered[j].FinalScore {
			return ordered[i].FinalScore > ordered[j].FinalScore
		}
		return ordered[i].ProposalID.String() < ordered[j].ProposalID.String()
	})

	locked := make([]models.LockedScore, 0, len(ordered))
	for i, score := range ordered {
		locked = append(locked, models.LockedScore{
			DeterministicScore:  score,
			Rank:                i + 1,
			RecommendationLevel: recommendationLevel(score.FinalScore),
		})
	}

	return locked
}

func recommendationLevel(finalScore int) models.RecommendationLevel {
	switch {
	case finalScore >= 80:
		return models.HighlyRecommended
	case finalScore >= 60:
		return models.Recommended
	case finalScore >= 40:
		return models.ReviewRequired
	default:
		return models.NotRecommended
	}
}
