package services

import (
	"fmt"
	"strings"

	"rfp-service/internal/ai"
	"rfp-service/internal/models"

	"github.com/google/uuid"
)

// ValidateAndMerge checks the narrative backend's output against the locked
// bundle and merges the two. Validation failures are SCHEMA_VIOLATION errors;
// on success every numeric and rank field in the result comes from the locked
// bundle, never from the backend.
func ValidateAndMerge(frame *models.EvaluationFrame, locked []models.LockedScore, raw *models.RawBatchReview) (*models.EvaluationResponse, error) {
	mode := frame.Mode()

	if err := validateBatchShape(mode, locked, raw); err != nil {
		return nil, err
	}

	reviewsByID := make(map[uuid.UUID]*models.RawProposalReview, len(raw.RankedProposals))
	for i := range raw.RankedProposals {
		id, err := uuid.Parse(raw.RankedProposals[i].ProposalID)
		if err != nil {
			return nil, newEvalError(CodeSchemaViolation,
				fmt.Sprintf("narrative output contains an unparseable proposal id %q", raw.RankedProposals[i].ProposalID))
		}
		if _, dup := reviewsByID[id]; dup {
			return nil, newEvalError(CodeSchemaViolation,
				fmt.Sprintf("narrative output reviews proposal %s more than once", id))
		}
		reviewsByID[id] = &raw.RankedProposals[i]
	}

	ranked := make([]models.RankedProposal, 0, len(locked))
	for i := range locked {
		review, ok := reviewsByID[locked[i].ProposalID]
		if !ok {
			return nil, newEvalError(CodeSchemaViolation,
				fmt.Sprintf("narrative output is missing a review for proposal %s", locked[i].ProposalID))
		}
		if err := validateReviewShape(mode, review); err != nil {
			return nil, err
		}
		ranked = append(ranked, mergeProposal(mode, &locked[i], review))
	}

	return &models.EvaluationResponse{
		ProjectID:       frame.Project.ID,
		BatchSummary:    buildBatchSummary(frame, raw),
		RankedProposals: ranked,
	}, nil
}

func validateBatchShape(mode models.EvaluationMode, locked []models.LockedScore, raw *models.RawBatchReview) error {
	if raw == nil {
		return newEvalError(CodeSchemaViolation, "narrative output is empty")
	}
	if len(raw.RankedProposals) == 0 {
		return newEvalError(CodeSchemaViolation, "narrative output contains no proposal reviews")
	}
	if len(raw.RankedProposals) != len(locked) {
		return newEvalError(CodeSchemaViolation,
			fmt.Sprintf("narrative output reviews %d proposals, expected %d", len(raw.RankedProposals), len(locked)))
	}
	if raw.BatchSummary.EvaluationMode != "" && raw.BatchSummary.EvaluationMode != string(mode) {
		return newEvalError(CodeSchemaViolation,
			fmt.Sprintf("narrative output declares mode %s, run is %s", raw.BatchSummary.EvaluationMode, mode))
	}
	return nil
}

func validateReviewShape(mode models.EvaluationMode, review *models.RawProposalReview) error {
	hasPriceAssessment := review.PriceAssessment != nil && strings.TrimSpace(*review.PriceAssessment) != ""

	if mode == models.ModeSingle && hasPriceAssessment {
		return newEvalError(CodeSchemaViolation,
			fmt.Sprintf("narrative output carries a price assessment for proposal %s in single-proposal mode", review.ProposalID))
	}
	if mode == models.ModeCompare && !hasPriceAssessment {
		return newEvalError(CodeSchemaViolation,
			fmt.Sprintf("narrative output lacks a price assessment for proposal %s in comparison mode", review.ProposalID))
	}
	return nil
}

// mergeProposal combines one locked bundle with its narrative review.
// Precedence is fixed: numerics, rank, recommendation and knockout state come
// from the locked bundle; narrative text comes from the review with
// deterministic fallbacks.
func mergeProposal(mode models.EvaluationMode, locked *models.LockedScore, review *models.RawProposalReview) models.RankedProposal {
	vendorName := locked.VendorName
	if vendorName == "" {
		vendorName = strings.TrimSpace(review.VendorName)
	}
	if vendorName == "" {
		vendorName = ai.NotProvidedSentinel
	}

	missing := filterSentinel(review.MissingRequirements)
	if len(review.MissingRequirements) == 0 {
		missing = append([]string{}, locked.MissingFeeItems...)
		missing = append(missing, locked.MissingScopeItems...)
	}

	flags := models.ProposalFlags{
		RedFlags:          mergeRedFlags(locked, review),
		GreenFlags:        emptyIfNil(filterSentinel(review.GreenFlags)),
		KnockoutTriggered: locked.KnockoutTriggered,
		KnockoutReason:    knockoutReason(locked, review),
	}

	analysis := models.IndividualAnalysis{
		Strengths:           emptyIfNil(filterSentinel(review.Strengths)),
		Weaknesses:          emptyIfNil(filterSentinel(review.Weaknesses)),
		MissingRequirements: emptyIfNil(missing),
		ExtraOfferings:      emptyIfNil(filterSentinel(review.ExtraOfferings)),
		OverallAssessment:   textOrNotProvided(review.OverallAssessment),
	}

	var comparativeNotes *string
	if mode == models.ModeCompare {
		analysis.PriceAssessment = review.PriceAssessment
		if review.ComparativeNotes != nil && strings.TrimSpace(*review.ComparativeNotes) != "" {
			comparativeNotes = review.ComparativeNotes
		}
	}

	return models.RankedProposal{
		ProposalID:          locked.ProposalID,
		VendorName:          vendorName,
		FinalScore:          locked.FinalScore,
		Rank:                locked.Rank,
		DataCompleteness:    locked.DataCompleteness,
		RecommendationLevel: locked.RecommendationLevel,
		Flags:               flags,
		IndividualAnalysis:  analysis,
		ComparativeNotes:    comparativeNotes,
	}
}

// mergeRedFlags unions the precheck violation messages with the backend's red
// flags, deduplicated, violations first.
func mergeRedFlags(locked *models.LockedScore, review *models.RawProposalReview) []string {
	seen := make(map[string]bool)
	flags := []string{}

	for _, v := range locked.Violations {
		if !seen[v.Message] {
			seen[v.Message] = true
			flags = append(flags, v.Message)
		}
	}
	for _, f := range filterSentinel(review.RedFlags) {
		if !seen[f] {
			seen[f] = true
			flags = append(flags, f)
		}
	}

	return flags
}

// knockoutReason prefers the backend's phrasing when the knockout is real,
// falling back to the deterministic hint. Non-knocked-out proposals never
// carry a reason, whatever the backend claims.
func knockoutReason(locked *models.LockedScore, review *models.RawProposalReview) *string {
	if !locked.KnockoutTriggered {
		return nil
	}
	if review.KnockoutReason != nil && strings.TrimSpace(*review.KnockoutReason) != "" {
		return review.KnockoutReason
	}
	hint := locked.KnockoutReasonHint
	return &hint
}

func buildBatchSummary(frame *models.EvaluationFrame, raw *models.RawBatchReview) models.BatchSummary {
	projectType := models.ProjectStandard
	if frame.Project.LargeScale {
		projectType = models.ProjectLargeScale
	}

	summary := models.BatchSummary{
		TotalProposals:      len(frame.Candidates),
		EvaluationMode:      frame.Mode(),
		ProjectTypeDetected: projectType,
		PriceBenchmarkUsed:  PriceBenchmark(frame),
	}

	if raw.BatchSummary.MarketContext != nil && strings.TrimSpace(*raw.BatchSummary.MarketContext) != "" {
		summary.MarketContext = raw.BatchSummary.MarketContext
	}

	return summary
}

// filterSentinel drops empty entries and the "none" placeholder the backend
// is instructed to use for empty lists.
func filterSentinel(items []string) []string {
	result := []string{}
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" || strings.EqualFold(trimmed, ai.NoneSentinel) {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func textOrNotProvided(s *string) string {
	if s != nil && strings.TrimSpace(*s) != "" {
		return strings.TrimSpace(*s)
	}
	return ai.NotProvidedSentinel
}
