package services

import (
	"math"
	"strings"

	"rfp-service/internal/models"

	"github.com/google/uuid"
)

const (
	coverageWeight = 0.7
	priceWeight    = 0.3

	// knockoutMissingRatio: a proposal missing more than this share of
	// mandatory items is knocked out regardless of price.
	knockoutMissingRatio = 0.5

	missingMandatoryHint = "over half of mandatory requirement items are missing"
)

// Data-completeness presence weights. They sum to 1.0.
const (
	weightPrice            = 0.18
	weightTimeline         = 0.08
	weightScopeText        = 0.20
	weightTermsText        = 0.08
	weightFeeLineItems     = 0.22
	weightSelectedServices = 0.12
	weightMilestones       = 0.12
)

// ComputeDeterministicScores produces the locked numeric bundle per proposal.
// Deterministic by construction: same frame and violations always yield the
// same output.
func ComputeDeterministicScores(frame *models.EvaluationFrame, violations []models.PolicyViolation) []models.DeterministicScore {
	mode := frame.Mode()
	mandatoryFees := frame.MandatoryFeeItems()
	mandatoryScopes := frame.MandatoryScopeItems()
	mandatoryCount := len(mandatoryFees) + len(mandatoryScopes)

	violationsByProposal := make(map[uuid.UUID][]models.PolicyViolation)
	for _, v := range violations {
		violationsByProposal[v.ProposalID] = append(violationsByProposal[v.ProposalID], v)
	}

	priceScores := computePriceScores(frame, mode)

	scores := make([]models.DeterministicScore, 0, len(frame.Candidates))
	for i := range frame.Candidates {
		c := &frame.Candidates[i]

		missingFees, missingScopes := missingMandatoryItems(c, mandatoryFees, mandatoryScopes)
		missingCount := len(missingFees) + len(missingScopes)

		coverage := 100.0
		if mandatoryCount > 0 {
			coverage = 100.0 * float64(mandatoryCount-missingCount) / float64(mandatoryCount)
		}

		propViolations := violationsByProposal[c.Proposal.ID]
		policyKnockout := hasKnockoutViolation(propViolations)
		ratioKnockout := mandatoryCount > 0 && float64(missingCount)/float64(mandatoryCount) > knockoutMissingRatio
		knockedOut := policyKnockout || ratioKnockout

		score := models.DeterministicScore{
			ProposalID:        c.Proposal.ID,
			VendorName:        c.VendorName(),
			CoverageScore:     coverage,
			PriceScore:        priceScores[c.Proposal.ID],
			KnockoutTriggered: knockedOut,
			DataCompleteness:  dataCompleteness(&c.Proposal),
			MissingFeeItems:   missingFees,
			MissingScopeItems: missingScopes,
			Violations:        propViolations,
			VendorIncomplete:  hasViolationOfType(propViolations, models.ViolationVendorIncomplete),
		}

		score.FinalScore = finalScore(mode, coverage, score.PriceScore, knockedOut)
		if knockedOut {
			score.KnockoutReasonHint = knockoutHint(propViolations, policyKnockout)
		}

		scores = append(scores, score)
	}

	return scores
}

// computePriceScores performs inverse min-max normalization over the
// candidates with a positive numeric price. Cheapest scores 100, costliest 0;
// all-equal scores 100 everywhere. Proposals without a valid price score 0 on
// this axis. Nil map values in SINGLE mode (no price comparison).
func computePriceScores(frame *models.EvaluationFrame, mode models.EvaluationMode) map[uuid.UUID]*float64 {
	result := make(map[uuid.UUID]*float64, len(frame.Candidates))
	if mode != models.ModeCompare {
		return result
	}

	minPrice := math.Inf(1)
	maxPrice := math.Inf(-1)
	validCount := 0
	for i := range frame.Candidates {
		if p := frame.Candidates[i].Proposal.Price; p != nil && *p > 0 {
			minPrice = math.Min(minPrice, *p)
			maxPrice = math.Max(maxPrice, *p)
			validCount++
		}
	}

	for i := range frame.Candidates {
		c := &frame.Candidates[i]
		p := c.Proposal.Price

		score := 0.0
		if p != nil && *p > 0 && validCount > 0 {
			if maxPrice == minPrice {
				score = 100.0
			} else {
				score = 100.0 * (maxPrice - *p) / (maxPrice - minPrice)
			}
		}
		s := score
		result[c.Proposal.ID] = &s
	}

	return result
}

// PriceBenchmark returns the normalization anchor: the lowest valid price in
// COMPARE mode, nil otherwise.
func PriceBenchmark(frame *models.EvaluationFrame) *float64 {
	if frame.Mode() != models.ModeCompare {
		return nil
	}

	var benchmark *float64
	for i := range frame.Candidates {
		if p := frame.Candidates[i].Proposal.Price; p != nil && *p > 0 {
			if benchmark == nil || *p < *benchmark {
				v := *p
				benchmark = &v
			}
		}
	}
	return benchmark
}

func missingMandatoryItems(c *models.ProposalCandidate, fees []models.FeeItem, scopes []models.ServiceScopeItem) ([]string, []string) {
	missingFees := []string{}
	for _, item := range fees {
		if !feeItemCovered(item, c.Proposal.FeeLineItems) {
			missingFees = append(missingFees, item.Description)
		}
	}

	selected := make(map[string]bool, len(c.Proposal.SelectedServices))
	for _, id := range c.Proposal.SelectedServices {
		selected[id] = true
	}

	missingScopes := []string{}
	for _, item := range scopes {
		if !selected[item.ID.String()] {
			missingScopes = append(missingScopes, item.Name)
		}
	}

	return missingFees, missingScopes
}

// feeItemCovered matches by id first, then by normalized description text.
func feeItemCovered(item models.FeeItem, lines models.FeeLineItems) bool {
	for _, line := range lines {
		if line.FeeItemID != nil && *line.FeeItemID == item.ID {
			return true
		}
		if normalizeDescription(line.Description) == normalizeDescription(item.Description) {
			return true
		}
	}
	return false
}

// normalizeDescription trims, lowercases and folds internal whitespace.
func normalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func hasKnockoutViolation(violations []models.PolicyViolation) bool {
	for _, v := range violations {
		if v.Type == models.ViolationCurrency || v.Type == models.ViolationPaymentTerms {
			return true
		}
	}
	return false
}

func hasViolationOfType(violations []models.PolicyViolation, t models.ViolationType) bool {
	for _, v := range violations {
		if v.Type == t {
			return true
		}
	}
	return false
}

func knockoutHint(violations []models.PolicyViolation, policyKnockout bool) string {
	if policyKnockout {
		for _, v := range violations {
			if v.Type == models.ViolationCurrency || v.Type == models.ViolationPaymentTerms {
				return v.Message
			}
		}
	}
	return missingMandatoryHint
}

func finalScore(mode models.EvaluationMode, coverage float64, priceScore *float64, knockedOut bool) int {
	if knockedOut {
		return 0
	}

	value := coverage
	if mode == models.ModeCompare {
		price := 0.0
		if priceScore != nil {
			price = *priceScore
		}
		value = coverage*coverageWeight + price*priceWeight
	}

	final := int(math.Round(value))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	return final
}

// dataCompleteness is a weighted sum of presence indicators in [0,1],
// rounded to 2 decimals.
func dataCompleteness(p *models.Proposal) float64 {
	total := 0.0

	if p.Price != nil && *p.Price > 0 {
		total += weightPrice
	}
	if p.TimelineDays != nil && *p.TimelineDays > 0 {
		total += weightTimeline
	}
	if len(p.EvaluationText()) > 50 {
		total += weightScopeText
	}
	if p.TermsText != nil && strings.TrimSpace(*p.TermsText) != "" {
		total += weightTermsText
	}
	if len(p.FeeLineItems) > 0 {
		total += weightFeeLineItems
	}
	if len(p.SelectedServices) > 0 {
		total += weightSelectedServices
	}
	if len(p.MilestoneAdjustments) > 0 {
		total += weightMilestones
	}

	return math.Round(total*100) / 100
}
