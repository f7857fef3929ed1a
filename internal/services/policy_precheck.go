package services

import (
	"fmt"
	"strings"

	"rfp-service/internal/models"
)

// upfrontTokens mark a milestone as payable before work starts.
var upfrontTokens = []string{"upfront", "advance", "deposit", "signing", "start", "mobilization"}

// RunPolicyPrecheck flags organizational-policy violations per proposal.
// Pure function: no I/O, no mutation of its inputs. A nil policy disables the
// currency and payment-terms checks; vendor completeness is always checked.
func RunPolicyPrecheck(candidates []models.ProposalCandidate, policy *models.OrganizationPolicy) []models.PolicyViolation {
	var violations []models.PolicyViolation

	for i := range candidates {
		c := &candidates[i]

		if v := checkCurrency(c, policy); v != nil {
			violations = append(violations, *v)
		}
		if v := checkPaymentTerms(c, policy); v != nil {
			violations = append(violations, *v)
		}
		if c.VendorName() == "" {
			violations = append(violations, models.PolicyViolation{
				ProposalID: c.Proposal.ID,
				Type:       models.ViolationVendorIncomplete,
				Message:    "no resolvable vendor or company name on the proposal",
			})
		}
	}

	return violations
}

func checkCurrency(c *models.ProposalCandidate, policy *models.OrganizationPolicy) *models.PolicyViolation {
	if policy == nil || len(policy.AllowedCurrencies) == 0 {
		return nil
	}

	currency := strings.ToUpper(strings.TrimSpace(c.Proposal.Currency))
	for _, allowed := range policy.AllowedCurrencies {
		if currency == strings.ToUpper(strings.TrimSpace(allowed)) {
			return nil
		}
	}

	return &models.PolicyViolation{
		ProposalID: c.Proposal.ID,
		Type:       models.ViolationCurrency,
		Message:    fmt.Sprintf("currency %s is not in the organization's allowed set", c.Proposal.Currency),
	}
}

func checkPaymentTerms(c *models.ProposalCandidate, policy *models.OrganizationPolicy) *models.PolicyViolation {
	if policy == nil || policy.MaxUpfrontPercent == nil {
		return nil
	}

	upfrontSum := 0.0
	for _, m := range c.Proposal.MilestoneAdjustments {
		if isUpfrontMilestone(m) {
			upfrontSum += m.Percent
		}
	}

	if upfrontSum <= *policy.MaxUpfrontPercent {
		return nil
	}

	return &models.PolicyViolation{
		ProposalID: c.Proposal.ID,
		Type:       models.ViolationPaymentTerms,
		Message: fmt.Sprintf("upfront payment of %.1f%% exceeds the policy maximum of %.1f%%",
			upfrontSum, *policy.MaxUpfrontPercent),
	}
}

func isUpfrontMilestone(m models.MilestoneAdjustment) bool {
	text := strings.ToLower(m.Description + " " + m.Trigger)
	for _, token := range upfrontTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
