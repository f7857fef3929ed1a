package services

import (
	"testing"

	"rfp-service/internal/apiutil"
	"rfp-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func testPolicy(currencies []string, maxUpfront *float64) *models.OrganizationPolicy {
	return &models.OrganizationPolicy{
		OrganizationID:    "org-1",
		AllowedCurrencies: apiutil.StringArray(currencies),
		MaxUpfrontPercent: maxUpfront,
	}
}

// ============================================================================
// TEST SUITE 1: CURRENCY CHECK
// ============================================================================

func TestRunPolicyPrecheck_DisallowedCurrency(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.Currency = "JPY"

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, testPolicy([]string{"USD", "EUR"}, nil))

	assert.Len(t, violations, 1)
	assert.Equal(t, models.ViolationCurrency, violations[0].Type)
	assert.Equal(t, candidate.Proposal.ID, violations[0].ProposalID)
}

func TestRunPolicyPrecheck_CurrencyMatchIsCaseInsensitive(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.Currency = "usd"

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, testPolicy([]string{"USD"}, nil))

	assert.Empty(t, violations)
}

func TestRunPolicyPrecheck_NoPolicyDisablesCurrencyCheck(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.Currency = "XYZ"

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, nil)

	assert.Empty(t, violations)
}

// ============================================================================
// TEST SUITE 2: PAYMENT TERMS CHECK
// ============================================================================

func TestRunPolicyPrecheck_UpfrontSumExceedsMaximum(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.MilestoneAdjustments = models.MilestoneAdjustments{
		{Description: "Upfront payment", Percent: 20},
		{Description: "Mobilization advance", Percent: 15},
		{Description: "Final delivery", Percent: 65},
	}

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, testPolicy([]string{"USD"}, floatPtr(30)))

	assert.Len(t, violations, 1)
	assert.Equal(t, models.ViolationPaymentTerms, violations[0].Type)
	assert.Contains(t, violations[0].Message, "35.0%")
}

func TestRunPolicyPrecheck_UpfrontAtMaximumPasses(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.MilestoneAdjustments = models.MilestoneAdjustments{
		{Description: "Deposit on signing", Percent: 30},
		{Description: "Final delivery", Percent: 70},
	}

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, testPolicy([]string{"USD"}, floatPtr(30)))

	assert.Empty(t, violations)
}

func TestRunPolicyPrecheck_TriggerTextMarksUpfront(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.MilestoneAdjustments = models.MilestoneAdjustments{
		{Description: "First payment", Trigger: "on contract signing", Percent: 50},
	}

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, testPolicy([]string{"USD"}, floatPtr(20)))

	assert.Len(t, violations, 1)
	assert.Equal(t, models.ViolationPaymentTerms, violations[0].Type)
}

func TestRunPolicyPrecheck_NoMaxUpfrontDisablesCheck(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.MilestoneAdjustments = models.MilestoneAdjustments{
		{Description: "Upfront payment", Percent: 90},
	}

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, testPolicy([]string{"USD"}, nil))

	assert.Empty(t, violations)
}

// ============================================================================
// TEST SUITE 3: VENDOR COMPLETENESS
// ============================================================================

func TestRunPolicyPrecheck_MissingVendorName(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.SupplierName = nil
	candidate.Advisor.CompanyName = nil
	candidate.Vendor = nil

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, nil)

	assert.Len(t, violations, 1)
	assert.Equal(t, models.ViolationVendorIncomplete, violations[0].Type)
}

func TestRunPolicyPrecheck_VendorNameFallsBackThroughSources(t *testing.T) {
	candidate := createTestCandidate(floatPtr(1000), nil, nil)
	candidate.Proposal.SupplierName = nil
	candidate.Advisor.CompanyName = nil
	candidate.Vendor = &models.VendorCompany{Name: "Fallback Construction Ltd"}

	violations := RunPolicyPrecheck([]models.ProposalCandidate{candidate}, nil)

	assert.Empty(t, violations)
	assert.Equal(t, "Fallback Construction Ltd", candidate.VendorName())
}
