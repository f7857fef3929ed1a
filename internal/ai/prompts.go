package ai

import (
	"encoding/json"
	"fmt"

	"rfp-service/internal/models"
)

// Sentinels used in the prompt contract. "none" disambiguates "nothing
// missing" from "no data"; "not provided" marks unknown values in the output.
const (
	NoneSentinel        = "none"
	NotProvidedSentinel = "not provided"
)

const evaluationPromptTemplate = `You are a procurement evaluation reviewer producing qualitative narrative for ranked service proposals.

## PRIMARY OBJECTIVE
Write the narrative assessment for every proposal listed below. The numeric evaluation (final_score, rank, data_completeness, recommendation_level, knockout_triggered) has already been computed deterministically and is LOCKED.

## CRITICAL RULES
1. Output ONLY valid JSON matching the schema below - no markdown, no explanations, no preamble
2. Your response must start with { and end with }
3. NEVER alter a locked numeric field. Echo locked values verbatim if you include them; they will be overwritten by the deterministic values regardless
4. Write ALL narrative text in locale: %s
5. Use the exact string "%s" for any value you cannot determine from the input
6. Missing-item lists in the input use the sentinel "%s" to mean "nothing is missing" - do not report such items as gaps
7. Evaluation mode is %s. %s
8. Every proposal in the input MUST appear exactly once in ranked_proposals, identified by its proposal_id

## OUTPUT SCHEMA
{
  "batch_summary": {
    "evaluation_mode": "%s",
    "total_proposals": <int>,
    "project_type_detected": "<STANDARD|LARGE_SCALE>",
    "price_benchmark_used": <number|null>,
    "market_context": "<string, optional>"
  },
  "ranked_proposals": [
    {
      "proposal_id": "<uuid from input>",
      "vendor_name": "<string>",
      "knockout_reason": "<string|null, only when the input marks the proposal knocked out>",
      "strengths": ["<string>"],
      "weaknesses": ["<string>"],
      "missing_requirements": ["<string>"],
      "extra_offerings": ["<string>"],
      "red_flags": ["<string>"],
      "green_flags": ["<string>"],
      "overall_assessment": "<string>",
      "price_assessment": "<string, COMPARE mode only - omit entirely in SINGLE mode>",
      "comparative_notes": "<string|null, COMPARE mode only>"
    }
  ]
}

---

## ORGANIZATION POLICY FRAME
%s

## PROJECT
%s

## RFP REQUIREMENTS
%s

## PROPOSALS WITH LOCKED DETERMINISTIC SCORES
%s
`

const singleModeInstruction = "Produce the per-proposal qualitative fields. Do NOT produce price_assessment or a price benchmark; there is no price comparison in SINGLE mode."

const compareModeInstruction = "price_assessment is REQUIRED for every proposal, relating its price to the batch benchmark. comparative_notes may contrast proposals against each other."

// promptProposal is the per-proposal record embedded in the context document.
type promptProposal struct {
	ProposalID           string                       `json:"proposal_id"`
	VendorName           string                       `json:"vendor_name"`
	Price                any                          `json:"price"`
	Currency             string                       `json:"currency"`
	TimelineDays         any                          `json:"timeline_days"`
	ScopeText            string                       `json:"scope_text"`
	FeeLineItems         []models.FeeLineItem         `json:"fee_line_items"`
	SelectedServices     []string                     `json:"selected_services"`
	MilestoneAdjustments []models.MilestoneAdjustment `json:"milestone_adjustments"`
	VendorProfile        any                          `json:"vendor_profile"`
	LockedScore          promptLockedScore            `json:"locked_score"`
}

type promptLockedScore struct {
	FinalScore          int      `json:"final_score"`
	Rank                int      `json:"rank"`
	CoverageScore       float64  `json:"coverage_score"`
	PriceScore          any      `json:"price_score"`
	DataCompleteness    float64  `json:"data_completeness"`
	RecommendationLevel string   `json:"recommendation_level"`
	KnockoutTriggered   bool     `json:"knockout_triggered"`
	KnockoutReasonHint  string   `json:"knockout_reason_hint"`
	MissingFeeItems     []string `json:"missing_fee_items"`
	MissingScopeItems   []string `json:"missing_scope_items"`
	PolicyViolations    []string `json:"policy_violations"`
}

// BuildEvaluationPrompt assembles the combined context document sent to the
// narrative backend: policy frame, project metadata, RFP requirements,
// per-proposal records and the locked deterministic bundle.
func BuildEvaluationPrompt(frame *models.EvaluationFrame, locked []models.LockedScore, locale string) string {
	mode := frame.Mode()

	modeInstruction := singleModeInstruction
	if mode == models.ModeCompare {
		modeInstruction = compareModeInstruction
	}

	policyJSON := []byte(`"` + NotProvidedSentinel + `"`)
	if frame.Policy != nil {
		policyJSON = mustJSON(frame.Policy)
	}

	projectJSON := mustJSON(map[string]any{
		"id":           frame.Project.ID,
		"name":         frame.Project.Name,
		"project_type": frame.Project.ProjectType,
		"location":     orSentinel(frame.Project.Location),
		"budget_min":   frame.Project.BudgetMin,
		"budget_max":   frame.Project.BudgetMax,
		"large_scale":  frame.Project.LargeScale,
	})

	requirementsJSON := mustJSON(map[string]any{
		"request_text":        firstCandidateRequestText(frame),
		"payment_terms_text":  firstCandidatePaymentTerms(frame),
		"fee_items":           frame.FeeItems,
		"service_scope_items": frame.ScopeItems,
	})

	lockedByID := make(map[string]models.LockedScore, len(locked))
	for _, l := range locked {
		lockedByID[l.ProposalID.String()] = l
	}

	proposals := make([]promptProposal, 0, len(frame.Candidates))
	for _, c := range frame.Candidates {
		l := lockedByID[c.Proposal.ID.String()]

		var vendorProfile any = NotProvidedSentinel
		if c.Vendor != nil {
			vendorProfile = c.Vendor
		}

		proposals = append(proposals, promptProposal{
			ProposalID:           c.Proposal.ID.String(),
			VendorName:           nonEmptyOrSentinel(c.VendorName()),
			Price:                floatOrSentinel(c.Proposal.Price),
			Currency:             nonEmptyOrSentinel(c.Proposal.Currency),
			TimelineDays:         intOrSentinel(c.Proposal.TimelineDays),
			ScopeText:            nonEmptyOrSentinel(c.Proposal.EvaluationText()),
			FeeLineItems:         c.Proposal.FeeLineItems,
			SelectedServices:     c.Proposal.SelectedServices,
			MilestoneAdjustments: c.Proposal.MilestoneAdjustments,
			VendorProfile:        vendorProfile,
			LockedScore: promptLockedScore{
				FinalScore:          l.FinalScore,
				Rank:                l.Rank,
				CoverageScore:       l.CoverageScore,
				PriceScore:          floatOrSentinel(l.PriceScore),
				DataCompleteness:    l.DataCompleteness,
				RecommendationLevel: string(l.RecommendationLevel),
				KnockoutTriggered:   l.KnockoutTriggered,
				KnockoutReasonHint:  l.KnockoutReasonHint,
				MissingFeeItems:     listOrNoneSentinel(l.MissingFeeItems),
				MissingScopeItems:   listOrNoneSentinel(l.MissingScopeItems),
				PolicyViolations:    violationMessages(l.Violations),
			},
		})
	}
	proposalsJSON := mustJSON(proposals)

	return fmt.Sprintf(evaluationPromptTemplate,
		locale,
		NotProvidedSentinel,
		NoneSentinel,
		mode,
		modeInstruction,
		mode,
		policyJSON,
		projectJSON,
		requirementsJSON,
		proposalsJSON,
	)
}

// listOrNoneSentinel defaults an empty missing-item list to the explicit
// sentinel so the model can tell "nothing missing" from "no data".
func listOrNoneSentinel(items []string) []string {
	if len(items) == 0 {
		return []string{NoneSentinel}
	}
	return items
}

func violationMessages(violations []models.PolicyViolation) []string {
	if len(violations) == 0 {
		return []string{NoneSentinel}
	}
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

func firstCandidateRequestText(frame *models.EvaluationFrame) string {
	if len(frame.Candidates) > 0 {
		return nonEmptyOrSentinel(frame.Candidates[0].Invite.RequestText)
	}
	return NotProvidedSentinel
}

func firstCandidatePaymentTerms(frame *models.EvaluationFrame) string {
	if len(frame.Candidates) > 0 {
		return nonEmptyOrSentinel(strOrEmpty(frame.Candidates[0].Invite.PaymentTermsText))
	}
	return NotProvidedSentinel
}

func mustJSON(v any) []byte {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return []byte("{}")
	}
	return b
}

func nonEmptyOrSentinel(s string) string {
	if s == "" {
		return NotProvidedSentinel
	}
	return s
}

func orSentinel(s *string) string {
	if s == nil || *s == "" {
		return NotProvidedSentinel
	}
	return *s
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrSentinel(f *float64) any {
	if f == nil {
		return NotProvidedSentinel
	}
	return *f
}

func intOrSentinel(i *int) any {
	if i == nil {
		return NotProvidedSentinel
	}
	return *i
}
