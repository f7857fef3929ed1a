package models

import (
	"time"

	"rfp-service/internal/apiutil"

	"github.com/google/uuid"
)

// ============================================================================
// EVALUATION FRAME (aggregated inputs for one run)
// ============================================================================

// ProposalCandidate joins one deduplicated proposal with its advisor, invite
// and best-effort vendor company record.
type ProposalCandidate struct {
	Proposal Proposal
	Advisor  Advisor
	Invite   RFPInvite
	Vendor   *VendorCompany
}

// VendorName resolves the display name for the candidate: the proposal's
// declared supplier name, then the advisor's company name, then the resolved
// vendor company name. Empty when none exists.
func (c *ProposalCandidate) VendorName() string {
	if c.Proposal.SupplierName != nil && *c.Proposal.SupplierName != "" {
		return *c.Proposal.SupplierName
	}
	if c.Advisor.CompanyName != nil && *c.Advisor.CompanyName != "" {
		return *c.Advisor.CompanyName
	}
	if c.Vendor != nil && c.Vendor.Name != "" {
		return c.Vendor.Name
	}
	return ""
}

// EvaluationFrame is the consistent input set one run operates on.
// All candidates share the same rfp_id and advisor_type.
type EvaluationFrame struct {
	Project    Project
	Candidates []ProposalCandidate
	FeeItems   []FeeItem
	ScopeItems []ServiceScopeItem
	Policy     *OrganizationPolicy
}

// Mode is SINGLE for exactly one candidate, COMPARE otherwise.
func (f *EvaluationFrame) Mode() EvaluationMode {
	if len(f.Candidates) == 1 {
		return ModeSingle
	}
	return ModeCompare
}

// MandatoryFeeItems returns the non-optional fee items of the shared RFP.
func (f *EvaluationFrame) MandatoryFeeItems() []FeeItem {
	items := make([]FeeItem, 0, len(f.FeeItems))
	for _, it := range f.FeeItems {
		if !it.IsOptional {
			items = append(items, it)
		}
	}
	return items
}

// MandatoryScopeItems returns the non-optional scope items of the shared RFP.
func (f *EvaluationFrame) MandatoryScopeItems() []ServiceScopeItem {
	items := make([]ServiceScopeItem, 0, len(f.ScopeItems))
	for _, it := range f.ScopeItems {
		if !it.IsOptional {
			items = append(items, it)
		}
	}
	return items
}

// ============================================================================
// DETERMINISTIC SCORING
// ============================================================================

type PolicyViolation struct {
	ProposalID uuid.UUID     `json:"proposal_id"`
	Type       ViolationType `json:"type"`
	Message    string        `json:"message"`
}

// DeterministicScore is the per-proposal locked bundle. Created once per run,
// never mutated after ranking.
type DeterministicScore struct {
	ProposalID         uuid.UUID `json:"proposal_id"`
	VendorName         string    `json:"vendor_name"`
	CoverageScore      float64   `json:"coverage_score"`
	PriceScore         *float64  `json:"price_score,omitempty"`
	FinalScore         int       `json:"final_score"`
	KnockoutTriggered  bool      `json:"knockout_triggered"`
	KnockoutReasonHint string    `json:"knockout_reason_hint,omitempty"`
	DataCompleteness   float64   `json:"data_completeness"`
	MissingFeeItems    []string  `json:"missing_fee_items"`
	MissingScopeItems  []string  `json:"missing_scope_items"`
	Violations         []PolicyViolation
	VendorIncomplete   bool
}

// LockedScore adds the rank fields frozen by the rank locker. Downstream
// components must never alter these values.
type LockedScore struct {
	DeterministicScore
	Rank                int                 `json:"rank"`
	RecommendationLevel RecommendationLevel `json:"recommendation_level"`
}

// ============================================================================
// NARRATIVE BACKEND OUTPUT (raw, untrusted)
// ============================================================================

// RawBatchReview is the parsed narrative-backend response before validation.
// Numeric fields present here are ignored on merge; the locked bundle wins.
type RawBatchReview struct {
	BatchSummary     RawBatchSummary     `json:"batch_summary"`
	RankedProposals  []RawProposalReview `json:"ranked_proposals"`
	EvaluationNotice *string             `json:"evaluation_notice,omitempty"`
}

type RawBatchSummary struct {
	EvaluationMode      string   `json:"evaluation_mode"`
	TotalProposals      int      `json:"total_proposals"`
	ProjectTypeDetected string   `json:"project_type_detected"`
	PriceBenchmarkUsed  *float64 `json:"price_benchmark_used"`
	MarketContext       *string  `json:"market_context,omitempty"`
}

type RawProposalReview struct {
	ProposalID          string   `json:"proposal_id"`
	VendorName          string   `json:"vendor_name"`
	FinalScore          *float64 `json:"final_score,omitempty"`
	Rank                *int     `json:"rank,omitempty"`
	DataCompleteness    *float64 `json:"data_completeness,omitempty"`
	RecommendationLevel *string  `json:"recommendation_level,omitempty"`
	KnockoutTriggered   *bool    `json:"knockout_triggered,omitempty"`
	KnockoutReason      *string  `json:"knockout_reason,omitempty"`
	Strengths           []string `json:"strengths,omitempty"`
	Weaknesses          []string `json:"weaknesses,omitempty"`
	MissingRequirements []string `json:"missing_requirements,omitempty"`
	ExtraOfferings      []string `json:"extra_offerings,omitempty"`
	RedFlags            []string `json:"red_flags,omitempty"`
	GreenFlags          []string `json:"green_flags,omitempty"`
	OverallAssessment   *string  `json:"overall_assessment,omitempty"`
	PriceAssessment     *string  `json:"price_assessment,omitempty"`
	ComparativeNotes    *string  `json:"comparative_notes,omitempty"`
}

// ============================================================================
// MERGED OUTPUT
// ============================================================================

type ProposalFlags struct {
	RedFlags          []string `json:"red_flags"`
	GreenFlags        []string `json:"green_flags"`
	KnockoutTriggered bool     `json:"knockout_triggered"`
	KnockoutReason    *string  `json:"knockout_reason"`
}

type IndividualAnalysis struct {
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	MissingRequirements []string `json:"missing_requirements"`
	ExtraOfferings      []string `json:"extra_offerings"`
	OverallAssessment   string   `json:"overall_assessment"`
	PriceAssessment     *string  `json:"price_assessment,omitempty"`
}

// RankedProposal is the authoritative merged record returned to callers and
// persisted per proposal.
type RankedProposal struct {
	ProposalID          uuid.UUID           `json:"proposal_id"`
	VendorName          string              `json:"vendor_name"`
	FinalScore          int                 `json:"final_score"`
	Rank                int                 `json:"rank"`
	DataCompleteness    float64             `json:"data_completeness"`
	RecommendationLevel RecommendationLevel `json:"recommendation_level"`
	Flags               ProposalFlags       `json:"flags"`
	IndividualAnalysis  IndividualAnalysis  `json:"individual_analysis"`
	ComparativeNotes    *string             `json:"comparative_notes"`
}

type BatchSummary struct {
	TotalProposals      int                 `json:"total_proposals"`
	EvaluationMode      EvaluationMode      `json:"evaluation_mode"`
	ProjectTypeDetected ProjectTypeDetected `json:"project_type_detected"`
	PriceBenchmarkUsed  *float64            `json:"price_benchmark_used"`
	MarketContext       *string             `json:"market_context,omitempty"`
}

type EvaluationMetadata struct {
	ModelName string `json:"model_name"`
	Provider  string `json:"provider"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// EvaluationResponse is the success payload of an evaluation run.
type EvaluationResponse struct {
	ProjectID          uuid.UUID           `json:"project_id"`
	Cached             bool                `json:"cached"`
	BatchSummary       BatchSummary        `json:"batch_summary"`
	RankedProposals    []RankedProposal    `json:"ranked_proposals"`
	EvaluationMetadata *EvaluationMetadata `json:"evaluation_metadata,omitempty"`
}

// ============================================================================
// PERSISTED RESULT ROW
// ============================================================================

type EvaluationResult struct {
	ProposalID   uuid.UUID       `json:"proposal_id" db:"proposal_id"`
	ProjectID    uuid.UUID       `json:"project_id" db:"project_id"`
	FinalScore   int             `json:"final_score" db:"final_score"`
	Rank         int             `json:"rank" db:"rank"`
	Status       ResultStatus    `json:"status" db:"status"`
	Payload      apiutil.JSONMap `json:"payload" db:"payload"`
	BatchSummary apiutil.JSONMap `json:"batch_summary" db:"batch_summary"`
	ModelName    string          `json:"model_name" db:"model_name"`
	Provider     string          `json:"provider" db:"provider"`
	ElapsedMS    int64           `json:"elapsed_ms" db:"elapsed_ms"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
