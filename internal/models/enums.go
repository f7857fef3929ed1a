package models

type ProposalStatus string

const (
	ProposalDraft                ProposalStatus = "draft"
	ProposalSubmitted            ProposalStatus = "submitted"
	ProposalResubmitted          ProposalStatus = "resubmitted"
	ProposalNegotiationRequested ProposalStatus = "negotiation_requested"
	ProposalWithdrawn            ProposalStatus = "withdrawn"
	ProposalRejected             ProposalStatus = "rejected"
)

// EligibleProposalStatuses are the statuses an evaluation run considers.
var EligibleProposalStatuses = []ProposalStatus{
	ProposalSubmitted,
	ProposalResubmitted,
	ProposalNegotiationRequested,
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
	InviteExpired  InviteStatus = "expired"
)

type EvaluationMode string

const (
	ModeSingle  EvaluationMode = "SINGLE"
	ModeCompare EvaluationMode = "COMPARE"
)

type ProjectTypeDetected string

const (
	ProjectStandard   ProjectTypeDetected = "STANDARD"
	ProjectLargeScale ProjectTypeDetected = "LARGE_SCALE"
)

type ViolationType string

const (
	ViolationCurrency         ViolationType = "CURRENCY"
	ViolationPaymentTerms     ViolationType = "PAYMENT_TERMS"
	ViolationVendorIncomplete ViolationType = "VENDOR_INCOMPLETE"
)

type RecommendationLevel string

const (
	HighlyRecommended RecommendationLevel = "Highly Recommended"
	Recommended       RecommendationLevel = "Recommended"
	ReviewRequired    RecommendationLevel = "Review Required"
	NotRecommended    RecommendationLevel = "Not Recommended"
)

type ResultStatus string

const (
	ResultPending   ResultStatus = "pending"
	ResultCompleted ResultStatus = "completed"
	ResultFailed    ResultStatus = "failed"
)
