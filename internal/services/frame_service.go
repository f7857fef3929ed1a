package services

import (
	"errors"
	"log/slog"
	"sort"

	"rfp-service/internal/models"
	"rfp-service/internal/repository"

	"github.com/google/uuid"
)

// FrameService assembles the consistent input set one evaluation run operates
// on. All loads happen up front; later stages never touch the database.
type FrameService struct {
	projectRepo  *repository.ProjectRepository
	proposalRepo *repository.ProposalRepository
	inviteRepo   *repository.RFPInviteRepository
	advisorRepo  *repository.AdvisorRepository
	policyRepo   *repository.OrganizationPolicyRepository
}

func NewFrameService(
	projectRepo *repository.ProjectRepository,
	proposalRepo *repository.ProposalRepository,
	inviteRepo *repository.RFPInviteRepository,
	advisorRepo *repository.AdvisorRepository,
	policyRepo *repository.OrganizationPolicyRepository,
) *FrameService {
	return &FrameService{
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		inviteRepo:   inviteRepo,
		advisorRepo:  advisorRepo,
		policyRepo:   policyRepo,
	}
}

// BuildFrame aggregates project, proposals, invites, advisors, requirement
// items and the organization policy into one frame.
//
// Steps:
//  1. Load the project (NOT_FOUND when absent)
//  2. Load eligible proposals, optionally restricted to the requested ids
//  3. Deduplicate per invite, keeping the latest version
//  4. Join invites and advisors, dropping unevaluable candidates
//  5. Reject mixed comparison sets (different rfp_id or advisor_type)
//  6. Load the shared RFP's fee and scope items
//  7. Load the organization policy (absence is not an error)
func (s *FrameService) BuildFrame(projectID uuid.UUID, proposalIDs []uuid.UUID) (*models.EvaluationFrame, error) {
	// Step 1: project
	project, err := s.projectRepo.GetByID(projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, newEvalError(CodeNotFound, "project not found")
		}
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load project", err)
	}

	// Step 2: eligible proposals
	proposals, err := s.proposalRepo.GetEligibleByProject(projectID, proposalIDs)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load proposals", err)
	}
	if len(proposals) == 0 {
		return nil, newEvalError(CodeValidation, "no eligible proposals found for the project")
	}

	// Step 3: one proposal per invite
	proposals = DeduplicateProposals(proposals)

	// Step 4: join invites and advisors
	candidates, err := s.joinCandidates(proposals)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, newEvalError(CodeValidation, "no evaluable proposals remain after resolving invites and advisors")
	}

	// Step 5: consistency of the comparison set
	sharedRFPID := candidates[0].Invite.RFPID
	sharedAdvisorType := candidates[0].Invite.AdvisorType
	for i := range candidates {
		if candidates[i].Invite.RFPID != sharedRFPID || candidates[i].Invite.AdvisorType != sharedAdvisorType {
			return nil, newEvalError(CodeValidation, "proposals belong to different RFPs or advisor types and cannot be compared")
		}
	}

	// Step 6: requirement items of the shared RFP
	feeItems, err := s.inviteRepo.GetFeeItemsByRFPID(sharedRFPID)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load fee items", err)
	}
	scopeItems, err := s.inviteRepo.GetScopeItemsByRFPID(sharedRFPID)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load service scope items", err)
	}

	// Step 7: organization policy
	policy, err := s.policyRepo.GetByOrganizationID(project.OrganizationID)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load organization policy", err)
	}

	// Stable candidate order for everything downstream.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Proposal.ID.String() < candidates[j].Proposal.ID.String()
	})

	slog.Info("Evaluation frame assembled",
		"project_id", projectID,
		"candidates", len(candidates),
		"fee_items", len(feeItems),
		"scope_items", len(scopeItems),
		"has_policy", policy != nil)

	return &models.EvaluationFrame{
		Project:    *project,
		Candidates: candidates,
		FeeItems:   feeItems,
		ScopeItems: scopeItems,
		Policy:     policy,
	}, nil
}

// DeduplicateProposals keeps one proposal per rfp_invite_id: highest version,
// then latest submission, then smallest id. Input order does not affect the
// outcome.
func DeduplicateProposals(proposals []models.Proposal) []models.Proposal {
	byInvite := make(map[uuid.UUID][]models.Proposal)
	for _, p := range proposals {
		byInvite[p.RFPInviteID] = append(byInvite[p.RFPInviteID], p)
	}

	result := make([]models.Proposal, 0, len(byInvite))
	for _, group := range byInvite {
		sort.Slice(group, func(i, j int) bool {
			if group[i].CurrentVersion != group[j].CurrentVersion {
				return group[i].CurrentVersion > group[j].CurrentVersion
			}
			if !group[i].SubmittedAt.Equal(group[j].SubmittedAt) {
				return group[i].SubmittedAt.After(group[j].SubmittedAt)
			}
			return group[i].ID.String() < group[j].ID.String()
		})
		result = append(result, group[0])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

// joinCandidates resolves each proposal's invite and advisor. Proposals on
// declined or expired invites, or with an unresolvable invite or advisor, are
// dropped with a warning rather than failing the run.
func (s *FrameService) joinCandidates(proposals []models.Proposal) ([]models.ProposalCandidate, error) {
	inviteIDs := make([]uuid.UUID, 0, len(proposals))
	advisorIDs := make([]uuid.UUID, 0, len(proposals))
	for _, p := range proposals {
		inviteIDs = append(inviteIDs, p.RFPInviteID)
		advisorIDs = append(advisorIDs, p.AdvisorID)
	}

	invites, err := s.inviteRepo.GetByIDs(inviteIDs)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load rfp invites", err)
	}
	advisors, err := s.advisorRepo.GetByIDs(advisorIDs)
	if err != nil {
		return nil, wrapEvalError(CodeEvaluationFailed, "failed to load advisors", err)
	}

	candidates := make([]models.ProposalCandidate, 0, len(proposals))
	for _, p := range proposals {
		invite, ok := invites[p.RFPInviteID]
		if !ok {
			slog.Warn("Dropping proposal with unresolvable invite", "proposal_id", p.ID, "rfp_invite_id", p.RFPInviteID)
			continue
		}
		if invite.Status == models.InviteDeclined || invite.Status == models.InviteExpired {
			slog.Warn("Dropping proposal on inactive invite", "proposal_id", p.ID, "invite_status", invite.Status)
			continue
		}
		advisor, ok := advisors[p.AdvisorID]
		if !ok {
			slog.Warn("Dropping proposal with unresolvable advisor", "proposal_id", p.ID, "advisor_id", p.AdvisorID)
			continue
		}

		// Best effort: a missing vendor company record never blocks evaluation.
		vendor, err := s.advisorRepo.GetVendorCompanyByAdvisorID(p.AdvisorID)
		if err != nil {
			slog.Warn("Failed to resolve vendor company, continuing without it", "advisor_id", p.AdvisorID, "error", err)
			vendor = nil
		}

		candidates = append(candidates, models.ProposalCandidate{
			Proposal: p,
			Advisor:  advisor,
			Invite:   invite,
			Vendor:   vendor,
		})
	}

	return candidates, nil
}
