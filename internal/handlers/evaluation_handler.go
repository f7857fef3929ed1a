package handlers

import (
	"log/slog"
	"net/http"

	"rfp-service/internal/apiutil"
	"rfp-service/internal/models"
	"rfp-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type EvaluationHandler struct {
	evaluationService *services.EvaluationService
	resultStore       *services.ResultStore
}

func NewEvaluationHandler(evaluationService *services.EvaluationService, resultStore *services.ResultStore) *EvaluationHandler {
	return &EvaluationHandler{
		evaluationService: evaluationService,
		resultStore:       resultStore,
	}
}

func (h *EvaluationHandler) Register(app *fiber.App) {
	gr := app.Group("procurement/api/v1")

	evalGroup := gr.Group("/evaluations")
	evalGroup.Post("/run", h.RunEvaluation)                         // POST /evaluations/run
	evalGroup.Get("/by-project/:project_id", h.GetResultsByProject) // GET /evaluations/by-project/:project_id
	evalGroup.Get("/:proposal_id", h.GetResultByProposal)           // GET /evaluations/:proposal_id
}

// RunEvaluation triggers a scoring and review run for a project's proposals.
// Re-running against an unchanged proposal set returns the stored results.
func (h *EvaluationHandler) RunEvaluation(c fiber.Ctx) error {
	var req models.EvaluateRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	response, err := h.evaluationService.Evaluate(c.Context(), &req)
	if err != nil {
		code := services.CodeOf(err)
		status := services.HTTPStatusOf(code)
		if status >= http.StatusInternalServerError {
			slog.Error("Evaluation run failed", "project_id", req.ProjectID, "code", code, "error", err)
		}
		return c.Status(status).JSON(
			apiutil.CreateErrorResponse(string(code), services.MessageOf(err)))
	}

	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(response))
}

// GetResultsByProject returns the stored evaluation for a whole project.
func (h *EvaluationHandler) GetResultsByProject(c fiber.Ctx) error {
	projectIDStr := c.Params("project_id")
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_UUID", "Invalid project ID format"))
	}

	response, err := h.resultStore.GetByProject(projectID)
	if err != nil {
		code := services.CodeOf(err)
		status := services.HTTPStatusOf(code)
		if status >= http.StatusInternalServerError {
			slog.Error("Failed to get evaluation results", "project_id", projectID, "error", err)
		}
		return c.Status(status).JSON(
			apiutil.CreateErrorResponse(string(code), services.MessageOf(err)))
	}

	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(response))
}

// GetResultByProposal returns the stored merged record for one proposal.
func (h *EvaluationHandler) GetResultByProposal(c fiber.Ctx) error {
	proposalIDStr := c.Params("proposal_id")
	proposalID, err := uuid.Parse(proposalIDStr)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			apiutil.CreateErrorResponse("INVALID_UUID", "Invalid proposal ID format"))
	}

	result, err := h.resultStore.GetByProposal(c.Context(), proposalID)
	if err != nil {
		code := services.CodeOf(err)
		status := services.HTTPStatusOf(code)
		if status >= http.StatusInternalServerError {
			slog.Error("Failed to get evaluation result", "proposal_id", proposalID, "error", err)
		}
		return c.Status(status).JSON(
			apiutil.CreateErrorResponse(string(code), services.MessageOf(err)))
	}

	return c.Status(http.StatusOK).JSON(apiutil.CreateSuccessResponse(map[string]interface{}{
		"proposal_id": proposalID,
		"result":      result,
	}))
}
