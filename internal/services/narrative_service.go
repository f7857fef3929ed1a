package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"rfp-service/internal/ai"
	"rfp-service/internal/models"
)

// NarrativeService drives the pluggable generative-language backend. The
// backend is only ever a narrative generator; nothing it returns can change
// the locked deterministic fields.
type NarrativeService struct {
	provider ai.Provider
	timeout  time.Duration
	locale   string
}

func NewNarrativeService(provider ai.Provider, timeout time.Duration, locale string) *NarrativeService {
	return &NarrativeService{
		provider: provider,
		timeout:  timeout,
		locale:   locale,
	}
}

// CheckConfigured fails with CONFIGURATION_ERROR when no backend is wired.
func (s *NarrativeService) CheckConfigured() error {
	if s == nil || s.provider == nil {
		return newEvalError(CodeConfiguration, "no narrative backend is configured")
	}
	return nil
}

func (s *NarrativeService) ProviderName() string {
	if s == nil || s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

func (s *NarrativeService) ModelName() string {
	if s == nil || s.provider == nil {
		return ""
	}
	return s.provider.ModelName()
}

type narrativeOutcome struct {
	text string
	err  error
}

// GenerateBatchReview sends the combined context document and parses the
// response. The call races a fixed timer; on timeout the in-flight request is
// cancelled and the whole run fails - no partial narrative is ever
// substituted.
func (s *NarrativeService) GenerateBatchReview(ctx context.Context, frame *models.EvaluationFrame, locked []models.LockedScore) (*models.RawBatchReview, error) {
	if err := s.CheckConfigured(); err != nil {
		return nil, err
	}

	prompt := ai.BuildEvaluationPrompt(frame, locked, s.locale)

	slog.Info("Sending narrative evaluation request",
		"provider", s.provider.Name(),
		"model", s.provider.ModelName(),
		"prompt_length", len(prompt),
		"proposal_count", len(locked),
		"timeout", s.timeout)

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomeCh := make(chan narrativeOutcome, 1)
	go func() {
		text, err := s.provider.GenerateEvaluation(callCtx, prompt)
		outcomeCh <- narrativeOutcome{text: text, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var outcome narrativeOutcome
	select {
	case outcome = <-outcomeCh:
	case <-timer.C:
		cancel() // abandon the in-flight call
		return nil, newEvalError(CodeTimeout, "narrative backend exceeded the evaluation time budget")
	case <-ctx.Done():
		cancel()
		return nil, wrapEvalError(CodeTimeout, "evaluation cancelled before the narrative backend responded", ctx.Err())
	}

	if outcome.err != nil {
		return nil, wrapEvalError(CodeAIAPI, "narrative backend request failed", outcome.err)
	}

	raw := stripFenceMarkers(outcome.text)

	var review models.RawBatchReview
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		slog.Error("Failed to parse narrative backend response",
			"error", err,
			"response_length", len(raw))
		return nil, wrapEvalError(CodeInvalidJSON, "narrative backend returned unparseable output", err)
	}

	return &review, nil
}

// stripFenceMarkers removes a wrapping markdown code fence if present.
func stripFenceMarkers(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
