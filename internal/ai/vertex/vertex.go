package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rfp-service/internal/config"

	"google.golang.org/genai"
)

const ProviderName = "vertex"

// Provider implements ai.Provider against Vertex AI.
type Provider struct {
	client    *genai.Client
	modelName string
}

func NewProvider(ctx context.Context, cfg config.VertexAIConfig) (*Provider, error) {
	if strings.TrimSpace(cfg.Project) == "" {
		return nil, errors.New("vertex project is required")
	}

	clientCfg := &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.Project,
		Location: cfg.Location,
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Provider{client: client, modelName: cfg.ModelName}, nil
}

func (p *Provider) GenerateEvaluation(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("vertex ai returned empty response")
	}

	return output, nil
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) ModelName() string {
	return p.modelName
}
