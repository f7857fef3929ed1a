package gemini

import (
	"context"
	"errors"
	"fmt"

	"rfp-service/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const ProviderName = "gemini"

// GeminiClient wraps one API-key-scoped genai client.
type GeminiClient struct {
	Client *genai.Client
	Model  *genai.GenerativeModel
}

func NewGenAIClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	return &GeminiClient{
		Client: client,
		Model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from AI")
	}
	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(textPart), nil
}

// Provider implements ai.Provider on top of one or more Gemini API keys with
// round-robin failover.
type Provider struct {
	selector  *ClientSelector
	modelName string
}

func NewProvider(ctx context.Context, cfg config.GeminiAPIConfig) (*Provider, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, errors.New("at least one Gemini API key is required")
	}

	clients := make([]GeminiClient, 0, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		client, err := NewGenAIClient(ctx, key, cfg.ModelName)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}

	return &Provider{
		selector:  NewClientSelector(clients),
		modelName: cfg.ModelName,
	}, nil
}

func (p *Provider) GenerateEvaluation(ctx context.Context, prompt string) (string, error) {
	var result string

	err := p.selector.TryAllClients(ctx, func(client *GeminiClient, clientIdx int) error {
		text, err := client.generate(ctx, prompt)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	if err != nil {
		return "", err
	}

	return result, nil
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) ModelName() string {
	return p.modelName
}
