package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiAPI calls the Gemini developer API with an API key.
type GeminiAPI struct {
	client *genai.Client
	model  string
}

func NewGeminiAPI(ctx context.Context, apiKey, modelName string) (*GeminiAPI, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiAPI{client: c, model: modelName}, nil
}

func (g *GeminiAPI) Close() error { return nil }

func (g *GeminiAPI) Generate(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("gemini request blocked: %v", fb.BlockReason)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini returned empty content")
	}
	return out, nil
}
