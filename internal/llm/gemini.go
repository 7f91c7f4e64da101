package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiClient streams content through the official genai client.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model, temperature: temperature}, nil
}

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Close() {}

// Stream forwards the text parts of each streamed candidate.
func (g *GeminiClient) Stream(ctx context.Context, req Request, onDelta func(string) error) error {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
		Temperature:       &temp,
	}

	for resp, err := range g.cli.Models.GenerateContentStream(ctx, g.model, genai.Text(req.User), cfg) {
		if err != nil {
			return classify(err)
		}
		if delta := responseText(resp); delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			text += p.Text
		}
	}
	return text
}

// classify marks rate limits and server failures as retryable.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500) {
		return &RetryableError{StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini stream: %w", err)
}
