package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"leaveadvisor/internal/domain/advisory"
	"leaveadvisor/internal/domain/leave"
)

const DefaultModel = "gemini-2.0-flash"

const promptTemplate = `Analyze the following employee leave request reason and provide a brief sentiment and risk assessment.

Leave Type: %s
Reason: %q

Return only a JSON object with:
1. "sentiment": one word such as Positive, Neutral, Stressed or Urgent
2. "risk_level": number from 0 to 10, where 10 is a high risk of burnout or attrition
3. "manager_note": a brief suggestion for the manager on how to respond with empathy
4. "is_vague": true if the reason is too brief to analyze properly
`

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client assesses leave reasons through the Gemini API.
type Client struct {
	models generator
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newClient(client.Models, model), nil
}

func newClient(models generator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

func (c *Client) AssessReason(ctx context.Context, reason string, leaveType leave.Type) (advisory.Assessment, error) {
	prompt := fmt.Sprintf(promptTemplate, leaveType, reason)
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return advisory.Assessment{}, fmt.Errorf("%w: gemini: %w", leave.ErrUpstreamUnavailable, err)
	}
	text := resp.Text()
	if text == "" {
		return advisory.Assessment{}, fmt.Errorf("%w: gemini returned no text", leave.ErrUpstreamUnavailable)
	}
	return advisory.ParseAssessment(text), nil
}
