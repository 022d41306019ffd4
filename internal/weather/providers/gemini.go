package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"

	"github.com/YGJH/backend-test/internal/weather"
)

const DefaultGeminiModel = "gemini-1.5-flash"

var errEmptyAdvice = errors.New("model returned no text")

// GeminiAdvisor sends a single user-role prompt to a Gemini model.
type GeminiAdvisor struct {
	name    string
	client  *genai.Client
	model   *genai.GenerativeModel
	circuit *gobreaker.CircuitBreaker
}

// NewGeminiAdvisor creates the client once; callers share it across requests and Close it on shutdown.
func NewGeminiAdvisor(ctx context.Context, apiKey, modelName string) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)

	return &GeminiAdvisor{
		name:    "gemini",
		client:  client,
		model:   model,
		circuit: newCircuit("gemini"),
	}, nil
}

// GenerateAdvice returns the model's text for prompt.
func (g *GeminiAdvisor) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	result, err := g.circuit.Execute(func() (interface{}, error) {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		text := responseText(resp)
		if text == "" {
			return nil, errEmptyAdvice
		}
		return text, nil
	})
	if err != nil {
		return "", weather.UpstreamError(g.name, err)
	}
	return result.(string), nil
}

// Close releases the underlying client.
func (g *GeminiAdvisor) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}
