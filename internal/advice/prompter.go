package advice

import (
	"context"
	"log"
	"time"

	"github.com/YGJH/backend-test/internal/weather"
)

// FallbackAdvice is returned whenever the model cannot be reached or answers with nothing.
const FallbackAdvice = weather.FallbackAdvice

// Generator is the language-model capability the prompter delegates to.
type Generator interface {
	GenerateAdvice(ctx context.Context, prompt string) (string, error)
}

// Prompter implements weather.Advisor.
type Prompter struct {
	gen      Generator
	language string
	timeout  time.Duration
}

// NewPrompter creates a Prompter. A nil gen always yields FallbackAdvice.
func NewPrompter(gen Generator, language string, timeout time.Duration) *Prompter {
	if language == "" {
		language = DefaultLanguage
	}
	if timeout <= 0 {
		timeout = weather.DefaultTimeout
	}
	return &Prompter{
		gen:      gen,
		language: language,
		timeout:  timeout,
	}
}

// Generate builds the prompt for rec and asks the model. It never fails.
func (p *Prompter) Generate(ctx context.Context, rec weather.Record) string {
	if p.gen == nil {
		return FallbackAdvice
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.gen.GenerateAdvice(ctx, BuildPrompt(rec, p.language))
	if err != nil {
		log.Printf("ERROR: advice: generation failed for %s: %v", rec.City, err)
		return FallbackAdvice
	}
	if text == "" {
		return FallbackAdvice
	}
	return text
}
