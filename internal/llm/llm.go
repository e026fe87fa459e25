package llm

import (
	"context"
	"fmt"
)

// Request contains the data sent to an LLM.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response contains the raw response from an LLM.
type Response struct {
	Text       string
	TokensUsed int
	// Cached is true when the response was served from the response cache
	// rather than the provider.
	Cached bool
}

// Caller is the provider abstraction interface.
type Caller interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
	Model() string
}

// New creates a provider by name.
func New(provider, model string) (Caller, error) {
	switch provider {
	case "gemini", "google":
		return NewGemini(model)
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
