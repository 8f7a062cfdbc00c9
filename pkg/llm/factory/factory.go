package factory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/llm/ollama"
	"ai-research-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "groq", "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("api key required for provider %q", providerType)
		}
		if providerType == "groq" && baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// SelfTest verifies the provider actually answers before the pipeline starts,
// retrying with a short fixed backoff. The process is meaningless without a
// working generation capability, so callers should treat failure as fatal.
func SelfTest(ctx context.Context, provider llm.LLMProvider, retries int) error {
	if retries <= 0 {
		retries = 3
	}
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}

		reply, err := provider.Generate(ctx, "Say 'OK'", llm.WithTemperature(0.0), llm.WithMaxTokens(8))
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(reply) == "" {
			lastErr = llm.ErrEmptyResponse
			continue
		}
		return nil
	}
	return fmt.Errorf("llm self-test failed: %w", lastErr)
}
