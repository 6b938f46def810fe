package trainer

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// LLMSource produces training pairs by asking a chat-completion endpoint to
// complete seed inputs. Pointing BaseURL at an OpenAI-compatible local server
// (Ollama, llama.cpp) works the same as the hosted API.
type LLMSource struct {
	client *openai.Client
	model  string
	system string
}

type LLMOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	// System overrides the instruction given before each seed.
	System string
}

const defaultCompletionPrompt = "Complete the given text naturally. Reply with the " +
	"completed text only, no quotes and no commentary."

func NewLLMSource(opts LLMOptions) (*LLMSource, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("llm source: model is required")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	} else if opts.APIKey == "" {
		return nil, fmt.Errorf("llm source: api key is required for the hosted endpoint")
	}
	system := opts.System
	if system == "" {
		system = defaultCompletionPrompt
	}
	return &LLMSource{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
		system: system,
	}, nil
}

// Pairs asks the endpoint to complete each seed and returns the resulting
// input/target pairs. Seeds whose completion comes back empty or unchanged
// are skipped rather than treated as errors.
func (s *LLMSource) Pairs(ctx context.Context, seeds []string) ([]Pair, error) {
	var pairs []Pair
	for _, seed := range seeds {
		if seed == "" {
			continue
		}
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: s.system},
				{Role: openai.ChatMessageRoleUser, Content: seed},
			},
		})
		if err != nil {
			return pairs, fmt.Errorf("llm completion for %q: %w", seed, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		target := strings.TrimSpace(resp.Choices[0].Message.Content)
		if target == "" || target == seed {
			continue
		}
		pairs = append(pairs, Pair{Input: seed, Target: target})
	}
	return pairs, nil
}
