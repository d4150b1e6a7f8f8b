package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKeys is returned by NewGemini when no key is configured.
var ErrNoAPIKeys = errors.New("no Gemini API keys configured")

type geminiGenerator struct {
	mu         sync.Mutex
	clients    []*genai.Client
	currentKey int
	model      string
	logger     logger.Logger
}

// NewGemini creates one client per API key and rotates between them on 429 / quota errors.
func NewGemini(ctx context.Context, apiKeys []string, model string, log logger.Logger) (Generator, error) {
	if len(apiKeys) == 0 {
		return nil, ErrNoAPIKeys
	}
	if model == "" {
		model = DefaultModel
	}

	clients := make([]*genai.Client, 0, len(apiKeys))
	for i, key := range apiKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create client for key %d: %w", i+1, err)
		}
		clients = append(clients, client)
	}

	return &geminiGenerator{
		clients: clients,
		model:   model,
		logger:  log,
	}, nil
}

// Generate sends the prompt and returns the concatenated text parts of the first candidate.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	attempts := len(g.clients)
	var lastErr error

	for range attempts {
		idx, client := g.current()

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateFrom(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			return text.String(), nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiGenerator) current() (int, *genai.Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.clients[g.currentKey]
}

// rotateFrom advances past idx unless another caller already rotated.
func (g *geminiGenerator) rotateFrom(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.clients)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
