// Package gemini provides an embedding.Provider backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/candidate-matcher/internal/embedding"
	"github.com/spigell/candidate-matcher/internal/utils"
)

const (
	// Name is the provider name used in configuration and logs.
	Name = "gemini"

	// DefaultModel and DefaultDimension apply when the config leaves them unset.
	DefaultModel     = "gemini-embedding-001"
	DefaultDimension = 768

	defaultMaxRetries   = 3
	defaultMaxLogLength = 120

	baseDelay     = time.Second
	maxDelay      = 20 * time.Second
	maxQuotaDelay = 30 * time.Second
)

var (
	wait = utils.WaitFor

	retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*s`)
)

type embedContenter interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Config holds the Gemini embedding settings.
type Config struct {
	APIKey       string
	Model        string
	Dimension    int
	MaxRetries   int
	MaxLogLength int
}

// Embedder calls Models.EmbedContent and validates the returned vectors.
type Embedder struct {
	models     embedContenter
	model      string
	dim        int
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini API client and wraps it as an embedding provider.
func NewEmbedder(ctx context.Context, cfg Config, logger *zap.Logger) (*Embedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, cfg, logger), nil
}

func newEmbedder(models embedContenter, cfg Config, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	dim := cfg.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Embedder{
		models:     models,
		model:      model,
		dim:        dim,
		maxRetries: retries,
		maxLogLen:  maxLogLen,
		logger:     logger,
	}
}

// Embed returns the embedding of text. Blank text maps to the zero vector
// without an API call.
func (e *Embedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	if e == nil || e.models == nil {
		return nil, embedding.Unavailable(errors.New("gemini embedder is not initialized"))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return make(embedding.Vector, e.dim), nil
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr(int32(e.dim)),
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		e.logger.Debug("gemini embed content request",
			zap.Int("attempt", attempt),
			zap.Int("text_length", utf8.RuneCountInString(text)),
			zap.String("text_preview", utils.TruncateForLog(text, e.maxLogLen)),
		)

		resp, err := e.models.EmbedContent(ctx, e.model, contents, config)
		if err == nil {
			vec, err := e.validate(resp)
			if err != nil {
				return nil, embedding.Unavailable(fmt.Errorf("invalid embedding response: %w", err))
			}
			return vec, nil
		}

		lastErr = err
		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Warn("gemini embed content failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, embedding.Unavailable(fmt.Errorf("waiting for retry: %w", err))
		}
	}

	return nil, embedding.Unavailable(fmt.Errorf("embed content: %w", lastErr))
}

func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) Name() string { return Name }

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func (e *Embedder) validate(resp *genai.EmbedContentResponse) (embedding.Vector, error) {
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("no embeddings returned")
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, errors.New("embedding vector is empty")
	}
	if len(values) != e.dim {
		return nil, fmt.Errorf("expected dimension %d, got %d", e.dim, len(values))
	}

	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, v)
		}
	}

	return embedding.Vector(values), nil
}

// retryDelay decides whether err is worth another attempt and how long to wait.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		if d, ok := parseRetryAfter(apiErr.Message); ok {
			if d > maxQuotaDelay {
				return 0, false
			}
			return d, true
		}
		return utils.Backoff(baseDelay, maxDelay, attempt), true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return utils.Backoff(baseDelay, maxDelay, attempt), true
	default:
		return 0, false
	}
}

func parseRetryAfter(message string) (time.Duration, bool) {
	match := retryAfterPattern.FindStringSubmatch(message)
	if len(match) != 2 {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
