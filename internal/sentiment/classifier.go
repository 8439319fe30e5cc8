// Package sentiment labels canonical signals with a sentiment class.
//
// The production classifier calls an OpenAI-compatible chat model. It is
// rate limited and guarded by a circuit breaker so a misbehaving upstream
// degrades the pipeline instead of stalling it. Wrap any Classifier with
// Cached to avoid re-classifying content seen recently.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/pulsesift/pulsesift/internal/platform/observability"
)

// Labels the classifier may return.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelMixed    = "mixed"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = time.Minute
	rateLimiterBurst        = 5
	maxContentChars         = 4000

	classifyPrompt = "Classify the overall sentiment of the following text as exactly one word: " +
		"positive, negative, neutral, or mixed. Reply with only that word.\n\n%s"
)

// ErrCircuitBreakerOpen indicates the circuit breaker is open.
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// Classifier labels one piece of content.
type Classifier interface {
	Classify(ctx context.Context, content string) (string, error)
}

type openaiClassifier struct {
	client      *openai.Client
	model       string
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

// NewOpenAI creates the production classifier.
func NewOpenAI(apiKey, model string, rps int, logger *zerolog.Logger) Classifier {
	if model == "" {
		model = openai.GPT4oMini
	}

	if rps <= 0 {
		rps = 1
	}

	return &openaiClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rps)), rateLimiterBurst),
	}
}

func (c *openaiClassifier) Classify(ctx context.Context, content string) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(classifyPrompt, content),
			},
		},
	})

	observability.ClassifierRequestDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		c.recordFailure()

		return "", fmt.Errorf("chat completion: %w", err)
	}

	c.recordSuccess()

	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	return normalizeLabel(resp.Choices[0].Message.Content), nil
}

// normalizeLabel maps a model reply onto the closed label set. Anything
// unrecognized degrades to neutral rather than propagating junk labels.
func normalizeLabel(reply string) string {
	label := strings.ToLower(strings.TrimSpace(reply))
	label = strings.Trim(label, ".\"'")

	switch label {
	case LabelPositive, LabelNegative, LabelNeutral, LabelMixed:
		return label
	default:
		return LabelNeutral
	}
}

func (c *openaiClassifier) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClassifier) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *openaiClassifier) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}
