package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClassifier struct {
	calls int
	label string
	err   error
}

func (c *countingClassifier) Classify(_ context.Context, _ string) (string, error) {
	c.calls++

	if c.err != nil {
		return "", c.err
	}

	return c.label, nil
}

func newTestCache(inner Classifier, capacity int, ttl time.Duration, now *time.Time) *cachedClassifier {
	cache := Cached(inner, capacity, ttl).(*cachedClassifier)
	cache.now = func() time.Time { return *now }

	return cache
}

func TestCachedClassifierHit(t *testing.T) {
	now := time.Now()
	inner := &countingClassifier{label: LabelPositive}
	cache := newTestCache(inner, 10, time.Hour, &now)

	ctx := context.Background()

	first, err := cache.Classify(ctx, "the release went well")
	require.NoError(t, err)

	second, err := cache.Classify(ctx, "the release went well")
	require.NoError(t, err)

	assert.Equal(t, LabelPositive, first)
	assert.Equal(t, LabelPositive, second)
	assert.Equal(t, 1, inner.calls, "second call should be served from cache")
}

func TestCachedClassifierKeysOnNormalizedContent(t *testing.T) {
	now := time.Now()
	inner := &countingClassifier{label: LabelNeutral}
	cache := newTestCache(inner, 10, time.Hour, &now)

	ctx := context.Background()

	_, err := cache.Classify(ctx, "The Release  Went Well")
	require.NoError(t, err)

	_, err = cache.Classify(ctx, "the release went well")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "normalized-equal content should share a cache entry")
}

func TestCachedClassifierTTLExpiry(t *testing.T) {
	now := time.Now()
	inner := &countingClassifier{label: LabelNegative}
	cache := newTestCache(inner, 10, time.Minute, &now)

	ctx := context.Background()

	_, err := cache.Classify(ctx, "the outage dragged on")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, err = cache.Classify(ctx, "the outage dragged on")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "expired entry must be re-classified")
}

func TestCachedClassifierCapacityEviction(t *testing.T) {
	now := time.Now()
	inner := &countingClassifier{label: LabelNeutral}
	cache := newTestCache(inner, 2, time.Hour, &now)

	ctx := context.Background()

	_, _ = cache.Classify(ctx, "first distinct content")
	_, _ = cache.Classify(ctx, "second distinct content")
	_, _ = cache.Classify(ctx, "third distinct content") // evicts first

	require.Equal(t, 3, inner.calls)
	assert.Equal(t, 2, len(cache.entries), "cache must stay within capacity")

	_, _ = cache.Classify(ctx, "first distinct content")
	assert.Equal(t, 4, inner.calls, "evicted entry must be re-classified")
}

func TestCachedClassifierDoesNotCacheErrors(t *testing.T) {
	now := time.Now()
	inner := &countingClassifier{err: errors.New("upstream down")}
	cache := newTestCache(inner, 10, time.Hour, &now)

	ctx := context.Background()

	_, err := cache.Classify(ctx, "some content")
	require.Error(t, err)

	inner.err = nil
	inner.label = LabelMixed

	label, err := cache.Classify(ctx, "some content")
	require.NoError(t, err)
	assert.Equal(t, LabelMixed, label)
	assert.Equal(t, 2, inner.calls)
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"positive", LabelPositive},
		{" Negative.", LabelNegative},
		{"NEUTRAL", LabelNeutral},
		{"\"mixed\"", LabelMixed},
		{"somewhat positive overall", LabelNeutral},
		{"", LabelNeutral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.reply), "reply %q", tt.reply)
	}
}
