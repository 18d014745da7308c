package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/logging"
	"github.com/AlbeMasera/ATAI/internal/metrics"
)

const breakerFailures = 5

func breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// GuardedEncoder bounds each encode call with a timeout and a circuit breaker.
// Failures are wrapped with model.ErrUpstreamModel. There are no retries.
type GuardedEncoder struct {
	inner   Encoder
	cb      *gobreaker.CircuitBreaker[[][]float32]
	timeout time.Duration
}

func NewGuardedEncoder(inner Encoder, timeout time.Duration) *GuardedEncoder {
	return &GuardedEncoder{
		inner:   inner,
		cb:      gobreaker.NewCircuitBreaker[[][]float32](breakerSettings("encoder")),
		timeout: timeout,
	}
}

func (g *GuardedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.cb.Execute(func() ([][]float32, error) {
		return g.inner.Encode(ctx, texts)
	})
	metrics.Default().IncModelCall("encoder", err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: encoder: %w", model.ErrUpstreamModel, err)
	}
	return out, nil
}

// GuardedTagger is the tagger counterpart of GuardedEncoder.
type GuardedTagger struct {
	inner   Tagger
	cb      *gobreaker.CircuitBreaker[[]model.Span]
	timeout time.Duration
}

func NewGuardedTagger(inner Tagger, timeout time.Duration) *GuardedTagger {
	return &GuardedTagger{
		inner:   inner,
		cb:      gobreaker.NewCircuitBreaker[[]model.Span](breakerSettings("tagger")),
		timeout: timeout,
	}
}

func (g *GuardedTagger) Tag(ctx context.Context, text string) ([]model.Span, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.cb.Execute(func() ([]model.Span, error) {
		return g.inner.Tag(ctx, text)
	})
	metrics.Default().IncModelCall("tagger", err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: tagger: %w", model.ErrUpstreamModel, err)
	}
	return out, nil
}
