package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/metrics"
)

// ErrCircuitOpen signals that the call was rejected without reaching the provider.
var ErrCircuitOpen = errors.New("circuit open")

// Config holds circuit breaker settings.
type Config struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func (c Config) normalize() Config {
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = 1
	}
	return c
}

// Completer is the text-understanding call guarded by the breaker.
type Completer interface {
	Complete(ctx context.Context, instructions, text string) (string, error)
}

// Interpreter guards a Completer with a circuit breaker. No retries: a failure
// degrades interpretation immediately.
type Interpreter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[string]
}

// NewInterpreter wraps next. When cfg.Enabled is false next is returned unchanged.
func NewInterpreter(name string, next Completer, cfg Config, logger *zap.Logger) Completer {
	if !cfg.Enabled {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.normalize()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Interpreter{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

// Complete implements Completer.
func (i *Interpreter) Complete(ctx context.Context, instructions, text string) (string, error) {
	out, err := i.cb.Execute(func() (string, error) {
		return i.next.Complete(ctx, instructions, text)
	})
	if IsCircuitOpen(err) {
		return "", fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return out, err
}

// Open reports whether calls are currently being rejected.
func (i *Interpreter) Open() bool { return i.cb.State() == gobreaker.StateOpen }

// IsCircuitOpen reports whether err came from a tripped or saturated breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
