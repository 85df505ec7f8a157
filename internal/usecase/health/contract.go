package health

import "context"

// Pinger checks storage availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// BreakerProbe reports whether the interpreter circuit is open.
type BreakerProbe interface {
	Open() bool
}
