package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
)

type gateway interface {
	GetByID(context.Context, uuid.UUID) (*domain.User, error)
	GetByEmail(context.Context, string) (*domain.User, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes how RetryingGateway retries transient failures.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient gRPC failures with exponential backoff.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway wraps next. Returns nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// GetByID delegates with retries.
func (g *RetryingGateway) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return g.do(ctx, "GetByID", func() (*domain.User, error) { return g.next.GetByID(ctx, id) })
}

// GetByEmail delegates with retries.
func (g *RetryingGateway) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return g.do(ctx, "GetByEmail", func() (*domain.User, error) { return g.next.GetByEmail(ctx, email) })
}

func (g *RetryingGateway) do(ctx context.Context, method string, call func() (*domain.User, error)) (*domain.User, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		u, err := call()
		if err == nil {
			return u, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("users gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.ResourceExhausted,
		codes.Unavailable,
		codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

// backoff doubles base per attempt, capped at ceiling.
func backoff(base, ceiling time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > ceiling || d < 0 {
		return ceiling
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
