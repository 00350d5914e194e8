package negotiate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/metrics"
)

// Acquisition defaults.
const (
	DefaultAcquireAttempts = 2
	DefaultRetryDelay      = 200 * time.Millisecond
)

// AcquisitionError is returned when a device could not be opened.
type AcquisitionError struct {
	Attempts int
	Err      error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("camera acquisition failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// RetryingAcquirer opens streams from a device, retrying transient aborts.
type RetryingAcquirer struct {
	device   media.Device
	attempts int
	delay    time.Duration
	logger   logging.Logger
}

// AcquirerOption configures a RetryingAcquirer.
type AcquirerOption func(*RetryingAcquirer)

// WithAttempts sets the total number of attempts. Default 2.
func WithAttempts(n int) AcquirerOption {
	return func(a *RetryingAcquirer) {
		if n > 0 {
			a.attempts = n
		}
	}
}

// WithRetryDelay sets the wait before each retry. Default 200ms.
func WithRetryDelay(d time.Duration) AcquirerOption {
	return func(a *RetryingAcquirer) {
		if d >= 0 {
			a.delay = d
		}
	}
}

// WithAcquirerLogger sets the acquirer logger.
func WithAcquirerLogger(l logging.Logger) AcquirerOption {
	return func(a *RetryingAcquirer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewRetryingAcquirer wraps device with bounded retry.
func NewRetryingAcquirer(device media.Device, opts ...AcquirerOption) *RetryingAcquirer {
	a := &RetryingAcquirer{
		device:   device,
		attempts: DefaultAcquireAttempts,
		delay:    DefaultRetryDelay,
		logger:   logging.GetLogger("negotiate"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire opens a stream matching c. Only media.ErrAborted is retried; any
// other failure, including permission denial, is returned at once.
func (a *RetryingAcquirer) Acquire(ctx context.Context, c media.Constraints) (media.Stream, error) {
	var lastErr error
	attempt := 0
	for attempt < a.attempts {
		if attempt > 0 {
			metrics.ObserveAcquireRetry()
			a.logger.Info("Retrying camera acquisition", "attempt", attempt+1, "delay", a.delay, "error", lastErr)
			if err := sleepCtx(ctx, a.delay); err != nil {
				return nil, &AcquisitionError{Attempts: attempt, Err: err}
			}
		}
		attempt++

		stream, err := a.device.Acquire(ctx, c)
		if err == nil {
			return stream, nil
		}
		lastErr = err

		if !errors.Is(err, media.ErrAborted) {
			break
		}
	}
	return nil, &AcquisitionError{Attempts: attempt, Err: lastErr}
}

// AcquireOnce opens a stream with a single attempt.
func (a *RetryingAcquirer) AcquireOnce(ctx context.Context, c media.Constraints) (media.Stream, error) {
	stream, err := a.device.Acquire(ctx, c)
	if err != nil {
		return nil, &AcquisitionError{Attempts: 1, Err: err}
	}
	return stream, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
