package negotiate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smazurov/camtune/internal/media"
)

func newTestAcquirer(d media.Device, opts ...AcquirerOption) *RetryingAcquirer {
	opts = append([]AcquirerOption{WithAcquirerLogger(testLogger())}, opts...)
	return NewRetryingAcquirer(d, opts...)
}

func TestRetryingAcquirer(t *testing.T) {
	aborted := fmt.Errorf("open /dev/video0: %w", media.ErrAborted)
	denied := fmt.Errorf("open /dev/video0: %w", media.ErrPermissionDenied)

	tests := []struct {
		name      string
		errs      []error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"first attempt succeeds", nil, 2, 1, nil},
		{"aborted then success", []error{aborted}, 2, 2, nil},
		{"aborted twice fails", []error{aborted, aborted}, 2, 2, media.ErrAborted},
		{"denied is not retried", []error{denied}, 2, 1, media.ErrPermissionDenied},
		{"not supported is not retried", []error{media.ErrNotSupported}, 2, 1, media.ErrNotSupported},
		{"three attempts configured", []error{aborted, aborted}, 3, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{acquireErrs: tt.errs}
			a := newTestAcquirer(dev, WithAttempts(tt.attempts), WithRetryDelay(time.Millisecond))

			stream, err := a.Acquire(context.Background(), media.Constraints{})
			if dev.callCount() != tt.wantCalls {
				t.Errorf("device called %d times, want %d", dev.callCount(), tt.wantCalls)
			}

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if stream == nil {
					t.Fatal("expected stream")
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error %v does not wrap %v", err, tt.wantErr)
			}
			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				t.Fatalf("expected *AcquisitionError, got %T", err)
			}
			if acqErr.Attempts != tt.wantCalls {
				t.Errorf("Attempts = %d, want %d", acqErr.Attempts, tt.wantCalls)
			}
		})
	}
}

func TestRetryingAcquirerWaitsBeforeRetry(t *testing.T) {
	dev := &fakeDevice{acquireErrs: []error{media.ErrAborted}}
	a := newTestAcquirer(dev, WithRetryDelay(30*time.Millisecond))

	start := time.Now()
	if _, err := a.Acquire(context.Background(), media.Constraints{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("retry happened after %v, want at least 30ms", elapsed)
	}
}

func TestRetryingAcquirerCancelledDuringDelay(t *testing.T) {
	dev := &fakeDevice{acquireErrs: []error{media.ErrAborted}}
	a := newTestAcquirer(dev, WithRetryDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Acquire(ctx, media.Constraints{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if dev.callCount() != 1 {
		t.Errorf("device called %d times, want 1", dev.callCount())
	}
}

func TestAcquireOnceDoesNotRetry(t *testing.T) {
	dev := &fakeDevice{acquireErrs: []error{media.ErrAborted}}
	a := newTestAcquirer(dev, WithRetryDelay(time.Millisecond))

	_, err := a.AcquireOnce(context.Background(), media.Constraints{})
	if !errors.Is(err, media.ErrAborted) {
		t.Fatalf("expected aborted, got %v", err)
	}
	if dev.callCount() != 1 {
		t.Errorf("device called %d times, want 1", dev.callCount())
	}
}
