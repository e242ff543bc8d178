package loader

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrInvalidInterval is returned by Watch for a non-positive interval.
var ErrInvalidInterval = errors.New("watch interval must be positive")

// ChangeFunc receives a payload whose checksum differs from the previous
// one. Returning an error stops Watch.
type ChangeFunc func(ctx context.Context, p Payload) error

// ErrorFunc receives failed reads. Returning an error stops Watch; returning
// nil keeps polling.
type ErrorFunc func(ctx context.Context, err error) error

// Watch polls src at most once per interval until ctx is done. last is the
// checksum the caller already has; fn is only called on change.
//
// Read errors go to onErr; a nil onErr stops on the first failure.
func Watch(ctx context.Context, src Source, interval time.Duration, last uint32, fn ChangeFunc, onErr ErrorFunc) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	// The first token would fire immediately; the caller already has last.
	limiter.Allow()

	for {
		if err := limiter.Wait(ctx); err != nil {
			// The next poll would land after the deadline.
			<-ctx.Done()
			return ctx.Err()
		}

		p, err := src.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if onErr == nil {
				return err
			}
			if err := onErr(ctx, err); err != nil {
				return err
			}
			continue
		}
		if p.Checksum == last {
			continue
		}
		if err := fn(ctx, p); err != nil {
			return err
		}
		last = p.Checksum
	}
}
