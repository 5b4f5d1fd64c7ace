package chain

import (
	"context"
	"math"
	"time"
)

// Default confirmation polling budget: attempt 0 checks immediately, then the
// delay grows geometrically (1s, 1.5s, 2.25s, ...) until the attempts run out.
const (
	DefaultConfirmMaxAttempts   = 10
	DefaultConfirmInitialDelay  = time.Second
	DefaultConfirmBackoffFactor = 1.5
)

// ConfirmOptions tunes the confirmation polling loop. The zero value of any
// field falls back to the package default. Sleep is injectable for tests.
type ConfirmOptions struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	Sleep         func(ctx context.Context, d time.Duration) error
}

// Normalize returns a copy with zero fields replaced by the defaults. Safe
// to call on a nil receiver.
func (o *ConfirmOptions) Normalize() ConfirmOptions {
	out := ConfirmOptions{
		MaxAttempts:   DefaultConfirmMaxAttempts,
		InitialDelay:  DefaultConfirmInitialDelay,
		BackoffFactor: DefaultConfirmBackoffFactor,
		Sleep:         sleepContext,
	}
	if o == nil {
		return out
	}
	if o.MaxAttempts > 0 {
		out.MaxAttempts = o.MaxAttempts
	}
	if o.InitialDelay > 0 {
		out.InitialDelay = o.InitialDelay
	}
	if o.BackoffFactor > 0 {
		out.BackoffFactor = o.BackoffFactor
	}
	if o.Sleep != nil {
		out.Sleep = o.Sleep
	}
	return out
}

// Delay returns the backoff delay taken after the given zero-based attempt.
func (o ConfirmOptions) Delay(attempt int) time.Duration {
	return time.Duration(float64(o.InitialDelay) * math.Pow(o.BackoffFactor, float64(attempt)))
}

// AwaitConfirmation polls the status of ref until it reaches target or the
// attempt budget is exhausted. It returns (false, nil) on exhaustion; an error
// is returned only for status-query failures or context cancellation, which
// abort the wait entirely.
func AwaitConfirmation(ctx context.Context, client Client, ref TxRef, target ConfirmationStatus, opts *ConfirmOptions) (bool, error) {
	o := opts.Normalize()

	for attempt := 0; attempt < o.MaxAttempts; attempt++ {
		status, err := client.SignatureStatus(ctx, ref)
		if err != nil {
			return false, err
		}
		if status.AtLeast(target) {
			return true, nil
		}

		if attempt+1 < o.MaxAttempts {
			if err := o.Sleep(ctx, o.Delay(attempt)); err != nil {
				return false, err
			}
		}
	}

	return false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
