// Package eventledger records processed webhook event ids so provider
// retries are acknowledged without being applied twice.
package eventledger

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrInFlight means another worker holds the lock for the event and has not
// finished yet. Callers should answer non-2xx so the provider retries.
var ErrInFlight = errors.New("webhook event is already being processed")

var (
	errEventIDRequired = errors.New("event id is required")
	errHandlerRequired = errors.New("handler is required")
)

const (
	DefaultLockTTL = 10 * time.Minute
	DefaultDoneTTL = 30 * 24 * time.Hour
)

// Ledger runs fn at most once per event id. already is true when the event
// was processed before; fn is not invoked in that case.
type Ledger interface {
	Do(ctx context.Context, eventID string, fn func(context.Context) error) (already bool, err error)
}

func validate(eventID string, fn func(context.Context) error) error {
	if strings.TrimSpace(eventID) == "" {
		return errEventIDRequired
	}
	if fn == nil {
		return errHandlerRequired
	}
	return nil
}
