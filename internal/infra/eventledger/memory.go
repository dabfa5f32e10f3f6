package eventledger

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemorySize = 10000

// MemoryLedger is a single-process ledger bounded by size and age.
type MemoryLedger struct {
	mu       sync.Mutex
	done     *expirable.LRU[string, time.Time]
	inFlight map[string]struct{}
	now      func() time.Time
}

func NewMemoryLedger(size int, ttl time.Duration) *MemoryLedger {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = DefaultDoneTTL
	}
	return &MemoryLedger{
		done:     expirable.NewLRU[string, time.Time](size, nil, ttl),
		inFlight: make(map[string]struct{}),
		now:      time.Now,
	}
}

func (l *MemoryLedger) Do(ctx context.Context, eventID string, fn func(context.Context) error) (bool, error) {
	if err := validate(eventID, fn); err != nil {
		return false, err
	}

	l.mu.Lock()
	if l.done.Contains(eventID) {
		l.mu.Unlock()
		return true, nil
	}
	if _, busy := l.inFlight[eventID]; busy {
		l.mu.Unlock()
		return false, ErrInFlight
	}
	l.inFlight[eventID] = struct{}{}
	l.mu.Unlock()

	err := fn(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, eventID)
	if err != nil {
		return false, err
	}
	l.done.Add(eventID, l.now())
	return false, nil
}
