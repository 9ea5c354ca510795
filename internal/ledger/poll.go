package ledger

import (
	"context"
	"time"

	"cakewatch/internal/model"
)

// Mail arrives in batches on the ingestion interval, so a payment that was
// just made is usually a few seconds away from the ledger. The waiter
// re-checks on a fixed schedule up to a ceiling instead of answering
// not-found immediately.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 12
)

// Waiter polls the ledger for a query match until it is found or the retry
// budget runs out. Each Wait call owns its own ticker and counter; any
// number of waits may run concurrently against the same ledger.
type Waiter struct {
	Ledger   *Ledger
	Interval time.Duration
	Attempts int
}

// Wait checks immediately, then once per interval. It returns exactly once:
// the matched record, or ok=false when the budget is exhausted or the
// context is cancelled.
func (w *Waiter) Wait(ctx context.Context, q Query) (model.Transaction, bool) {
	if tx, ok := w.Ledger.Find(q); ok {
		return tx, true
	}

	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	attempts := w.Attempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return model.Transaction{}, false
		case <-ticker.C:
			if tx, ok := w.Ledger.Find(q); ok {
				return tx, true
			}
		}
	}
	return model.Transaction{}, false
}
