// Package ledger keeps the most recent extracted transactions in memory so
// the HTTP API can answer "did this payment arrive". The store is volatile
// on purpose: it lives for the process lifetime and resets to empty on
// restart.
package ledger

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"cakewatch/internal/model"
)

// Retention is the maximum number of records kept; the oldest record is
// dropped once the bound is exceeded.
const Retention = 50

// Ledger is a bounded, newest-first transaction store. It is written by the
// ingestion loop and read concurrently by API requests.
type Ledger struct {
	mu  sync.RWMutex
	txs []model.Transaction
	max int
}

func New() *Ledger {
	return &Ledger{max: Retention}
}

// Append inserts a record at the front and evicts the oldest once the
// retention bound is exceeded. Duplicates are accepted: the transaction code
// comes out of best-effort extraction and cannot be trusted as a key.
func (l *Ledger) Append(tx model.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = append([]model.Transaction{tx}, l.txs...)
	if len(l.txs) > l.max {
		l.txs = l.txs[:l.max]
	}
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Credits returns the credit transactions (amount prefixed with the credit
// sign), newest first. With a non-nil since, only records strictly after
// that time are returned; records whose timestamp cannot be parsed are
// excluded under an active filter.
func (l *Ledger) Credits(since *time.Time) []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		if !tx.IsCredit() {
			continue
		}
		if since != nil {
			ts, ok := parseProviderTime(tx.DateTime)
			if !ok || !ts.After(*since) {
				continue
			}
		}
		out = append(out, tx)
	}
	return out
}

// Query is the amount/content predicate used by the check API.
type Query struct {
	Amount  string
	Content string
}

// Matches reports whether tx satisfies the query: normalized amounts must be
// exactly equal and the stored memo must contain the query content,
// case-insensitively.
func (q Query) Matches(tx model.Transaction) bool {
	if CleanAmount(tx.Amount) != CleanAmount(q.Amount) {
		return false
	}
	return strings.Contains(strings.ToLower(tx.Content), strings.ToLower(q.Content))
}

// Find returns the first record, in newest-first order, matching the query.
func (l *Ledger) Find(q Query) (model.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, tx := range l.txs {
		if q.Matches(tx) {
			return tx, true
		}
	}
	return model.Transaction{}, false
}

// CleanAmount strips thousands separators, the credit sign, the currency
// suffix and whitespace so amounts from different sources compare exactly.
func CleanAmount(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '+', 'đ':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// providerTimeLayouts covers the timestamp shapes seen in CAKE mail plus the
// standard forms; parsing is best effort only.
var providerTimeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseProviderTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range providerTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
