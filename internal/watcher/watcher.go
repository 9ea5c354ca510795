// Package watcher runs the ingestion cycle: poll the mailbox, extract a
// record from each new message, append it to the ledger and fan the alert
// out to the notification channels.
package watcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cakewatch/internal/extract"
	"cakewatch/internal/ledger"
	"cakewatch/internal/mailbox"
	"cakewatch/internal/model"
	"cakewatch/internal/normalize"
	"cakewatch/internal/notify"
	"cakewatch/pkg/metrics"
)

// Source yields unread transaction mail. Fetching marks messages seen on
// the server side.
type Source interface {
	FetchUnseen(ctx context.Context, from, subject string) ([]mailbox.Message, error)
}

type Config struct {
	Sender   string
	Subject  string
	Interval time.Duration
}

const DefaultInterval = 15 * time.Second

// Watcher owns the ingestion loop and the run status it reports.
type Watcher struct {
	source   Source
	ledger   *ledger.Ledger
	rules    *extract.RuleSet
	channels []notify.Channel
	cfg      Config
	logger   *zap.Logger

	runMu sync.Mutex // held for the duration of one check; overlapping runs are skipped

	mu     sync.Mutex
	status model.RunStatus
}

func New(source Source, ld *ledger.Ledger, rules *extract.RuleSet, channels []notify.Channel, cfg Config, logger *zap.Logger) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Watcher{
		source:   source,
		ledger:   ld,
		rules:    rules,
		channels: channels,
		cfg:      cfg,
		logger:   logger,
	}
}

// Status returns a snapshot for the status endpoint.
func (w *Watcher) Status() model.RunStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Run checks once immediately and then on every interval tick until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.CheckOnce(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.CheckOnce(ctx)
		}
	}
}

// CheckOnce runs a single ingestion cycle. If a previous cycle is still in
// flight the call is skipped: two concurrent runs would race on the
// server-side seen flags.
func (w *Watcher) CheckOnce(ctx context.Context) {
	if !w.runMu.TryLock() {
		w.logger.Warn("Previous mail check still running, skipping this interval")
		return
	}
	defer w.runMu.Unlock()

	start := time.Now()
	w.mu.Lock()
	w.status.LastCheck = start
	w.mu.Unlock()

	w.logger.Info("Checking for new emails")

	msgs, err := w.source.FetchUnseen(ctx, w.cfg.Sender, w.cfg.Subject)
	if err != nil {
		w.fail("email check failed", err)
		metrics.ObserveMailCheck(time.Since(start))
		return
	}
	w.logger.Info("Fetched new emails", zap.Int("count", len(msgs)))

	for _, m := range msgs {
		if err := w.process(ctx, m); err != nil {
			w.fail("data extraction failed", err)
			metrics.RecordEmailProcessed("failed")
			continue
		}
		metrics.RecordEmailProcessed("success")
	}
	metrics.ObserveMailCheck(time.Since(start))
}

func (w *Watcher) process(ctx context.Context, m mailbox.Message) error {
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("message %d has no parseable body", m.UID)
	}

	tx, err := w.rules.Extract(normalize.Normalize(m.Body))
	if err != nil {
		return fmt.Errorf("message %d: %w", m.UID, err)
	}

	w.ledger.Append(tx)
	metrics.SetLedgerSize(w.ledger.Len())
	w.logger.Info("Stored transaction",
		zap.Uint32("uid", m.UID),
		zap.String("code", tx.TransactionCode),
		zap.String("amount", tx.Amount),
	)

	w.dispatch(ctx, tx)

	w.mu.Lock()
	w.status.ProcessedCount++
	w.mu.Unlock()
	return nil
}

// dispatch fans the alert out to every channel. Send failures are absorbed:
// the record is already in the ledger and the batch keeps going.
func (w *Watcher) dispatch(ctx context.Context, tx model.Transaction) {
	if len(w.channels) == 0 {
		return
	}
	text := notify.FormatAlert(tx)
	for _, ch := range w.channels {
		if err := ch.Send(ctx, text); err != nil {
			w.fail(fmt.Sprintf("%s notification failed", ch.Name()), err)
			metrics.RecordNotification(ch.Name(), "failed")
			continue
		}
		w.logger.Info("Notification sent",
			zap.String("channel", ch.Name()),
			zap.String("code", tx.TransactionCode),
		)
		metrics.RecordNotification(ch.Name(), "success")
	}
}

func (w *Watcher) fail(msg string, err error) {
	w.logger.Error(msg, zap.Error(err))
	w.mu.Lock()
	w.status.LastError = fmt.Sprintf("%s: %v", msg, err)
	w.mu.Unlock()
}
