package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cakewatch/internal/extract"
	"cakewatch/internal/ledger"
	"cakewatch/internal/mailbox"
	"cakewatch/internal/notify"
)

const goodBody = "Tài khoản nhận 0399123456 " +
	"Số tiền +150.000đ " +
	"Phí giao dịch Miễn phí " +
	"Nội dung giao dịch QUAN thanh toan"

type fakeSource struct {
	mu      sync.Mutex
	batches [][]mailbox.Message
	err     error
	calls   int
}

func (f *fakeSource) FetchUnseen(ctx context.Context, from, subject string) ([]mailbox.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeChannel) Name() string { return "fake" }

func (f *fakeChannel) Send(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("channel down")
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChannel) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestWatcher(src Source, ch *fakeChannel) (*Watcher, *ledger.Ledger) {
	ld := ledger.New()
	w := New(src, ld, extract.Default(), []notify.Channel{ch},
		Config{Sender: "no-reply@cake.vn", Subject: "giao dịch", Interval: time.Hour},
		zap.NewNop(),
	)
	return w, ld
}

func TestCheckOnceProcessesBatch(t *testing.T) {
	src := &fakeSource{batches: [][]mailbox.Message{{
		{UID: 1, Body: goodBody},
		{UID: 2, Body: "   "}, // unparseable: no body recovered
	}}}
	ch := &fakeChannel{}
	w, ld := newTestWatcher(src, ch)

	w.CheckOnce(context.Background())

	assert.Equal(t, 1, ld.Len(), "only the well-formed message is stored")
	assert.Equal(t, 1, ch.count(), "one notification for the stored record")

	st := w.Status()
	assert.Equal(t, 1, st.ProcessedCount)
	assert.Contains(t, st.LastError, "no parseable body")
	assert.False(t, st.LastCheck.IsZero())
}

func TestCheckOnceTransportErrorAbortsRun(t *testing.T) {
	src := &fakeSource{err: errors.New("dial imap: connection refused")}
	ch := &fakeChannel{}
	w, ld := newTestWatcher(src, ch)

	w.CheckOnce(context.Background())

	assert.Equal(t, 0, ld.Len())
	assert.Equal(t, 0, ch.count())
	assert.Contains(t, w.Status().LastError, "email check failed")
}

func TestCheckOnceNotificationFailureDoesNotBlockLedger(t *testing.T) {
	src := &fakeSource{batches: [][]mailbox.Message{{{UID: 1, Body: goodBody}}}}
	ch := &fakeChannel{fail: true}
	w, ld := newTestWatcher(src, ch)

	w.CheckOnce(context.Background())

	assert.Equal(t, 1, ld.Len(), "record is stored even when the channel is down")
	assert.Equal(t, 1, w.Status().ProcessedCount)
	assert.Contains(t, w.Status().LastError, "notification failed")
}

func TestCheckOnceStoredRecordIsFindable(t *testing.T) {
	src := &fakeSource{batches: [][]mailbox.Message{{{UID: 7, Body: goodBody}}}}
	w, ld := newTestWatcher(src, &fakeChannel{})

	w.CheckOnce(context.Background())

	tx, ok := ld.Find(ledger.Query{Amount: "+150.000đ", Content: "QUAN"})
	require.True(t, ok)
	assert.Equal(t, "+150.000đ", tx.Amount)
	assert.True(t, tx.IsCredit())
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	src := &fakeSource{}
	w, _ := newTestWatcher(src, &fakeChannel{})

	w.runMu.Lock() // simulate a run still in flight
	w.CheckOnce(context.Background())
	w.runMu.Unlock()

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, 0, src.calls, "overlapping check must not touch the mail source")
}

func TestRunImmediateFirstCheck(t *testing.T) {
	src := &fakeSource{}
	w, _ := newTestWatcher(src, &fakeChannel{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.calls == 1
	}, time.Second, 5*time.Millisecond, "first check fires without waiting for a tick")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
