package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakewatch/internal/model"
)

func credit(code, amount, content string) model.Transaction {
	return model.Transaction{
		TransactionCode: code,
		Amount:          amount,
		Content:         content,
		DateTime:        "02/09/2023 14:31:22",
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	l := New()
	for i := 1; i <= Retention+1; i++ {
		l.Append(credit(fmt.Sprintf("TX%03d", i), "+1.000đ", "x"))
	}

	assert.Equal(t, Retention, l.Len())

	// newest first, and the very first record has been evicted
	tx, ok := l.Find(Query{Amount: "+1.000đ", Content: "x"})
	require.True(t, ok)
	assert.Equal(t, "TX051", tx.TransactionCode)

	for _, got := range l.Credits(nil) {
		assert.NotEqual(t, "TX001", got.TransactionCode)
	}
}

func TestAppendAcceptsDuplicates(t *testing.T) {
	l := New()
	l.Append(credit("SAME", "+1.000đ", "x"))
	l.Append(credit("SAME", "+1.000đ", "x"))
	assert.Equal(t, 2, l.Len())
}

func TestCreditsFiltersSign(t *testing.T) {
	l := New()
	l.Append(credit("IN", "+150.000đ", "tien ve"))
	l.Append(model.Transaction{TransactionCode: "OUT", Amount: "-50.000đ"})
	l.Append(model.Transaction{TransactionCode: "NA", Amount: model.NotAvailable})

	got := l.Credits(nil)
	require.Len(t, got, 1)
	assert.Equal(t, "IN", got[0].TransactionCode)
}

func TestCreditsSinceFilter(t *testing.T) {
	l := New()

	old := credit("OLD", "+1.000đ", "a")
	old.DateTime = "01/09/2023 08:00:00"
	l.Append(old)

	recent := credit("NEW", "+2.000đ", "b")
	recent.DateTime = "02/09/2023 14:31:22"
	l.Append(recent)

	unparseable := credit("BAD", "+3.000đ", "c")
	unparseable.DateTime = model.NotAvailable
	l.Append(unparseable)

	since := time.Date(2023, 9, 1, 12, 0, 0, 0, time.UTC)
	got := l.Credits(&since)
	require.Len(t, got, 1)
	assert.Equal(t, "NEW", got[0].TransactionCode)

	// boundary is strict: a record exactly at since is excluded
	exact := time.Date(2023, 9, 2, 14, 31, 22, 0, time.UTC)
	assert.Empty(t, l.Credits(&exact))

	// no filter keeps the unparseable record
	assert.Len(t, l.Credits(nil), 3)
}

func TestCleanAmount(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"+150.000đ", "150000"},
		{"150,000", "150000"},
		{"+ 2.000.000 đ", "2000000"},
		{"150000", "150000"},
		{"-50.000đ", "-50000"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, CleanAmount(tt.in), "input %q", tt.in)
	}
}

func TestFindMatchesNormalizedAmountAndMemo(t *testing.T) {
	l := New()
	l.Append(credit("A", "+150.000đ", "QUAN thanh toan don hang"))

	_, ok := l.Find(Query{Amount: "150000", Content: "quan"})
	assert.True(t, ok)

	_, ok = l.Find(Query{Amount: "+150.000đ", Content: "THANH TOAN"})
	assert.True(t, ok)

	_, ok = l.Find(Query{Amount: "150001", Content: "quan"})
	assert.False(t, ok)

	_, ok = l.Find(Query{Amount: "150000", Content: "khong co"})
	assert.False(t, ok)
}

func TestFindReturnsNewestMatch(t *testing.T) {
	l := New()
	l.Append(credit("FIRST", "+1.000đ", "trung noi dung"))
	l.Append(credit("SECOND", "+1.000đ", "trung noi dung"))

	tx, ok := l.Find(Query{Amount: "1000", Content: "trung"})
	require.True(t, ok)
	assert.Equal(t, "SECOND", tx.TransactionCode)
}

func TestFindEmptyLedger(t *testing.T) {
	_, ok := New().Find(Query{Amount: "1", Content: "x"})
	assert.False(t, ok)
}
