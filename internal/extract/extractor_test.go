package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakewatch/internal/model"
)

const sampleBody = "Giao dịch thành công " +
	"Tài khoản nhận 0399123456 " +
	"Tài khoản chuyển 19036817012345 " +
	"Tên người chuyển NGUYEN VAN QUAN " +
	"Ngân hàng chuyển Techcombank " +
	"Loại giao dịch Chuyển tiền nhanh Napas 247 " +
	"Mã giao dịch FT23245123456789 " +
	"Ngày giờ giao dịch 02/09/2023 14:31:22 " +
	"Số tiền +150.000đ " +
	"Phí giao dịch Miễn phí " +
	"Nội dung giao dịch QUAN thanh toan don hang"

func TestExtractSampleBody(t *testing.T) {
	tx, err := Default().Extract(sampleBody)
	require.NoError(t, err)

	assert.Equal(t, "0399123456", tx.ReceivingAccount)
	assert.Equal(t, "19036817012345", tx.SendingAccount)
	assert.Equal(t, "NGUYEN VAN QUAN", tx.SenderName)
	assert.Equal(t, "Techcombank", tx.SendingBank)
	assert.Equal(t, "Chuyển tiền nhanh Napas 247", tx.TransactionType)
	assert.Equal(t, "FT23245123456789", tx.TransactionCode)
	assert.Equal(t, "02/09/2023 14:31:22", tx.DateTime)
	assert.Equal(t, "+150.000đ", tx.Amount)
	assert.Equal(t, "Miễn phí", tx.Fee)
	assert.Equal(t, "QUAN thanh toan don hang", tx.Content)
}

func TestExtractHTMLRemnants(t *testing.T) {
	body := `<tr><td>Tài khoản nhận</td><td>0399123456</td></tr> ` +
		`<tr><td>Số tiền</td><td>+2.000.000đ</td></tr> ` +
		`<tr><td>Nội dung giao dịch</td><td>tra tien com</td></tr>`

	tx, err := Default().Extract(body)
	require.NoError(t, err)

	assert.Equal(t, "0399123456", tx.ReceivingAccount)
	assert.Equal(t, "+2.000.000đ", tx.Amount)
	assert.Equal(t, "tra tien com", tx.Content)
	assert.Equal(t, model.NotAvailable, tx.SendingBank)
}

func TestExtractNeverFailsOnArbitraryInput(t *testing.T) {
	inputs := []string{
		"",
		"completely unrelated text",
		"Số tiền",
		"=C3=A0 leftover escapes =ZZ",
		"<html><body></body></html>",
	}

	for _, in := range inputs {
		tx, err := Default().Extract(in)
		require.NoError(t, err, "input %q", in)

		for _, v := range []string{
			tx.ReceivingAccount, tx.SendingAccount, tx.SenderName,
			tx.SendingBank, tx.TransactionType, tx.TransactionCode,
			tx.DateTime, tx.Amount, tx.Fee, tx.Content,
		} {
			assert.NotEmpty(t, v)
			assert.Equal(t, strings.TrimSpace(v), v)
		}
	}
}

func TestExtractDefaultsToSentinel(t *testing.T) {
	tx, err := Default().Extract("nothing useful here")
	require.NoError(t, err)
	assert.Equal(t, model.NotAvailable, tx.Amount)
	assert.Equal(t, model.NotAvailable, tx.Content)
	assert.False(t, tx.IsCredit())
}

func TestCompileRejectsUnknownField(t *testing.T) {
	_, err := Compile([]Rule{{Field: "balance", Patterns: []string{`\d+`}}})
	assert.Error(t, err)
}

func TestCompileRejectsBadPattern(t *testing.T) {
	_, err := Compile([]Rule{{Field: FieldAmount, Patterns: []string{`([`}}})
	assert.Error(t, err)
}

func TestLoadRuleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
- field: amount
  patterns:
    - 'AMT (\S+)'
- field: content
  patterns:
    - 'MEMO (.+)$'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rs, err := Load(path)
	require.NoError(t, err)

	tx, err := rs.Extract("AMT +99.000đ MEMO chuyen khoan")
	require.NoError(t, err)
	assert.Equal(t, "+99.000đ", tx.Amount)
	assert.Equal(t, "chuyen khoan", tx.Content)
	assert.Equal(t, model.NotAvailable, tx.SenderName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	rs, err := Compile([]Rule{{Field: FieldAmount, Patterns: []string{
		`first:(\S+)`,
		`second:(\S+)`,
	}}})
	require.NoError(t, err)

	tx, err := rs.Extract("second:b first:a")
	require.NoError(t, err)
	assert.Equal(t, "a", tx.Amount)
}
