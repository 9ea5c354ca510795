// Package notify dispatches transaction alerts. Channels are fire and
// forget from the pipeline's point of view: a failed send is logged and
// counted, never fatal to the ingestion run.
package notify

import (
	"context"
	"fmt"
	"strings"

	"cakewatch/internal/model"
)

// Channel delivers one formatted alert to its configured destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// FormatAlert renders the Markdown alert for one transaction.
func FormatAlert(tx model.Transaction) string {
	var b strings.Builder
	b.WriteString("*Giao dịch mới từ CAKE*\n")
	b.WriteString("-----------------------------------\n")
	fmt.Fprintf(&b, "*Tài khoản nhận:* %s\n", tx.ReceivingAccount)
	fmt.Fprintf(&b, "*Tài khoản chuyển:* %s\n", tx.SendingAccount)
	fmt.Fprintf(&b, "*Người chuyển:* %s\n", tx.SenderName)
	fmt.Fprintf(&b, "*Ngân hàng chuyển:* %s\n", tx.SendingBank)
	b.WriteString("-----------------------------------\n")
	fmt.Fprintf(&b, "*Loại giao dịch:* %s\n", tx.TransactionType)
	fmt.Fprintf(&b, "*Mã giao dịch:* %s\n", tx.TransactionCode)
	fmt.Fprintf(&b, "*Thời gian:* %s\n", tx.DateTime)
	fmt.Fprintf(&b, "*Số tiền:* %s\n", tx.Amount)
	fmt.Fprintf(&b, "*Phí:* %s\n", tx.Fee)
	fmt.Fprintf(&b, "*Nội dung:* `%s`\n", tx.Content)
	return b.String()
}
