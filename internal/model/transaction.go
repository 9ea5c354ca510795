package model

import (
	"strings"
	"time"
)

// NotAvailable is the placeholder stored for every field whose value could
// not be recovered from the email body.
const NotAvailable = "N/A"

// CreditSign prefixes the amount of incoming transfers.
const CreditSign = "+"

// Transaction holds the fields extracted from one CAKE transaction email.
// All values are kept as the provider formatted them; the bank is not
// consistent enough to commit to parsed numbers or calendar values.
type Transaction struct {
	ReceivingAccount string `json:"receivingAccount"`
	SendingAccount   string `json:"sendingAccount"`
	SenderName       string `json:"senderName"`
	SendingBank      string `json:"sendingBank"`
	TransactionType  string `json:"transactionType"`
	TransactionCode  string `json:"transactionCode"`
	DateTime         string `json:"dateTime"`
	Amount           string `json:"amount"`
	Fee              string `json:"fee"`
	Content          string `json:"content"`
}

// IsCredit reports whether the transaction is incoming money.
func (t Transaction) IsCredit() bool {
	return strings.HasPrefix(t.Amount, CreditSign)
}

// RunStatus is a snapshot of the ingestion loop state for the status endpoint.
type RunStatus struct {
	LastCheck      time.Time
	ProcessedCount int
	LastError      string
}
