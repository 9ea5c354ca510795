// Package extract turns a normalized email body into a transaction record.
// The bank's HTML layout drifts too much for structural parsing, so every
// field is searched for directly with an ordered pattern list. A field that
// matches nothing gets the sentinel value; the record itself is never
// rejected for missing fields.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"cakewatch/internal/model"
)

var fieldSetters = map[string]func(*model.Transaction, string){
	FieldReceivingAccount: func(t *model.Transaction, v string) { t.ReceivingAccount = v },
	FieldSendingAccount:   func(t *model.Transaction, v string) { t.SendingAccount = v },
	FieldSenderName:       func(t *model.Transaction, v string) { t.SenderName = v },
	FieldSendingBank:      func(t *model.Transaction, v string) { t.SendingBank = v },
	FieldTransactionType:  func(t *model.Transaction, v string) { t.TransactionType = v },
	FieldTransactionCode:  func(t *model.Transaction, v string) { t.TransactionCode = v },
	FieldDateTime:         func(t *model.Transaction, v string) { t.DateTime = v },
	FieldAmount:           func(t *model.Transaction, v string) { t.Amount = v },
	FieldFee:              func(t *model.Transaction, v string) { t.Fee = v },
	FieldContent:          func(t *model.Transaction, v string) { t.Content = v },
}

// Extract applies the rule table to normalized text and returns a fully
// populated record. Unmatched fields carry model.NotAvailable. The only
// error case is an unexpected panic inside the engine, which aborts the
// whole record rather than returning a partial one.
func (rs *RuleSet) Extract(text string) (tx model.Transaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			tx = model.Transaction{}
			err = fmt.Errorf("extraction panicked: %v", r)
		}
	}()

	tx = model.Transaction{
		ReceivingAccount: model.NotAvailable,
		SendingAccount:   model.NotAvailable,
		SenderName:       model.NotAvailable,
		SendingBank:      model.NotAvailable,
		TransactionType:  model.NotAvailable,
		TransactionCode:  model.NotAvailable,
		DateTime:         model.NotAvailable,
		Amount:           model.NotAvailable,
		Fee:              model.NotAvailable,
		Content:          model.NotAvailable,
	}

	for _, rule := range rs.rules {
		if v, ok := firstMatch(rule.patterns, text); ok {
			fieldSetters[rule.field](&tx, v)
		}
	}
	return tx, nil
}

func firstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		v = strings.TrimSpace(v)
		if v != "" {
			return v, true
		}
	}
	return "", false
}
