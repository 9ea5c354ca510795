package extract

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Field keys a rule may target. They match the JSON names of the
// transaction model.
const (
	FieldReceivingAccount = "receivingAccount"
	FieldSendingAccount   = "sendingAccount"
	FieldSenderName       = "senderName"
	FieldSendingBank      = "sendingBank"
	FieldTransactionType  = "transactionType"
	FieldTransactionCode  = "transactionCode"
	FieldDateTime         = "dateTime"
	FieldAmount           = "amount"
	FieldFee              = "fee"
	FieldContent          = "content"
)

// Rule is one field's ordered pattern list. Patterns are tried first to
// last; the first one that matches wins. A pattern with a capture group
// yields the group, otherwise the whole match. The table is plain data so
// a new mail layout only needs a new table, not new code.
type Rule struct {
	Field    string   `yaml:"field"`
	Patterns []string `yaml:"patterns"`
}

type compiledRule struct {
	field    string
	patterns []*regexp.Regexp
}

// RuleSet is a compiled, ordered rule table.
type RuleSet struct {
	rules []compiledRule
}

// Compile validates and compiles a rule table.
func Compile(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, r := range rules {
		if _, ok := fieldSetters[r.Field]; !ok {
			return nil, fmt.Errorf("unknown field %q in rule table", r.Field)
		}
		cr := compiledRule{field: r.Field}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("bad pattern for field %q: %w", r.Field, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		rs.rules = append(rs.rules, cr)
	}
	return rs, nil
}

// Load reads a rule table from a yaml file and compiles it.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	return Compile(rules)
}

// labels of the CAKE transaction table, used to bound generic captures.
const labelBoundary = `(?:\s*<|\s+Tài khoản nhận|\s+Tài khoản chuyển|\s+Tên người chuyển|\s+Ngân hàng chuyển|\s+Loại giao dịch|\s+Mã giao dịch|\s+Ngày giờ giao dịch|\s+Số tiền|\s+Phí giao dịch|\s+Nội dung giao dịch|$)`

// after builds the generic fallback: whatever text follows the label, up to
// the next label, tag or end of input. Tags sitting between the label and
// its value (table cells) are skipped.
func after(label string) string {
	return label + `[:\s]*(?:</?[a-zA-Z][^>]*>\s*)*([^<]{1,120}?)` + labelBoundary
}

// Default returns the built-in rule table for CAKE transaction mail.
// Specific patterns fitted to observed samples come first, generic
// label-based fallbacks last.
func Default() *RuleSet {
	rs, err := Compile([]Rule{
		{Field: FieldReceivingAccount, Patterns: []string{
			`Tài khoản nhận\D{0,40}?(\d{4,19})`,
			after(`Tài khoản nhận`),
		}},
		{Field: FieldSendingAccount, Patterns: []string{
			`Tài khoản chuyển\D{0,40}?(\d{4,19})`,
			after(`Tài khoản chuyển`),
		}},
		{Field: FieldSenderName, Patterns: []string{
			`Tên người chuyển[:\s]*([A-ZĂÂĐÊÔƠƯ][A-ZĂÂĐÊÔƠƯ ]{1,58}[A-ZĂÂĐÊÔƠƯ])\b`,
			after(`Tên người chuyển`),
		}},
		{Field: FieldSendingBank, Patterns: []string{
			`Ngân hàng chuyển[:\s]*([^<]{1,60}? Bank)`,
			after(`Ngân hàng chuyển`),
		}},
		{Field: FieldTransactionType, Patterns: []string{
			`(Chuyển tiền nhanh Napas 247)`,
			after(`Loại giao dịch`),
		}},
		{Field: FieldTransactionCode, Patterns: []string{
			`Mã giao dịch[:\s]*([A-Z0-9]{8,32})`,
			after(`Mã giao dịch`),
		}},
		{Field: FieldDateTime, Patterns: []string{
			`(\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2})`,
			`(\d{2}/\d{2}/\d{4} \d{2}:\d{2})`,
			after(`Ngày giờ giao dịch`),
		}},
		{Field: FieldAmount, Patterns: []string{
			`([+-]\s?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d+)?\s?đ)`,
			after(`Số tiền`),
		}},
		{Field: FieldFee, Patterns: []string{
			`Phí giao dịch[:\s]*(Miễn phí)`,
			`Phí giao dịch[:\s]*([+-]?\s?\d[\d.,]*\s?đ)`,
			after(`Phí giao dịch`),
		}},
		{Field: FieldContent, Patterns: []string{
			after(`Nội dung giao dịch`),
		}},
	})
	if err != nil {
		// the built-in table is constant; a compile failure is a programming error
		panic(err)
	}
	return rs
}
