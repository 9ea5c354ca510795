// Package normalize flattens raw email bodies into a single line of text
// the extraction rules can be matched against. Bodies sometimes arrive with
// the quoted-printable transfer encoding still applied (soft line breaks and
// =XX hex escapes), so the known escapes for the Vietnamese characters used
// by CAKE mail are decoded with a fixed table. Anything not in the table is
// left untouched; this is deliberately not a full decoder.
package normalize

import (
	"regexp"
	"strings"
)

// escapes maps quoted-printable sequences to their literal characters.
// Three-byte sequences come first so they are consumed before a two-byte
// entry could split them.
var escapes = []struct{ seq, lit string }{
	{"=E1=BA=A1", "ạ"},
	{"=E1=BA=A3", "ả"},
	{"=E1=BA=A5", "ấ"},
	{"=E1=BA=A7", "ầ"},
	{"=E1=BA=AD", "ậ"},
	{"=E1=BA=AF", "ắ"},
	{"=E1=BA=B1", "ằ"},
	{"=E1=BA=B7", "ặ"},
	{"=E1=BA=BF", "ế"},
	{"=E1=BB=81", "ề"},
	{"=E1=BB=83", "ể"},
	{"=E1=BB=85", "ễ"},
	{"=E1=BB=87", "ệ"},
	{"=E1=BB=89", "ỉ"},
	{"=E1=BB=8B", "ị"},
	{"=E1=BB=8D", "ọ"},
	{"=E1=BB=8F", "ỏ"},
	{"=E1=BB=91", "ố"},
	{"=E1=BB=93", "ồ"},
	{"=E1=BB=95", "ổ"},
	{"=E1=BB=97", "ỗ"},
	{"=E1=BB=99", "ộ"},
	{"=E1=BB=9B", "ớ"},
	{"=E1=BB=9D", "ờ"},
	{"=E1=BB=9F", "ở"},
	{"=E1=BB=A3", "ợ"},
	{"=E1=BB=A5", "ụ"},
	{"=E1=BB=A7", "ủ"},
	{"=E1=BB=A9", "ứ"},
	{"=E1=BB=AB", "ừ"},
	{"=E1=BB=AF", "ữ"},
	{"=E1=BB=B1", "ự"},
	{"=E1=BB=B3", "ỳ"},
	{"=C3=A0", "à"},
	{"=C3=A1", "á"},
	{"=C3=A2", "â"},
	{"=C3=A3", "ã"},
	{"=C3=A8", "è"},
	{"=C3=A9", "é"},
	{"=C3=AA", "ê"},
	{"=C3=AC", "ì"},
	{"=C3=AD", "í"},
	{"=C3=B2", "ò"},
	{"=C3=B3", "ó"},
	{"=C3=B4", "ô"},
	{"=C3=B5", "õ"},
	{"=C3=B9", "ù"},
	{"=C3=BA", "ú"},
	{"=C3=BD", "ý"},
	{"=C4=83", "ă"},
	{"=C4=90", "Đ"},
	{"=C4=91", "đ"},
	{"=C6=A0", "Ơ"},
	{"=C6=A1", "ơ"},
	{"=C6=AF", "Ư"},
	{"=C6=B0", "ư"},
	{"=20", " "},
}

var (
	softBreak  = regexp.MustCompile(`=\r?\n`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize decodes known quoted-printable escapes, drops soft line breaks
// and collapses all whitespace into single spaces. It is a pure function and
// idempotent: running it over already-normalized text returns the same text.
func Normalize(body string) string {
	s := softBreak.ReplaceAllString(body, "")
	for _, e := range escapes {
		s = strings.ReplaceAll(s, e.seq, e.lit)
	}
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
