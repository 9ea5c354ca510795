package mailbox

import (
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// parseMessage walks the MIME structure and returns the subject plus the
// first text/html part, falling back to the first text/plain part.
func parseMessage(r io.Reader) (subject, body string, err error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", "", err
	}
	subject, _ = mr.Header.Subject()

	var html, plain string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return subject, "", err
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch {
		case strings.HasPrefix(ct, "text/html") && html == "":
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return subject, "", err
			}
			html = string(b)
		case strings.HasPrefix(ct, "text/plain") && plain == "":
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return subject, "", err
			}
			plain = string(b)
		}
	}

	if html != "" {
		return subject, html, nil
	}
	return subject, plain, nil
}
