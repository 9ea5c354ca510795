// Package mailbox is the mail-source boundary: it dials the IMAP server,
// searches for unread transaction mail and hands back raw bodies. A fresh
// connection is opened per check and closed afterwards; seen-state lives on
// the server, and fetching a body (non-peek) marks the message seen as a
// side effect.
package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"
)

// Message is one fetched mail, reduced to what the pipeline needs.
type Message struct {
	UID     uint32
	Subject string
	Body    string // text/html part when present, text/plain otherwise
}

type Config struct {
	Host               string
	Port               int
	Username           string
	Password           string
	TLS                bool
	InsecureSkipVerify bool
	Timeout            time.Duration
	Mailbox            string
}

// Client talks to one IMAP account.
type Client struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, logger: logger}
}

func (c *Client) dial() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	var (
		cl  *client.Client
		err error
	)
	if c.cfg.TLS {
		cl, err = client.DialTLS(addr, &tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify})
	} else {
		cl, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial imap %s: %w", addr, err)
	}
	// a hung server must not stall the ingestion timers
	cl.Timeout = c.cfg.Timeout

	if err := cl.Login(c.cfg.Username, c.cfg.Password); err != nil {
		_ = cl.Logout()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return cl, nil
}

// FetchUnseen returns the unread messages from the given sender whose
// subject contains the given filter, with full bodies. Fetched messages are
// marked seen on the server; if processing fails afterwards they will not be
// redelivered.
func (c *Client) FetchUnseen(ctx context.Context, from, subject string) ([]Message, error) {
	cl, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer cl.Logout()

	if _, err := cl.Select(c.cfg.Mailbox, false); err != nil {
		return nil, fmt.Errorf("select %s: %w", c.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	criteria.Header.Add("From", from)
	criteria.Header.Add("Subject", subject)

	uids, err := cl.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	// non-peek body section: fetching it sets \Seen
	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	ch := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- cl.UidFetch(seqset, items, ch)
	}()

	var out []Message
	for msg := range ch {
		body := msg.GetBody(section)
		if body == nil {
			c.logger.Warn("Message fetched without body section", zap.Uint32("uid", msg.Uid))
			continue
		}
		subj, text, err := parseMessage(body)
		if err != nil {
			c.logger.Error("Failed to parse message",
				zap.Uint32("uid", msg.Uid),
				zap.Error(err),
			)
			// deliver the message anyway; the pipeline decides what an
			// empty body means
			out = append(out, Message{UID: msg.Uid})
			continue
		}
		out = append(out, Message{UID: msg.Uid, Subject: subj, Body: text})
	}

	if err := <-done; err != nil {
		return out, fmt.Errorf("imap fetch: %w", err)
	}
	return out, nil
}
