// Package logbuf keeps a bounded ring of recent log lines so the status
// endpoint can show what the service has been doing without any external
// log store. The ring is diagnostic only.
package logbuf

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// DefaultCapacity is the number of lines retained.
const DefaultCapacity = 100

// Buffer is a fixed-capacity, newest-first line buffer. Appending beyond
// capacity drops the oldest line.
type Buffer struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func New(max int) *Buffer {
	if max <= 0 {
		max = DefaultCapacity
	}
	return &Buffer{max: max}
}

func (b *Buffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append([]string{line}, b.lines...)
	if len(b.lines) > b.max {
		b.lines = b.lines[:b.max]
	}
}

// Lines returns a copy of the buffered lines, newest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// core tees zap entries into a Buffer.
type core struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	buf *Buffer
}

// NewCore returns a zapcore.Core that appends every enabled log entry to buf
// as a single formatted line.
func NewCore(buf *Buffer, enab zapcore.LevelEnabler) zapcore.Core {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "ts",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return &core{
		LevelEnabler: enab,
		enc:          zapcore.NewConsoleEncoder(cfg),
		buf:          buf,
	}
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := &core{
		LevelEnabler: c.LevelEnabler,
		enc:          c.enc.Clone(),
		buf:          c.buf,
	}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	line, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer line.Free()

	s := line.String()
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	c.buf.Append(s)
	return nil
}

func (c *core) Sync() error { return nil }
