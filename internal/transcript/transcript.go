// Package transcript prints decoded SMTP lines in a human-readable form.
package transcript

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shineum/smtpwire/internal/wire"
)

// Direction tells which peer sent a line.
type Direction int

const (
	Client Direction = iota
	Server
)

// String returns the transcript prefix for d.
func (d Direction) String() string {
	if d == Server {
		return "S"
	}
	return "C"
}

// Printer writes one transcript entry per line and keeps running totals.
type Printer struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer

	lines     int
	bytes     int
	truncated int
}

// New creates a new Printer that writes to os.Stdout.
func New() *Printer {
	return &Printer{writer: os.Stdout}
}

// NewWithWriter creates a new Printer that writes to the given writer.
func NewWithWriter(w io.Writer) *Printer {
	return &Printer{writer: w}
}

// Line prints a single line as "C: ..." or "S: ...". Control bytes are
// escaped so a stray CR or NUL stays visible. Lines cut by the reader are
// marked.
func (p *Printer) Line(dir Direction, line string, truncated bool) error {
	var b strings.Builder
	b.WriteString(dir.String())
	b.WriteString(": ")
	b.WriteString(escape(line))
	if truncated {
		b.WriteString(" [truncated]")
		p.truncated++
	}
	b.WriteByte('\n')

	p.lines++
	p.bytes += len(line)
	if !truncated {
		p.bytes += 2
	}
	return p.write(b.String())
}

// Reply prints every line of a multi-line reply with its code and
// separator restored.
func (p *Printer) Reply(r wire.Reply) error {
	lines := r.Lines
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, text := range lines {
		sep := "-"
		if i == len(lines)-1 {
			sep = " "
		}
		if err := p.Line(Server, fmt.Sprintf("%03d%s%s", r.Code, sep, text), false); err != nil {
			return err
		}
	}
	return nil
}

// Summary prints the line and byte totals seen so far.
func (p *Printer) Summary() error {
	var b strings.Builder
	b.WriteString("========================================\n")
	b.WriteString(fmt.Sprintf("Lines: %d\n", p.lines))
	b.WriteString(fmt.Sprintf("Size: %s\n", formatSize(p.bytes)))
	if p.truncated > 0 {
		b.WriteString(fmt.Sprintf("Truncated: %d\n", p.truncated))
	}
	return p.write(b.String())
}

func (p *Printer) write(s string) error {
	if _, err := io.WriteString(p.writer, s); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// escape replaces control bytes with Go-style escapes.
func escape(s string) string {
	if !strings.ContainsFunc(s, isControl) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
