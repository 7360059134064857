package wire

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// CommandKind identifies a client command. The zero value is not a command.
type CommandKind int

const (
	EHLO CommandKind = iota + 1
	HELO
	MAIL
	RCPT
	DATA
	RSET
	VRFY
	NOOP
	QUIT
)

// argRule says what follows the keyword on the wire.
type argRule int

const (
	argNone argRule = iota
	argHostname
	argSender
	argRecipients
	argUnsupported
)

var commandTable = map[CommandKind]struct {
	keyword string
	args    argRule
}{
	EHLO: {"EHLO", argHostname},
	HELO: {"HELO", argHostname},
	MAIL: {"MAIL", argSender},
	RCPT: {"RCPT", argRecipients},
	DATA: {"DATA", argNone},
	RSET: {"RSET", argNone},
	VRFY: {"VRFY", argUnsupported},
	NOOP: {"NOOP", argNone},
	QUIT: {"QUIT", argNone},
}

// String returns the command keyword.
func (k CommandKind) String() string {
	if c, ok := commandTable[k]; ok {
		return c.keyword
	}
	return "UNKNOWN"
}

// ParseCommandKind maps a keyword, in any case, to its CommandKind.
func ParseCommandKind(keyword string) (CommandKind, bool) {
	keyword = strings.ToUpper(keyword)
	for k, c := range commandTable {
		if c.keyword == keyword {
			return k, true
		}
	}
	return 0, false
}

// MailTransaction is the envelope of one mail submission.
type MailTransaction struct {
	From string
	To   []string
}

// HostnameFunc returns the local host name announced in HELO/EHLO.
type HostnameFunc func() (string, error)

// StaticHostname returns a HostnameFunc that always reports name.
func StaticHostname(name string) HostnameFunc {
	return func() (string, error) { return name, nil }
}

// CommandEncoder writes client commands. It holds no per-connection state
// and may be shared between goroutines writing to different connections.
type CommandEncoder struct {
	Limits   Limits
	Hostname HostnameFunc
	Logger   *slog.Logger
}

// NewCommandEncoder returns an encoder with the given limits that looks up
// the host name with os.Hostname.
func NewCommandEncoder(limits Limits) *CommandEncoder {
	return &CommandEncoder{Limits: limits, Hostname: os.Hostname}
}

var defaultCommandEncoder = NewCommandEncoder(DefaultLimits())

// EncodeCommand encodes kind with the default limits. See CommandEncoder.Encode.
func EncodeCommand(w io.Writer, kind CommandKind, tx *MailTransaction) error {
	return defaultCommandEncoder.Encode(w, kind, tx)
}

// Encode writes the line or lines for kind to w.
//
// MAIL and RCPT need tx; RCPT writes one line per recipient, so an empty
// recipient list writes nothing. Over-long host names and addresses are
// truncated to the configured widths.
func (e *CommandEncoder) Encode(w io.Writer, kind CommandKind, tx *MailTransaction) error {
	c, ok := commandTable[kind]
	if !ok {
		return ErrUnknownCommand
	}

	switch c.args {
	case argNone:
		return writeAll(w, []byte(c.keyword+crlf))

	case argHostname:
		name := localName(e.Hostname, e.logger())
		if hasLineBreak(name) {
			return ErrLineBreak
		}
		lim := e.Limits.orDefault()
		name = fit(e.logger(), name, lim.width(lim.DomainLen, len(c.keyword)+1+len(crlf)), "hostname")
		return writeAll(w, []byte(c.keyword+" "+name+crlf))

	case argSender:
		if tx == nil {
			return ErrMissingTransaction
		}
		line, err := e.pathLine("MAIL FROM:<", tx.From)
		if err != nil {
			return err
		}
		return writeAll(w, line)

	case argRecipients:
		if tx == nil {
			return ErrMissingTransaction
		}
		for _, rcpt := range tx.To {
			if hasLineBreak(rcpt) {
				return ErrLineBreak
			}
		}
		for _, rcpt := range tx.To {
			line, err := e.pathLine("RCPT TO:<", rcpt)
			if err != nil {
				return err
			}
			if err := writeAll(w, line); err != nil {
				return err
			}
		}
		return nil

	case argUnsupported:
		return ErrUnsupported
	}

	return ErrUnknownCommand
}

func (e *CommandEncoder) pathLine(prefix, addr string) ([]byte, error) {
	if hasLineBreak(addr) {
		return nil, ErrLineBreak
	}
	lim := e.Limits.orDefault()
	addr = fit(e.logger(), addr, lim.width(lim.AddrLen, len(prefix)+1+len(crlf)), "address")

	line := make([]byte, 0, len(prefix)+len(addr)+3)
	line = append(line, prefix...)
	line = append(line, addr...)
	line = append(line, '>')
	line = append(line, crlf...)
	return line, nil
}

func (e *CommandEncoder) logger() *slog.Logger {
	return loggerOrDefault(e.Logger)
}
