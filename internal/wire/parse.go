package wire

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Command is a parsed client command line.
type Command struct {
	Kind CommandKind
	// Arg is everything after the verb and its separating space.
	Arg string
	// Address is the path of MAIL FROM or RCPT TO with angle brackets removed.
	Address string
}

// ParseCommand parses a command line as returned by ReadLine.
func ParseCommand(line string) (Command, error) {
	verb, arg, _ := strings.Cut(line, " ")
	kind, ok := ParseCommandKind(verb)
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
	}

	cmd := Command{Kind: kind, Arg: arg}
	switch kind {
	case MAIL:
		addr, err := parsePath(arg, "FROM:")
		if err != nil {
			return Command{}, err
		}
		cmd.Address = addr
	case RCPT:
		addr, err := parsePath(arg, "TO:")
		if err != nil {
			return Command{}, err
		}
		if addr == "" {
			return Command{}, fmt.Errorf("%w: empty recipient", ErrSyntax)
		}
		cmd.Address = addr
	}
	return cmd, nil
}

// parsePath extracts the address following prefix, handling both the
// angle-bracket and the bare form. MAIL FROM:<> yields an empty address.
func parsePath(arg, prefix string) (string, error) {
	if len(arg) < len(prefix) || !strings.EqualFold(arg[:len(prefix)], prefix) {
		return "", fmt.Errorf("%w: expected %s", ErrSyntax, prefix)
	}
	s := strings.TrimSpace(arg[len(prefix):])

	if strings.HasPrefix(s, "<") {
		end := strings.Index(s, ">")
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated path", ErrSyntax)
		}
		return s[1:end], nil
	}

	// Bare address, parameters after the first space are ignored.
	addr, _, _ := strings.Cut(s, " ")
	if addr == "" {
		return "", fmt.Errorf("%w: missing address", ErrSyntax)
	}
	return addr, nil
}

// ReplyLine is one parsed reply line.
type ReplyLine struct {
	Code      int
	Continued bool
	Text      string
}

// Kind maps the line to a known ReplyCode.
func (l ReplyLine) Kind() (ReplyCode, bool) {
	return LookupReplyCode(l.Code, l.Continued)
}

// ParseReply parses "DDD", "DDD text" or "DDD-text".
func ParseReply(line string) (ReplyLine, error) {
	if len(line) < 3 {
		return ReplyLine{}, fmt.Errorf("%w: line too short", ErrMalformedReply)
	}

	code := 0
	for i := 0; i < 3; i++ {
		c := line[i]
		if c < '0' || c > '9' {
			return ReplyLine{}, fmt.Errorf("%w: invalid code %q", ErrMalformedReply, line[:3])
		}
		code = code*10 + int(c-'0')
	}
	if code < 200 || code > 599 {
		return ReplyLine{}, fmt.Errorf("%w: code %d out of range", ErrMalformedReply, code)
	}

	if len(line) == 3 {
		return ReplyLine{Code: code}, nil
	}

	switch line[3] {
	case ' ':
		return ReplyLine{Code: code, Text: line[4:]}, nil
	case '-':
		return ReplyLine{Code: code, Continued: true, Text: line[4:]}, nil
	default:
		return ReplyLine{}, fmt.Errorf("%w: invalid separator %q", ErrMalformedReply, line[3])
	}
}

// Reply is a complete, possibly multi-line, server reply.
type Reply struct {
	Code  int
	Lines []string
}

// ReadReply reads lines from r until the final line of a reply. Every line
// of a multi-line reply must carry the same code.
func ReadReply(r *LineReader) (Reply, error) {
	var reply Reply
	for {
		line, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && len(reply.Lines) > 0 {
				return Reply{}, io.ErrUnexpectedEOF
			}
			return Reply{}, err
		}

		rl, err := ParseReply(line)
		if err != nil {
			return Reply{}, err
		}
		if len(reply.Lines) > 0 && rl.Code != reply.Code {
			return Reply{}, fmt.Errorf("%w: code changed from %d to %d", ErrMalformedReply, reply.Code, rl.Code)
		}

		reply.Code = rl.Code
		reply.Lines = append(reply.Lines, rl.Text)
		if !rl.Continued {
			return reply, nil
		}
	}
}
