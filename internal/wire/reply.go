package wire

import (
	"io"
	"log/slog"
	"os"
	"strconv"
)

// ReplyCode identifies a server reply. Each value maps to a three-digit
// number; ReplyOKMore is the 250 segment of a multi-line reply that is
// followed by more lines. The zero value is not a reply code.
type ReplyCode int

const (
	ReplyClosing ReplyCode = iota + 1 // 211
	ReplyServiceReady                 // 220
	ReplyOK                           // 250
	ReplyOKMore                       // 250-
	ReplyUserNotLocal                 // 251
	ReplyStartMailInput               // 354
	ReplyMailboxBusy                  // 450
	ReplyLocalError                   // 451
	ReplyInsufficientStorage          // 452
	ReplyParamsNotAccommodated        // 455
	ReplyCommandNotImpl               // 502
	ReplyBadSequence                  // 503
	ReplyParamNotImpl                 // 504
	ReplyMailboxUnavailable           // 550
	ReplyUserNotLocalTry              // 551
	ReplyExceededStorage              // 552
	ReplyMailboxNameNotAllowed        // 553
	ReplyTransactionFailed            // 554
	ReplyMailRcptParamError           // 555
)

var replyTable = map[ReplyCode]struct {
	number    int
	text      string
	continued bool
}{
	ReplyClosing:               {211, "closing connection, bye", false},
	ReplyServiceReady:          {220, "Service ready", false},
	ReplyOK:                    {250, "OK", false},
	ReplyOKMore:                {250, "", true},
	ReplyUserNotLocal:          {251, "User not local; will forward to <forward-path>", false},
	ReplyStartMailInput:        {354, "Start mail input; end with <CRLF>.<CRLF>", false},
	ReplyMailboxBusy:           {450, "Requested mail action not taken: mailbox unavailable", false},
	ReplyLocalError:            {451, "Requested action aborted: local error in processing", false},
	ReplyInsufficientStorage:   {452, "Requested action not taken: insufficient system storage", false},
	ReplyParamsNotAccommodated: {455, "Server unable to accommodate parameters", false},
	ReplyCommandNotImpl:        {502, "Command not implemented", false},
	ReplyBadSequence:           {503, "Bad sequence of commands", false},
	ReplyParamNotImpl:          {504, "Command parameter not implemented", false},
	ReplyMailboxUnavailable:    {550, "Requested action not taken: mailbox unavailable", false},
	ReplyUserNotLocalTry:       {551, "User not local; please try <forward-path>", false},
	ReplyExceededStorage:       {552, "Requested mail action aborted: exceeded storage allocation", false},
	ReplyMailboxNameNotAllowed: {553, "Requested action not taken: mailbox name not allowed", false},
	ReplyTransactionFailed:     {554, "Transaction failed", false},
	ReplyMailRcptParamError:    {555, "MAIL FROM/RCPT TO parameters not recognized or not implemented", false},
}

// Number returns the three-digit reply number, or 0 for an unknown code.
func (c ReplyCode) Number() int {
	return replyTable[c].number
}

// Continued reports whether c marks a non-final line of a multi-line reply.
func (c ReplyCode) Continued() bool {
	return replyTable[c].continued
}

// String returns the wire prefix of c, such as "250" or "250-".
func (c ReplyCode) String() string {
	r, ok := replyTable[c]
	if !ok {
		return "ReplyCode(" + strconv.Itoa(int(c)) + ")"
	}
	if r.continued {
		return strconv.Itoa(r.number) + "-"
	}
	return strconv.Itoa(r.number)
}

// LookupReplyCode returns the ReplyCode for a reply number and separator.
// Only 250 has a continued form.
func LookupReplyCode(number int, continued bool) (ReplyCode, bool) {
	for c, r := range replyTable {
		if r.number == number && r.continued == continued {
			return c, true
		}
	}
	return 0, false
}

// ReplyEncoder writes server replies. Like CommandEncoder it keeps no
// per-connection state.
type ReplyEncoder struct {
	Limits   Limits
	Hostname HostnameFunc
	Logger   *slog.Logger
}

// NewReplyEncoder returns an encoder with the given limits that looks up
// the host name for the 220 greeting with os.Hostname.
func NewReplyEncoder(limits Limits) *ReplyEncoder {
	return &ReplyEncoder{Limits: limits, Hostname: os.Hostname}
}

var defaultReplyEncoder = NewReplyEncoder(DefaultLimits())

// EncodeReply writes code with its default text using the default limits.
func EncodeReply(w io.Writer, code ReplyCode) error {
	return defaultReplyEncoder.Encode(w, code)
}

// EncodeReplyText writes code with text using the default limits.
func EncodeReplyText(w io.Writer, code ReplyCode, text string) error {
	return defaultReplyEncoder.EncodeText(w, code, text)
}

// Encode writes code followed by its default text, truncated like
// EncodeText when the line length is short. ReplyOKMore has no default and
// fails with ErrMessageRequired.
func (e *ReplyEncoder) Encode(w io.Writer, code ReplyCode) error {
	r, ok := replyTable[code]
	if !ok {
		return ErrUnknownCode
	}
	if r.continued {
		return ErrMessageRequired
	}

	lim := e.Limits.orDefault()
	text := r.text
	if code == ReplyServiceReady {
		// The greeting names the local host: "220 <host> Service ready".
		name := localName(e.Hostname, e.logger())
		if hasLineBreak(name) {
			return ErrLineBreak
		}
		room := lim.width(lim.DomainLen, 4+1+len(text)+len(crlf))
		if name = fit(e.logger(), name, room, "hostname"); name != "" {
			text = name + " " + text
		}
	}
	text = fit(e.logger(), text, lim.width(lim.LineLen, 4+len(crlf)), "message")
	return writeAll(w, e.line(r.number, ' ', text))
}

// EncodeText writes code followed by text, truncated so that the whole line
// fits the line length. ReplyOKMore uses a hyphen separator and needs a
// non-empty text.
func (e *ReplyEncoder) EncodeText(w io.Writer, code ReplyCode, text string) error {
	r, ok := replyTable[code]
	if !ok {
		return ErrUnknownCode
	}
	if r.continued && text == "" {
		return ErrMessageRequired
	}
	if hasLineBreak(text) {
		return ErrLineBreak
	}

	sep := byte(' ')
	if r.continued {
		sep = '-'
	}
	lim := e.Limits.orDefault()
	text = fit(e.logger(), text, lim.width(lim.LineLen, 4+len(crlf)), "message")
	return writeAll(w, e.line(r.number, sep, text))
}

func (e *ReplyEncoder) line(number int, sep byte, text string) []byte {
	b := make([]byte, 0, 4+len(text)+len(crlf))
	b = strconv.AppendInt(b, int64(number), 10)
	b = append(b, sep)
	b = append(b, text...)
	b = append(b, crlf...)
	return b
}

func (e *ReplyEncoder) logger() *slog.Logger {
	return loggerOrDefault(e.Logger)
}
