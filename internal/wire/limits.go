// Package wire implements the SMTP wire format: encoding of client commands
// and server replies into CRLF-terminated lines, and recovery of logical
// lines from a fragmented byte stream.
//
// Every line written or read is bounded by a single maximum length shared by
// the encoders and the reader. Oversized values are truncated, never
// rejected.
package wire

import (
	"fmt"
)

const crlf = "\r\n"

// Default bounds follow RFC 5321 section 4.5.3.1.
const (
	DefaultLineLen   = 512
	DefaultDomainLen = 255
	DefaultAddrLen   = 256
)

// Limits holds the size bounds shared by encoders and the line reader.
type Limits struct {
	// LineLen is the maximum length of a line, CRLF included.
	LineLen int
	// DomainLen is the width reserved for the host name in HELO/EHLO and 220.
	DomainLen int
	// AddrLen is the width reserved for a MAIL/RCPT address.
	AddrLen int
}

// DefaultLimits returns the RFC 5321 bounds.
func DefaultLimits() Limits {
	return Limits{
		LineLen:   DefaultLineLen,
		DomainLen: DefaultDomainLen,
		AddrLen:   DefaultAddrLen,
	}
}

// Validate checks that the longest HELO/EHLO and MAIL/RCPT lines still fit
// in LineLen.
func (l Limits) Validate() error {
	if l.LineLen < 8 {
		return fmt.Errorf("line length %d is too small", l.LineLen)
	}
	if l.DomainLen <= 0 {
		return fmt.Errorf("domain length must be positive, got %d", l.DomainLen)
	}
	if l.AddrLen <= 0 {
		return fmt.Errorf("address length must be positive, got %d", l.AddrLen)
	}
	// "EHLO " + domain + CRLF
	if n := len("EHLO ") + l.DomainLen + len(crlf); n > l.LineLen {
		return fmt.Errorf("domain length %d does not fit in a %d byte line", l.DomainLen, l.LineLen)
	}
	// "MAIL FROM:<" + address + ">" + CRLF
	if n := len("MAIL FROM:<>") + l.AddrLen + len(crlf); n > l.LineLen {
		return fmt.Errorf("address length %d does not fit in a %d byte line", l.AddrLen, l.LineLen)
	}
	return nil
}

// orDefault fills unset fields with the defaults.
func (l Limits) orDefault() Limits {
	d := DefaultLimits()
	if l.LineLen <= 0 {
		l.LineLen = d.LineLen
	}
	if l.DomainLen <= 0 {
		l.DomainLen = d.DomainLen
	}
	if l.AddrLen <= 0 {
		l.AddrLen = d.AddrLen
	}
	return l
}

// width returns the room left for a field of at most field bytes on a line
// that already carries overhead bytes, CRLF included.
func (l Limits) width(field, overhead int) int {
	return min(field, l.LineLen-overhead)
}
