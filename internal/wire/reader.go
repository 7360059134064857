package wire

import (
	"errors"
	"fmt"
	"io"
	"syscall"
)

// maxEmptyReads bounds how many (0, nil) reads are tolerated in a row.
const maxEmptyReads = 100

// minLineLen leaves room for one byte of text and the CRLF.
const minLineLen = 3

// LineReader splits a byte stream into CRLF-terminated lines. Lines may
// arrive in any fragmentation: one Read may carry several lines, part of a
// line, or half of the terminator.
//
// A LineReader belongs to one connection and must not be used from more
// than one goroutine.
type LineReader struct {
	src    io.Reader
	maxLen int

	buf   []byte
	pos   int   // next unconsumed byte in buf
	n     int   // valid bytes in buf
	err   error // read error deferred until buffered bytes are consumed
	sawCR bool

	truncated bool
}

// NewLineReader returns a LineReader over src. Lines are bounded by
// limits.LineLen, raised to at least 3 so every call consumes input; the
// internal buffer holds that many bytes.
func NewLineReader(src io.Reader, limits Limits) *LineReader {
	maxLen := max(limits.orDefault().LineLen, minLineLen)
	return &LineReader{
		src:    src,
		maxLen: maxLen,
		buf:    make([]byte, maxLen),
	}
}

// ReadLine returns the next line without its CRLF.
//
// A line is complete when its CRLF fits within LineLen bytes. Without a
// terminator the line is cut at LineLen-1 bytes; the rest is returned by
// later calls and Truncated reports true. A CR not followed by LF is
// ordinary data.
//
// At end of stream ReadLine returns io.EOF if nothing was pending. If the
// stream ended mid-line the partial line is returned with a nil error and
// the following call returns io.EOF; callers that need strict framing
// should treat that partial line as a protocol violation.
//
// A source read returning no bytes and no error is not end of stream; it
// is retried, and after 100 such reads in a row ReadLine fails with
// io.ErrNoProgress.
func (r *LineReader) ReadLine() (string, error) {
	r.sawCR = false
	r.truncated = false

	line := make([]byte, 0, 64)
	for {
		full := len(line) >= r.maxLen-1
		if full && !r.sawCR {
			r.truncated = true
			return string(line), nil
		}

		c, err := r.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(line) == 0 {
					return "", io.EOF
				}
				return string(line), nil
			}
			return "", err
		}

		if r.sawCR && c == '\n' {
			r.sawCR = false
			return string(line[:len(line)-1]), nil
		}
		if full {
			// The trailing CR was data and c does not fit.
			r.pos--
			r.sawCR = false
			r.truncated = true
			return string(line), nil
		}

		line = append(line, c)
		r.sawCR = c == '\r'
	}
}

// Truncated reports whether the last line returned by ReadLine was cut at
// the length limit.
func (r *LineReader) Truncated() bool {
	return r.truncated
}

// Buffered returns the number of bytes read from the source but not yet
// returned in a line.
func (r *LineReader) Buffered() int {
	return r.n - r.pos
}

func (r *LineReader) readByte() (byte, error) {
	if r.pos >= r.n {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	c := r.buf[r.pos]
	r.pos++
	return c, nil
}

// fill replaces the consumed buffer with one read from the source.
func (r *LineReader) fill() error {
	if err := r.err; err != nil {
		r.err = nil
		if !errors.Is(err, syscall.EINTR) {
			return wrapReadErr(err)
		}
	}

	for empty := 0; ; {
		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.pos, r.n = 0, n
			r.err = err
			return nil
		}
		switch {
		case err == nil:
			empty++
			if empty >= maxEmptyReads {
				return io.ErrNoProgress
			}
		case errors.Is(err, syscall.EINTR):
			// retry
		default:
			return wrapReadErr(err)
		}
	}
}

func wrapReadErr(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	return fmt.Errorf("failed to read line: %w", err)
}
