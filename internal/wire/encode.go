package wire

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s, false
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n], true
}

// hasLineBreak reports whether s would break the one-line framing.
func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// writeAll writes b in full or returns the error that stopped it.
func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to write line: %w", io.ErrShortWrite)
		}
		b = b[n:]
	}
	return nil
}

// localName resolves the host name for HELO/EHLO and the 220 greeting.
func localName(lookup HostnameFunc, logger *slog.Logger) string {
	if lookup == nil {
		lookup = os.Hostname
	}
	name, err := lookup()
	if err != nil {
		logger.Warn("hostname lookup failed, using localhost", "error", err)
		return "localhost"
	}
	return name
}

// fit truncates s to width and notes the truncation at debug level.
func fit(logger *slog.Logger, s string, width int, field string) string {
	out, cut := truncate(s, width)
	if cut {
		logger.Debug("truncated field",
			"field", field,
			"length", len(s),
			"max", width,
		)
	}
	return out
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
