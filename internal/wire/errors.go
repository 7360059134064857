package wire

import "errors"

// Errors returned by the encoders and parsers. Callers match them with
// errors.Is; I/O failures are returned wrapped and keep their cause.
var (
	// ErrUnknownCommand is returned for a CommandKind outside the known set,
	// or a received verb that names no known command.
	ErrUnknownCommand = errors.New("wire: unknown command")

	// ErrUnknownCode is returned for a ReplyCode outside the known set.
	ErrUnknownCode = errors.New("wire: unknown reply code")

	// ErrUnsupported is returned for VRFY, which is recognised but never sent.
	ErrUnsupported = errors.New("wire: command not supported")

	// ErrMissingTransaction is returned when MAIL or RCPT is encoded
	// without a transaction.
	ErrMissingTransaction = errors.New("wire: command requires a mail transaction")

	// ErrMessageRequired is returned when a continuation reply has no text.
	ErrMessageRequired = errors.New("wire: continuation reply requires a message")

	// ErrLineBreak is returned when an argument or reply text contains CR or LF.
	ErrLineBreak = errors.New("wire: value contains a line break")

	// ErrSyntax is returned when a received command line is malformed.
	ErrSyntax = errors.New("wire: command syntax error")

	// ErrMalformedReply is returned when a received reply line is malformed.
	ErrMalformedReply = errors.New("wire: malformed reply")
)
