// Package main is the entry point for the smtpwire command line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shineum/smtpwire/internal/config"
	"github.com/shineum/smtpwire/internal/transcript"
	"github.com/shineum/smtpwire/internal/wire"
)

const usageText = `usage: smtpwire [-config file] <subcommand> [flags]

subcommands:
  command [-from addr] [-to addr]... KEYWORD   encode a client command
  reply [-text msg] [-more] CODE               encode a server reply
  decode [-side client|server]                 print a transcript of stdin
`

var errUsage = errors.New("missing or invalid arguments")

func main() {
	configPath := flag.String("config", "", "path to YAML or TOML configuration file (optional)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, flag.Args(), os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		slog.Error("smtpwire failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from the specified path (file + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger on stderr. Stdout is
// reserved for wire bytes and transcripts.
func setupLogger(level, format string) {
	slog.SetDefault(newLogger(os.Stderr, level, format))
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// run dispatches a subcommand.
func run(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "command":
		return runCommand(cfg, args[1:], stdout)
	case "reply":
		return runReply(cfg, args[1:], stdout)
	case "decode":
		return runDecode(cfg, args[1:], stdin, stdout)
	default:
		return fmt.Errorf("%w: unknown subcommand %q", errUsage, args[0])
	}
}

// addrList collects a repeatable -to flag.
type addrList []string

func (a *addrList) String() string { return strings.Join(*a, ",") }

func (a *addrList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func runCommand(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("command", flag.ContinueOnError)
	from := fs.String("from", "", "reverse-path for MAIL (empty sends the null path)")
	var to addrList
	fs.Var(&to, "to", "forward-path for RCPT (repeatable)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: command takes exactly one KEYWORD", errUsage)
	}

	kind, ok := wire.ParseCommandKind(fs.Arg(0))
	if !ok {
		return fmt.Errorf("%w: %q", wire.ErrUnknownCommand, fs.Arg(0))
	}

	var tx *wire.MailTransaction
	switch kind {
	case wire.MAIL:
		tx = &wire.MailTransaction{From: *from}
	case wire.RCPT:
		if len(to) == 0 {
			return fmt.Errorf("%w: RCPT needs at least one -to", errUsage)
		}
		tx = &wire.MailTransaction{From: *from, To: to}
	}

	enc := &wire.CommandEncoder{
		Limits:   cfg.Limits(),
		Hostname: cfg.HostnameFunc(),
		Logger:   slog.Default(),
	}
	if err := enc.Encode(stdout, kind, tx); err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	slog.Debug("encoded command", "kind", kind.String(), "recipients", len(to))
	return nil
}

func runReply(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("reply", flag.ContinueOnError)
	text := fs.String("text", "", "reply text (default is the code's standard text)")
	more := fs.Bool("more", false, "send as a continuation line (250 only)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: reply takes exactly one CODE", errUsage)
	}

	number, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("%w: %q", wire.ErrUnknownCode, fs.Arg(0))
	}
	code, ok := wire.LookupReplyCode(number, *more)
	if !ok {
		return fmt.Errorf("%w: %d", wire.ErrUnknownCode, number)
	}

	enc := &wire.ReplyEncoder{
		Limits:   cfg.Limits(),
		Hostname: cfg.HostnameFunc(),
		Logger:   slog.Default(),
	}
	if *text != "" {
		err = enc.EncodeText(stdout, code, *text)
	} else {
		err = enc.Encode(stdout, code)
	}
	if err != nil {
		return fmt.Errorf("failed to encode reply %s: %w", code, err)
	}

	slog.Debug("encoded reply", "code", code.String())
	return nil
}

func runDecode(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	side := fs.String("side", "server", "which peer produced the input: client or server")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	lr := wire.NewLineReader(stdin, cfg.Limits())
	p := transcript.NewWithWriter(stdout)

	var err error
	switch *side {
	case "client":
		err = decodeCommands(lr, p)
	case "server":
		err = decodeReplies(lr, p)
	default:
		return fmt.Errorf("%w: unknown side %q", errUsage, *side)
	}
	if err != nil {
		return err
	}
	return p.Summary()
}

func decodeCommands(lr *wire.LineReader, p *transcript.Printer) error {
	for {
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		truncated := lr.Truncated()
		if err := p.Line(transcript.Client, line, truncated); err != nil {
			return err
		}
		if truncated {
			slog.Warn("line exceeds maximum length", "bytes", len(line))
			continue
		}

		cmd, err := wire.ParseCommand(line)
		if err != nil {
			slog.Warn("unrecognized command", "line", line, "error", err)
			continue
		}
		slog.Debug("decoded command", "kind", cmd.Kind.String(), "address", cmd.Address)
	}
}

func decodeReplies(lr *wire.LineReader, p *transcript.Printer) error {
	for {
		reply, err := wire.ReadReply(lr)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to decode reply: %w", err)
		}

		if err := p.Reply(reply); err != nil {
			return err
		}
		slog.Debug("decoded reply", "code", reply.Code, "lines", len(reply.Lines))
	}
}
