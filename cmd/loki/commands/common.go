package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/loki/internal/config"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "LOKI_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger  *slog.Logger
	Context context.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: loki.yaml when present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build a site from a source directory into a destination directory"`
	Check CheckCmd `cmd:"" help:"Load and register every document without writing output"`

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer // log output
	stdOut io.Writer // command output
}

// AfterApply runs after flag parsing; loads the configuration and sets up logging once.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.cfg = cfg

	out := c.out
	if out == nil {
		out = os.Stderr
	}
	c.logger = NewLogger(out, cfg.Logging, c.Verbose)
	slog.SetDefault(c.logger)
	return nil
}

// Logger returns the configured logger, or the default before AfterApply ran.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Loaded returns the configuration loaded by AfterApply.
func (c *CLI) Loaded() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// NewLogger builds the CLI logger. Precedence: -v > LOKI_LOG_LEVEL > logging.level.
func NewLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if env := os.Getenv(LogLevelEnv); env != "" {
		level = config.NormalizeLogLevel(env).SlogLevel()
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *CLI) stdout() io.Writer {
	if c.stdOut == nil {
		return os.Stdout
	}
	return c.stdOut
}
