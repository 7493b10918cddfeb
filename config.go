package vecfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hugr-lab/vecfilter/dslfilter"
	"github.com/hugr-lab/vecfilter/sqlfilter"
)

// Backend names a translation target.
type Backend string

const (
	// BackendSQL renders SQL WHERE fragments.
	BackendSQL Backend = "sql"
	// BackendDSL renders search query DSL trees.
	BackendDSL Backend = "dsl"
)

// Format names a serialized filter encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatBSON    Format = "bson"
	FormatMsgpack Format = "msgpack"
)

// Config contains configuration for a Translator.
type Config struct {
	// Backend selects the output language.
	// REQUIRED: one of BackendSQL, BackendDSL.
	Backend Backend

	// SQL configures the SQL backend.
	// OPTIONAL: defaults are used if nil.
	SQL *sqlfilter.Options

	// DSL configures the DSL backend.
	// OPTIONAL: defaults are used if nil.
	DSL *dslfilter.Options

	// Logger for internal logging.
	// OPTIONAL: If nil, a text logger on stderr is created at LogLevel.
	// Backend options without their own logger inherit this one.
	Logger *slog.Logger

	// LogLevel sets the logging level of the default logger.
	// OPTIONAL: If nil, uses Info level. Ignored when Logger is set.
	LogLevel *slog.Level

	// MaxPayloadSize bounds the decompressed size of zstd payloads in bytes.
	// OPTIONAL: If 0, the decoder default applies.
	MaxPayloadSize uint64
}

// Standard errors returned by the vecfilter package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownFormat indicates an unsupported payload format.
	ErrUnknownFormat = errors.New("unknown format")
)

// ParseBackend converts a backend name, ignoring case.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendSQL, BackendDSL:
		return b, nil
	}
	return "", fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, s)
}

// ParseFormat converts a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatBSON, FormatMsgpack:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ParseLevel converts a log level name such as "debug" or "warn".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

// validateConfig checks that required Config fields are valid.
func validateConfig(cfg Config) error {
	switch cfg.Backend {
	case BackendSQL, BackendDSL:
		return nil
	case "":
		return fmt.Errorf("backend is required")
	}
	return fmt.Errorf("unknown backend %q", cfg.Backend)
}

func newLogger(cfg Config) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	level := slog.LevelInfo
	if cfg.LogLevel != nil {
		level = *cfg.LogLevel
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
