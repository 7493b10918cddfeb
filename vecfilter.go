package vecfilter

import (
	"fmt"
	"log/slog"

	"github.com/hugr-lab/vecfilter/dslfilter"
	"github.com/hugr-lab/vecfilter/filter"
	"github.com/hugr-lab/vecfilter/internal/compress"
	"github.com/hugr-lab/vecfilter/sqlfilter"
)

// Translator renders filters for the configured backend.
// It is safe for concurrent use.
type Translator struct {
	backend Backend
	sql     *sqlfilter.Translator
	dsl     *dslfilter.Translator
	decoder *compress.Decompressor
	logger  *slog.Logger
}

// New validates cfg and creates a Translator.
//
// Basic example:
//
//	t, err := vecfilter.New(vecfilter.Config{Backend: vecfilter.BackendSQL})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := t.Translate(filter.Object{{Key: "price", Value: 10}})
//
// Caller should call Close when done.
func New(cfg Config) (*Translator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := newLogger(cfg)
	decoder, err := compress.NewDecompressor(cfg.MaxPayloadSize)
	if err != nil {
		return nil, err
	}

	t := &Translator{
		backend: cfg.Backend,
		decoder: decoder,
		logger:  logger,
	}

	switch cfg.Backend {
	case BackendSQL:
		var opts sqlfilter.Options
		if cfg.SQL != nil {
			opts = *cfg.SQL
		}
		if opts.Logger == nil {
			opts.Logger = logger
		}
		t.sql = sqlfilter.New(&opts)
	case BackendDSL:
		var opts dslfilter.Options
		if cfg.DSL != nil {
			opts = *cfg.DSL
		}
		if opts.Logger == nil {
			opts.Logger = logger
		}
		t.dsl = dslfilter.New(&opts)
	}

	logger.Debug("filter translator created", "backend", cfg.Backend)
	return t, nil
}

// Backend returns the configured backend.
func (t *Translator) Backend() Backend { return t.backend }

// Operators returns the operators the backend accepts.
func (t *Translator) Operators() filter.OperatorSet {
	if t.sql != nil {
		return t.sql.Operators()
	}
	return t.dsl.Operators()
}

// Translate renders expr. The result is a string for BackendSQL and a
// dslfilter.Query for BackendDSL. An empty filter returns "" for BackendSQL
// and an untyped nil for BackendDSL.
func (t *Translator) Translate(expr any) (any, error) {
	if t.sql != nil {
		return t.sql.Translate(expr)
	}
	q, err := t.dsl.Translate(expr)
	if err != nil || q == nil {
		return nil, err
	}
	return q, nil
}

// Decode decodes a serialized filter. zstd-compressed payloads are
// decompressed first.
func (t *Translator) Decode(data []byte, format Format) (any, error) {
	data, err := t.decoder.Unwrap(data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return filter.DecodeJSON(data)
	case FormatBSON:
		return filter.DecodeBSON(data)
	case FormatMsgpack:
		return filter.DecodeMsgpack(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// TranslateBytes decodes data and renders the result.
func (t *Translator) TranslateBytes(data []byte, format Format) (any, error) {
	expr, err := t.Decode(data, format)
	if err != nil {
		return nil, err
	}
	return t.Translate(expr)
}

// Close releases decoder resources.
func (t *Translator) Close() {
	t.decoder.Close()
}
