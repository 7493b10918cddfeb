// Command vecfilter translates a metadata filter into a SQL WHERE fragment or
// a search query DSL tree.
//
// Usage:
//
//	vecfilter [flags] [filter]
//
// The filter is read from the positional argument, or from --input when none
// is given. ZStandard-compressed input is decompressed automatically.
//
//	echo '{"price": {"$lt": 10}}' | vecfilter
//	vecfilter --backend dsl --prefix meta '{"tags": ["a", "b"]}'
//	vecfilter --format bson --input filter.bson.zst
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/hugr-lab/vecfilter"
	"github.com/hugr-lab/vecfilter/dslfilter"
	"github.com/hugr-lab/vecfilter/sqlfilter"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet()
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "vecfilter: %v\n", err)
		return 2
	}

	if err := translate(cfg, fs.Args(), stdin, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "vecfilter: %v\n", err)
		return 1
	}
	return 0
}

func translate(cfg *config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	level, err := vecfilter.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	backend, err := vecfilter.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}
	format, err := vecfilter.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	t, err := vecfilter.New(vecfilter.Config{
		Backend: backend,
		SQL: &sqlfilter.Options{
			ColumnMapping:     cfg.SQL.ColumnMapping,
			ColumnExpressions: cfg.SQL.ColumnExpressions,
		},
		DSL: &dslfilter.Options{
			FieldPrefix:    cfg.DSL.Prefix,
			DisablePrefix:  cfg.DSL.NoPrefix,
			KeywordSuffix:  cfg.DSL.KeywordSuffix,
			DisableKeyword: cfg.DSL.NoKeyword,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer t.Close()

	data, err := readInput(cfg.Input, args, stdin)
	if err != nil {
		return err
	}
	logger.Debug("translating filter", "backend", backend, "format", format, "bytes", len(data))

	out, err := t.TranslateBytes(data, format)
	if err != nil {
		return err
	}

	switch out := out.(type) {
	case string:
		_, err = fmt.Fprintln(stdout, out)
		return err
	case nil:
		return writeQuery(stdout, nil, cfg.DSL.Body)
	case dslfilter.Query:
		return writeQuery(stdout, out, cfg.DSL.Body)
	}
	return fmt.Errorf("unexpected result %T", out)
}

// writeQuery prints q as indented JSON, optionally wrapped in a search body.
// An empty filter prints null, or a match_all body.
func writeQuery(w io.Writer, q dslfilter.Query, body bool) error {
	var v any = q
	if body {
		v = dslfilter.SearchBody(q)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput returns the positional filter if present, otherwise the content
// of path, where "-" or "" is stdin.
func readInput(path string, args []string, stdin io.Reader) ([]byte, error) {
	switch {
	case len(args) > 1:
		return nil, fmt.Errorf("expected at most one filter argument, got %d", len(args))
	case len(args) == 1:
		return []byte(args[0]), nil
	case path == "" || path == "-":
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
