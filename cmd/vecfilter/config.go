package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config is the resolved CLI configuration. Values come from flags, then
// VECFILTER_* environment variables, then the config file, then defaults.
type config struct {
	Backend  string    `mapstructure:"backend"`
	Format   string    `mapstructure:"format"`
	Input    string    `mapstructure:"input"`
	LogLevel string    `mapstructure:"log_level"`
	SQL      sqlConfig `mapstructure:"sql"`
	DSL      dslConfig `mapstructure:"dsl"`
}

type sqlConfig struct {
	// Keys are lower-cased by the config loader.
	ColumnMapping     map[string]string `mapstructure:"column_mapping"`
	ColumnExpressions map[string]string `mapstructure:"column_expressions"`
}

type dslConfig struct {
	Prefix        string `mapstructure:"prefix"`
	NoPrefix      bool   `mapstructure:"no_prefix"`
	KeywordSuffix string `mapstructure:"keyword_suffix"`
	NoKeyword     bool   `mapstructure:"no_keyword"`
	Body          bool   `mapstructure:"body"`
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("vecfilter", pflag.ContinueOnError)
	fs.StringP("backend", "b", "sql", "translation backend: sql or dsl")
	fs.StringP("format", "f", "json", "input format: json, bson or msgpack")
	fs.StringP("input", "i", "-", "input file, - for stdin")
	fs.StringP("config", "c", "", "config file (yaml, json or toml)")
	fs.String("prefix", "", "dsl: field prefix (default \"metadata\")")
	fs.Bool("no-prefix", false, "dsl: emit field names without a prefix")
	fs.Bool("no-keyword", false, "dsl: never append the keyword suffix")
	fs.Bool("body", false, "dsl: wrap the query in a search request body")
	fs.String("log-level", "warn", "log level: debug, info, warn or error")
	return fs
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"backend":    "backend",
	"format":     "format",
	"input":      "input",
	"log-level":  "log_level",
	"prefix":     "dsl.prefix",
	"no-prefix":  "dsl.no_prefix",
	"no-keyword": "dsl.no_keyword",
	"body":       "dsl.body",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "sql")
	v.SetDefault("format", "json")
	v.SetDefault("input", "-")
	v.SetDefault("log_level", "warn")

	v.SetDefault("sql.column_mapping", map[string]string{})
	v.SetDefault("sql.column_expressions", map[string]string{})

	v.SetDefault("dsl.prefix", "")
	v.SetDefault("dsl.no_prefix", false)
	v.SetDefault("dsl.keyword_suffix", "")
	v.SetDefault("dsl.no_keyword", false)
	v.SetDefault("dsl.body", false)
}

// loadConfig resolves the configuration for parsed flags.
func loadConfig(fs *pflag.FlagSet) (*config, error) {
	v := viper.New()
	setDefaults(v)

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("VECFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfg := new(config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
