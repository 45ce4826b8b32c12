// Package config loads the CLI configuration.
//
// Values are layered, lowest precedence first: built-in defaults, an optional
// YAML file, an optional dotenv file, environment variables prefixed with
// CORPUSREDUCE_, then explicit overrides (CLI flags).
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"corpusreduce/internal/classify"
	"corpusreduce/internal/reduce"
)

// EnvPrefix is stripped from environment variable names before mapping them
// onto configuration keys.
const EnvPrefix = "CORPUSREDUCE_"

const (
	OrderDiscovery = "discovery"
	OrderID        = "id"
)

// MaxWorkers bounds the workers setting.
const MaxWorkers = 4096

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Workers     int    `koanf:"workers" validate:"min=1,max=4096"`
	BatchSize   int    `koanf:"batch_size" validate:"min=1"`
	MaxLine     int    `koanf:"max_line" validate:"min=1"`
	Whitespace  string `koanf:"whitespace" validate:"oneof=unicode ascii"`
	Cardinality bool   `koanf:"cardinality"`
	Order       string `koanf:"order" validate:"oneof=discovery id"`
	Log         Log    `koanf:"log"`
}

type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:     defaultWorkers(runtime.GOMAXPROCS(0)),
		BatchSize:   reduce.DefaultBatchSize,
		MaxLine:     16 << 20,
		Whitespace:  string(classify.WhitespaceUnicode),
		Cardinality: false,
		Order:       OrderDiscovery,
		Log: Log{
			Level: "info",
			JSON:  false,
		},
	}
}

// defaultWorkers clamps the processor count into the accepted workers range.
func defaultWorkers(procs int) int {
	return max(1, min(procs, MaxWorkers))
}

// WhitespaceMode returns the configured whitespace predicate.
func (c *Config) WhitespaceMode() classify.WhitespaceMode {
	return classify.WhitespaceMode(c.Whitespace)
}

// Sources names the optional inputs of LoadSources.
type Sources struct {
	// File is a YAML document using the koanf keys, e.g. "batch_size: 64".
	File string
	// EnvFile is a dotenv file; only CORPUSREDUCE_ entries are read.
	EnvFile string
	// Overrides are koanf keys (for example "log.level" or "batch_size") that
	// take precedence over every other source.
	Overrides map[string]any
}

// Load builds the configuration from defaults, the environment and overrides.
func Load(overrides map[string]any) (*Config, error) {
	return LoadSources(Sources{Overrides: overrides})
}

// LoadSources builds the configuration from every source in src.
func LoadSources(src Sources) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if src.File != "" {
		if err := loadYAML(k, src.File); err != nil {
			return nil, err
		}
	}
	if src.EnvFile != "" {
		if err := loadDotenv(k, src.EnvFile); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range src.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set override %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(k *koanf.Koanf, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config file: %v", ErrInvalidConfig, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parse config file %s: %v", ErrInvalidConfig, path, err)
	}
	for key, value := range flattenMap("", doc) {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from %s: %w", key, path, err)
		}
	}
	return nil
}

func loadDotenv(k *koanf.Koanf, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("%w: read env file: %v", ErrInvalidConfig, err)
	}
	for name, value := range vars {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := transformEnvKey(strings.TrimPrefix(name, EnvPrefix))
		if key == "" {
			continue
		}
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from %s: %w", key, path, err)
		}
	}
	return nil
}

// flattenMap flattens nested maps into dot-separated keys. Nil values are
// dropped so they cannot clear a lower layer.
func flattenMap(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flattenMap(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}

func validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// transformEnvKey maps LOG_LEVEL to log.level and BATCH_SIZE to batch_size.
// Only the log section is nested.
func transformEnvKey(s string) string {
	s = strings.ToLower(s)
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' })
	if len(parts) == 0 {
		return ""
	}
	if parts[0] == "log" && len(parts) > 1 {
		return "log." + strings.Join(parts[1:], "_")
	}
	return strings.Join(parts, "_")
}
