package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when raw text cannot be decoded into a
	// job configuration.
	ErrInvalidConfig = errors.New("invalid job configuration")

	// ErrUnsupportedConfig is returned when a configuration sets fields the
	// structured form cannot represent.
	ErrUnsupportedConfig = errors.New("configuration uses fields the form does not support")

	// ErrUnknownJobType is returned when a draft names a job type that has
	// no analysis object.
	ErrUnknownJobType = errors.New("unknown job type")
)

// EncodeConfig renders cfg as indented JSON. The output is deterministic:
// struct fields keep declaration order and map keys are sorted.
func EncodeConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return string(data), nil
}

// EncodeDraft renders the configuration described by d.
func EncodeDraft(d JobDraft) (string, error) {
	if d.JobType != JobTypeNone && !d.JobType.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownJobType, d.JobType)
	}
	return EncodeConfig(DraftToConfig(d))
}

// DecodeConfig parses raw JSON into a Config. Unknown fields and trailing
// data are rejected.
func DecodeConfig(raw string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(raw) == "" {
		return cfg, fmt.Errorf("%w: empty input", ErrInvalidConfig)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Config{}, fmt.Errorf("%w: unexpected data after the configuration object", ErrInvalidConfig)
	}
	return normalizeConfig(cfg), nil
}

// DecodeFormConfig parses raw JSON and additionally rejects configurations
// the structured form cannot represent.
func DecodeFormConfig(raw string) (Config, error) {
	cfg, err := DecodeConfig(raw)
	if err != nil {
		return Config{}, err
	}
	if fields := AdvancedFields(cfg); len(fields) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedConfig, strings.Join(fields, ", "))
	}
	return cfg, nil
}

// DecodeFile reads a job configuration from a JSON or YAML file. The format
// is chosen by extension; anything other than .yaml/.yml is read as JSON.
func DecodeFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read job file: %w", err)
	}
	raw, err := ToJSON(filepath.Ext(path), data)
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(raw)
}

// ToJSON converts a YAML document to JSON text; other input is returned as is.
func ToJSON(ext string, data []byte) (string, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return string(out), nil
	default:
		return string(data), nil
	}
}

// normalizeConfig applies the same collection normalization as JobDraft.Clone
// so decoded configs compare equal to the drafts they were encoded from.
func normalizeConfig(cfg Config) Config {
	cfg.Source.Index = cloneStrings(cfg.Source.Index)
	cfg.Source.Query = normalizeObject(cfg.Source.Query)
	cfg.Source.RuntimeMappings = normalizeObject(cfg.Source.RuntimeMappings)
	cfg.Meta = normalizeObject(cfg.Meta)
	cfg.Authorization = normalizeObject(cfg.Authorization)
	if af := cfg.AnalyzedFields; af != nil {
		cfg.AnalyzedFields = &AnalyzedFields{
			Includes: cloneStrings(af.Includes),
			Excludes: cloneStrings(af.Excludes),
		}
	}
	return cfg
}

// Clone returns a deep copy of cfg, normalized the same way as decoded
// configs.
func (cfg Config) Clone() Config {
	data, err := json.Marshal(cfg)
	if err != nil {
		return normalizeConfig(cfg)
	}
	var out Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return normalizeConfig(cfg)
	}
	return normalizeConfig(out)
}
