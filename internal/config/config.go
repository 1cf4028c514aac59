// Package config loads the optional wsh YAML configuration file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfigData []byte

// FileName is the configuration file looked up in the home directory.
const FileName = ".wsh.yaml"

type Config struct {
	HistorySize int    `yaml:"history_size" validate:"gte=1"`
	DefaultPath string `yaml:"default_path" validate:"required"`
	Prompt      string `yaml:"prompt"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile     string `yaml:"log_file"`
	AuditDB     string `yaml:"audit_db"`
	Color       string `yaml:"color" validate:"oneof=auto always never"`
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	return validate.Struct(c)
}

// Default returns the built-in configuration.
func Default() *Config {
	var out Config
	if err := decode(bytes.NewReader(defaultConfigData), &out); err != nil {
		panic(err)
	}
	return &out
}

// Load reads the file at path on top of the defaults. A missing file is not an
// error unless required is set, in which case the caller asked for that file
// by name.
func Load(path string, required bool) (*Config, error) {
	out := Default()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return out, nil
		}
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := decode(f, out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func decode(r io.Reader, out *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	return dec.Decode(out)
}
