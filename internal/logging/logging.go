// Package logging builds the logrus logger shared by the CLI and the engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config selects the level and format of the logger. Both can be set from
// the environment.
type Config struct {
	Level  string `env:"DENORM_LOG_LEVEL" envDefault:"warn"`
	Format string `env:"DENORM_LOG_FORMAT" envDefault:"text"`
}

// FromEnv loads Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// New returns a logger writing to stderr.
func New(cfg Config) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput returns a logger writing to w.
func NewWithOutput(cfg Config, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return log, nil
}

// LogError logs err with the operation and entity it concerns.
func LogError(log logrus.FieldLogger, op string, data any, err error) {
	entry := log.WithField("op", op)
	if data != nil {
		entry = entry.WithField("data", data)
	}
	entry.Error(err.Error())
}
