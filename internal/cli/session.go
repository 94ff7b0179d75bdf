package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/denormalize/internal/logging"
	"github.com/mesh-intelligence/denormalize/internal/sqlite"
	"github.com/mesh-intelligence/denormalize/pkg/denorm"
	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// session is an attached backend with the engine registered on it.
type session struct {
	backend *sqlite.Backend
	engine  *denorm.Engine
	log     *logrus.Logger
}

// openSession loads config.yaml, attaches the SQLite backend and registers
// every declared relation. The caller must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}
	rc, err := resolveConfig(resolver)
	if err != nil {
		return nil, err
	}

	cfg := rc.backendConfig()
	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	engine := denorm.New(backend, backend, backend, denorm.WithLogger(log))
	for _, rel := range cfg.Relations {
		if err := engine.Register(backend, rel); err != nil {
			backend.Detach()
			return nil, err
		}
	}
	log.WithFields(logrus.Fields{
		"config_dir": rc.configDir,
		"data_dir":   rc.dataDir,
		"tables":     len(cfg.Tables),
		"relations":  len(cfg.Relations),
	}).Debug("session opened")

	return &session{backend: backend, engine: engine, log: log}, nil
}

func (s *session) Close() error {
	return s.backend.Detach()
}

func (s *session) table(name string) (types.Table, error) {
	t, err := s.backend.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	return t, nil
}

// withSession runs fn inside an open session.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(cmd.Context(), s); err != nil {
		logging.LogError(s.log, cmd.Name(), nil, err)
		return err
	}
	return nil
}

// newLogger builds the logger from DENORM_LOG_* and the --log-level flag.
func newLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	cfg, err := logging.FromEnv()
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Level = flags.logLevel
	}
	return logging.NewWithOutput(cfg, cmd.ErrOrStderr())
}
