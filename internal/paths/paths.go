// Package paths locates the directories denorm keeps on disk: the config
// directory holding config.yaml and the data directory holding the database.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// On-disk names.
const (
	ConfigDirName = ".denorm"
	DataDirName   = ".denorm-db"
	ConfigFile    = "config.yaml"
)

// Env holds the directory overrides read from the environment.
type Env struct {
	ConfigDir string `env:"DENORM_CONFIG_DIR"`
	DataDir   string `env:"DENORM_DATA_DIR"`
}

// Resolver resolves both directories for one invocation. Command-line flags
// win over config.yaml, config.yaml over the environment, and the
// environment over the working-directory defaults.
type Resolver struct {
	configFlag string
	dataFlag   string
	env        Env
}

// NewResolver reads DENORM_CONFIG_DIR and DENORM_DATA_DIR and returns a
// Resolver over the given flag values. Empty flags are unset.
func NewResolver(configFlag, dataFlag string) (*Resolver, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse directory environment: %w", err)
	}
	return &Resolver{configFlag: configFlag, dataFlag: dataFlag, env: e}, nil
}

// ConfigDir returns --config-dir, else DENORM_CONFIG_DIR, else $(CWD)/.denorm.
func (r *Resolver) ConfigDir() (string, error) {
	for _, dir := range []string{r.configFlag, r.env.ConfigDir} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	return inWorkingDir(ConfigDirName)
}

// DataDir returns --data-dir, else the data_dir configured in config.yaml,
// else DENORM_DATA_DIR, else $(CWD)/.denorm-db. A relative data_dir is
// relative to configDir so the two directories move together.
func (r *Resolver) DataDir(configDir, configured string) (string, error) {
	if r.dataFlag != "" {
		return filepath.Abs(r.dataFlag)
	}
	if configured != "" {
		if filepath.IsAbs(configured) {
			return filepath.Clean(configured), nil
		}
		return filepath.Join(configDir, configured), nil
	}
	if r.env.DataDir != "" {
		return filepath.Abs(r.env.DataDir)
	}
	return inWorkingDir(DataDirName)
}

// DataFlag returns --data-dir made absolute, or "" when it is unset. init
// records it in a new config.yaml.
func (r *Resolver) DataFlag() (string, error) {
	if r.dataFlag == "" {
		return "", nil
	}
	return filepath.Abs(r.dataFlag)
}

// ConfigPath returns the config.yaml path inside configDir.
func ConfigPath(configDir string) string {
	return filepath.Join(configDir, ConfigFile)
}

func inWorkingDir(name string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
