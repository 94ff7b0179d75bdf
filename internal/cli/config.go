package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/denormalize/internal/paths"
	"github.com/mesh-intelligence/denormalize/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend = "backend"
	cfgKeyDataDir = "data_dir"
)

// configFile is the structure of config.yaml.
type configFile struct {
	Backend   string              `yaml:"backend" mapstructure:"backend"`
	DataDir   string              `yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	Tables    []types.TableSchema `yaml:"tables" mapstructure:"tables"`
	Relations []types.Relation    `yaml:"relations" mapstructure:"relations"`
}

// defaultConfig declares suppliers belonging to products, with products
// caching their current supplier's id, name and status.
func defaultConfig() configFile {
	return configFile{
		Backend: types.BackendSQLite,
		Tables: []types.TableSchema{
			{
				Name: "suppliers",
				Columns: []types.ColumnSchema{
					{Name: "name", Type: types.ColumnText, NotNull: true},
					{Name: "status", Type: types.ColumnInteger, Default: 0, Enum: map[int64]string{0: "pending", 1: "active", 2: "closed"}},
					{Name: "product_id", Type: types.ColumnText},
					{Name: "preferred", Type: types.ColumnBoolean},
				},
				OptInColumn: "preferred",
			},
			{
				Name: "products",
				Columns: []types.ColumnSchema{
					{Name: "title", Type: types.ColumnText, NotNull: true},
					{Name: "supplier_id", Type: types.ColumnText},
					{Name: "supplier_name", Type: types.ColumnText},
					{Name: "supplier_status", Type: types.ColumnText},
					{Name: "supplier_denormalized_at", Type: types.ColumnTimestamp},
				},
			},
		},
		Relations: []types.Relation{
			{Source: "suppliers", Target: "products", Name: "product", Inverse: "suppliers", Denormalize: true},
		},
	}
}

// loadConfig reads config.yaml from configDir using Viper. A missing file
// yields defaultConfig.
func loadConfig(configDir string) (configFile, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return defaultConfig(), nil
		}
		return configFile{}, fmt.Errorf("read config: %w", err)
	}

	var cfg configFile
	if err := v.Unmarshal(&cfg); err != nil {
		return configFile{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataDir = v.GetString(cfgKeyDataDir)
	return cfg, nil
}

// writeConfigIfMissing writes cfg to configDir/config.yaml unless the file
// exists. It reports whether the file was written.
func writeConfigIfMissing(configDir string, cfg configFile) (bool, error) {
	path := paths.ConfigPath(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}

// resolvedConfig is config.yaml with the directories resolved for it.
type resolvedConfig struct {
	configDir string
	dataDir   string
	file      configFile
}

// backendConfig returns the configuration the backend attaches with.
func (c resolvedConfig) backendConfig() types.Config {
	return types.Config{
		Backend:   c.file.Backend,
		DataDir:   c.dataDir,
		Tables:    c.file.Tables,
		Relations: c.file.Relations,
	}
}

// resolveConfig loads config.yaml from the resolved config directory and
// resolves the data directory against it.
func resolveConfig(r *paths.Resolver) (resolvedConfig, error) {
	configDir, err := r.ConfigDir()
	if err != nil {
		return resolvedConfig{}, fmt.Errorf("resolve config dir: %w", err)
	}
	file, err := loadConfig(configDir)
	if err != nil {
		return resolvedConfig{}, err
	}
	dataDir, err := r.DataDir(configDir, file.DataDir)
	if err != nil {
		return resolvedConfig{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return resolvedConfig{configDir: configDir, dataDir: dataDir, file: file}, nil
}
