package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/denormalize/internal/paths"
	"github.com/mesh-intelligence/denormalize/internal/sqlite"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize denorm storage",
		Long: "Write config.yaml with the example schema if it is missing, then create\n" +
			"the data directory and every declared table. A --data-dir given to init\n" +
			"is recorded as data_dir in the new config.yaml.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	resolver, err := newResolver()
	if err != nil {
		return err
	}
	configDir, err := resolver.ConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	cfg := defaultConfig()
	if cfg.DataDir, err = resolver.DataFlag(); err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	written, err := writeConfigIfMissing(configDir, cfg)
	if err != nil {
		return err
	}

	rc, err := resolveConfig(resolver)
	if err != nil {
		return err
	}
	backend := sqlite.NewBackend()
	if err := backend.Attach(rc.backendConfig()); err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := backend.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", paths.ConfigPath(configDir))
	}
	fmt.Fprintf(out, "Initialized %d tables in %s\n", len(rc.file.Tables), rc.dataDir)
	return nil
}
