// Package cli implements the denorm command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/denormalize/internal/paths"
	"github.com/mesh-intelligence/denormalize/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

var flags rootFlags

// NewRootCmd creates the top-level "denorm" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}
	root := &cobra.Command{
		Use:   "denorm",
		Short: "Store rows whose targets cache their sources' fields",
		Long: "denorm stores the tables declared in config.yaml in SQLite and keeps\n" +
			"the denormalized columns of every target in step with its current source.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $DENORM_CONFIG_DIR or $(CWD)/.denorm)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: data_dir in config.yaml, $DENORM_DATA_DIR or $(CWD)/.denorm-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (default: $DENORM_LOG_LEVEL or warn)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCreateCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newMappingCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps errors caused by the invocation to exitUserError and
// everything else to exitSysError.
func exitCode(err error) int {
	for _, target := range []error{
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidFilter,
		types.ErrTableNotFound,
		types.ErrReadOnlyColumn,
		types.ErrMapping,
		types.ErrConfiguration,
		errUsage,
	} {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

var errUsage = errors.New("usage")

// newResolver returns the directory resolver for the global flags.
func newResolver() (*paths.Resolver, error) {
	return paths.NewResolver(flags.configDir, flags.dataDir)
}
