// Package cli implements the playerctl command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/player/pkg/types"
	"github.com/mesh-intelligence/player/pkg/version"
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
	actor     string
	verbose   bool
}

// app is one invocation of the CLI.
type app struct {
	flags  rootFlags
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

// NewRootCmd creates the top-level "playerctl" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "playerctl",
		Short:   "Manage player classes and players",
		Long:    "playerctl creates player classes and their players, updates them under\ntheir update policies, and keeps inherited values current.",
		Version: version.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			level := slog.LevelWarn
			if a.flags.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .player)")
	root.PersistentFlags().StringVar(&a.flags.actor, "actor", "", "hex id of the acting account (default: actor from config.yaml)")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(a.newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newClassCmd())
	root.AddCommand(a.newPlayerCmd())
	root.AddCommand(a.newPropagateCmd())
	root.AddCommand(a.newNamespaceCmd())
	root.AddCommand(a.newTokenCmd())
	root.AddCommand(a.newSnapshotCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors a user can fix to exitUserError and everything else
// to exitSysError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrPermission),
		errors.Is(err, types.ErrCapacity),
		errors.Is(err, types.ErrConsistency),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

// errUsage marks bad command-line input.
var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
