package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

var logger *slog.Logger

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "mtl",
		Short:         "Content-addressed directory snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "raise log level to debug")

	local := &cobra.Command{
		Use:   "local",
		Short: "Operate on the local working directory",
	}
	local.AddCommand(newLocalBuildCmd())
	local.AddCommand(newLocalUpdateCmd())
	local.AddCommand(newLocalListCmd())

	ref := &cobra.Command{
		Use:   "ref",
		Short: "Manage named refs",
	}
	ref.AddCommand(newRefSaveCmd())
	ref.AddCommand(newRefDeleteCmd())
	ref.AddCommand(newRefListCmd())

	tool := &cobra.Command{
		Use:   "tool",
		Short: "Debug utilities",
	}
	tool.AddCommand(newToolDBCmd())

	root.AddCommand(local)
	root.AddCommand(ref)
	root.AddCommand(tool)
	root.AddCommand(newCatObjectCmd())
	root.AddCommand(newPrintTreeCmd())
	root.AddCommand(newRevParseCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newGCCmd())
	root.AddCommand(newPackCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an mtl error to the process exit code: 0 success
// (handled by the caller before this is reached), 1 user error, 2 I/O
// error. Errors outside the sentinel taxonomy (e.g. cobra usage errors)
// are treated as user errors.
func exitCodeFor(err error) int {
	if errors.Is(err, mtlerr.ErrIO) || errors.Is(err, mtlerr.ErrCorrupt) {
		return 2
	}
	return 1
}
