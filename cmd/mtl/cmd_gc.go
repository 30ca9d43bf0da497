package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGCCmd() *cobra.Command {
	var dry bool

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove objects unreachable from HEAD and every ref",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if dry {
				dead, err := r.GCDryRun()
				if err != nil {
					return err
				}
				for _, oid := range dead {
					fmt.Fprintln(out, oid.String())
				}
				return nil
			}

			summary, err := r.GC()
			if err != nil {
				return err
			}
			for _, failure := range summary.Failed {
				logger.Warn("gc: object could not be removed", "oid", failure.OID.String(), "err", failure.Err)
			}
			fmt.Fprintf(out, "reachable: %d, removed: %d, failed: %d\n", summary.Reachable, summary.Removed, len(summary.Failed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dry, "dry", false, "report unreachable objects without deleting them")
	return cmd
}
