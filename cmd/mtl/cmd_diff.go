package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtl-dev/mtl/pkg/difftree"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <exprA> <exprB>",
		Short: "Show file-level changes between two snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			oldOID, err := r.Resolver().Resolve(args[0])
			if err != nil {
				return err
			}
			newOID, err := r.Resolver().Resolve(args[1])
			if err != nil {
				return err
			}

			changes, err := difftree.Diff(r.Store, oldOID, newOID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range changes {
				fmt.Fprintln(out, c.String())
			}
			return nil
		},
	}
}
