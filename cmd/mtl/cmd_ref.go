package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> [<expr>]",
		Short: "Point a named ref at an object, defaulting to HEAD",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			expr := "HEAD"
			if len(args) == 2 {
				expr = args[1]
			}
			oid, err := r.Resolver().Resolve(expr)
			if err != nil {
				return err
			}
			if err := r.SaveRef(args[0], oid); err != nil {
				return err
			}
			logger.Info("ref saved", "name", args[0], "oid", oid.String())
			return nil
		},
	}
}

func newRefDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a named ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.DeleteRef(args[0]); err != nil {
				return err
			}
			logger.Info("ref deleted", "name", args[0])
			return nil
		},
	}
}

func newRefListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every named ref",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			refs, err := r.ListRefs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ref := range refs {
				fmt.Fprintf(out, "%s\t%s\n", ref.OID, ref.Name)
			}
			return nil
		},
	}
}
