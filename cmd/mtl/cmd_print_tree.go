package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/object"
	"github.com/mtl-dev/mtl/pkg/treeio"
)

func newPrintTreeCmd() *cobra.Command {
	var rev string
	var maxDepth int
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "print-tree",
		Short: "List a tree's contents in pre-order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			if rev == "" {
				rev = "HEAD"
			}
			oid, err := r.Resolver().Resolve(rev)
			if err != nil {
				return err
			}

			opts := treeio.Options{MaxDepth: maxDepth}
			if typeFilter != "" {
				kind, ok := object.ParseKind(typeFilter)
				if !ok {
					return fmt.Errorf("%w: unknown type filter %q (want file or tree)", mtlerr.ErrInvalidExpression, typeFilter)
				}
				opts.TypeFilter = &kind
			}

			entries, err := treeio.Walk(r.Store, oid, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\t%s\n", e.Kind, e.OID, e.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rev, "rev", "r", "", "object expression to print (default HEAD)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit traversal depth (0 = unlimited)")
	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "restrict output to file or tree entries")
	return cmd
}
