package main

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/spf13/cobra"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

// newToolDBCmd lists the raw keys (hex) and value sizes of one of the
// repository's pebble tables (the pack tier or the ref store), for
// debugging on-disk state directly. It opens the table read-only and never touches the
// higher-level Store/refstore wrappers, since those lazily create the
// table on first write and this command must work against whatever is
// already there.
func newToolDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db [<path>]",
		Short: "List a pebble table's raw keys and value sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join("pack", "packed.db")
			if len(args) == 1 {
				path = args[0]
			} else {
				r, err := openRepo(".")
				if err == nil {
					path = filepath.Join(r.MtlDir, "pack", "packed.db")
					r.Close()
				}
			}

			db, err := pebble.Open(path, &pebble.Options{ReadOnly: true})
			if err != nil {
				return fmt.Errorf("%w: open %s: %v", mtlerr.ErrIO, path, err)
			}
			defer db.Close()

			it, err := db.NewIter(nil)
			if err != nil {
				return fmt.Errorf("%w: iterate %s: %v", mtlerr.ErrIO, path, err)
			}
			defer it.Close()

			out := cmd.OutOrStdout()
			for it.First(); it.Valid(); it.Next() {
				fmt.Fprintf(out, "%s\t%d bytes\n", hex.EncodeToString(it.Key()), len(it.Value()))
			}
			return nil
		},
	}
}
