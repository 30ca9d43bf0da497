package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCatObjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-object <expr>",
		Short: "Print an object's raw bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			oid, err := r.Resolver().Resolve(args[0])
			if err != nil {
				return err
			}
			data, err := r.Store.Get(oid)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}
