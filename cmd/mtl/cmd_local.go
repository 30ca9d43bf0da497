package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mtl-dev/mtl/pkg/builder"
	"github.com/mtl-dev/mtl/pkg/walker"
)

func newLocalBuildCmd() *cobra.Command {
	var inputPath string
	var hidden bool
	var dir string
	var threads int

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Walk the working directory, hash it, and advance HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = "."
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			r, err := openOrInitRepo(abs)
			if err != nil {
				return err
			}
			defer r.Close()

			cfg, err := loadConfig(abs)
			if err != nil {
				return err
			}
			opts := builder.Options{
				Hidden:          hidden || cfg.Hidden,
				Threads:         threads,
				IgnoreFileNames: cfg.IgnoreFileNames,
			}
			if opts.Threads == 0 {
				opts.Threads = cfg.Threads
			}
			if inputPath != "" {
				list, err := readIncludeList(inputPath)
				if err != nil {
					return err
				}
				opts.IncludeList = list
			}

			oid, err := r.Build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			logger.Info("build complete", "head", oid.String())
			fmt.Fprintln(cmd.OutOrStdout(), oid.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "paths file restricting the walk (- for stdin)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "include dotfiles and dot-directories")
	cmd.Flags().StringVarP(&dir, "dir", "c", "", "working directory to build (default: current directory)")
	cmd.Flags().IntVar(&threads, "threads", 0, "concurrency limit (default: config, or NumCPU)")

	return cmd
}

func newLocalUpdateCmd() *cobra.Command {
	var hidden bool

	cmd := &cobra.Command{
		Use:   "update <subtree>",
		Short: "Re-fold one subtree's ancestor chain and advance HEAD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openOrInitRepo(".")
			if err != nil {
				return err
			}
			defer r.Close()

			cfg, err := loadConfig(".")
			if err != nil {
				return err
			}
			opts := builder.Options{
				Hidden:          hidden || cfg.Hidden,
				Threads:         cfg.Threads,
				IgnoreFileNames: cfg.IgnoreFileNames,
			}

			oid, err := r.Update(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			logger.Info("update complete", "head", oid.String(), "subtree", args[0])
			fmt.Fprintln(cmd.OutOrStdout(), oid.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&hidden, "hidden", false, "include dotfiles and dot-directories")
	return cmd
}

func newLocalListCmd() *cobra.Command {
	var inputPath string
	var hidden bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print what build would hash, without writing any objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(".")
			if err != nil {
				return err
			}
			opts := walker.Options{
				Hidden:          hidden || cfg.Hidden,
				Threads:         cfg.Threads,
				IgnoreFileNames: cfg.IgnoreFileNames,
			}
			if inputPath != "" {
				list, err := readIncludeList(inputPath)
				if err != nil {
					return err
				}
				opts.IncludeList = list
			}

			stream, wait := walker.Walk(cmd.Context(), ".", opts)
			var entries []walker.Entry
			for e := range stream {
				entries = append(entries, e)
			}
			if err := wait(); err != nil {
				return err
			}

			sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s\n", e.Kind, e.RelPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "paths file restricting the walk (- for stdin)")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "include dotfiles and dot-directories")
	return cmd
}
