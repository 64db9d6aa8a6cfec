package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediashelf/internal/config"
	"mediashelf/internal/entries"
	"mediashelf/internal/model"
)

func newEntryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Minimal entry management for attaching images",
	}
	cmd.AddCommand(newEntryAddCmd(cfg), newEntryListCmd(cfg))
	return cmd
}

func newEntryAddCmd(cfg *config.Config) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := entries.NewSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			e := model.NewEntry(args[0], year)
			if err := db.Create(cmd.Context(), e); err != nil {
				return err
			}
			fmt.Printf("Created entry %s (%s)\n", e.Title, e.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "release year")
	return cmd
}

func newEntryListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries and their image counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := entries.NewSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			all, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No entries.")
				return nil
			}
			for _, e := range all {
				fmt.Printf("%s  %s (%d images)\n", e.ID, e.Title, len(e.ImageIDs))
			}
			return nil
		},
	}
}
