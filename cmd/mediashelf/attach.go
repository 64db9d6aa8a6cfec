package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediashelf/internal/config"
)

func newAttachCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <short-hash> <entry-id>",
		Short: "Attach an image to an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			img, err := a.resolveImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entry, err := a.entries.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			changed, err := a.images.Attach(cmd.Context(), img, entry)
			if err != nil {
				return err
			}
			if changed {
				fmt.Printf("Attached %s to %s.\n", img.ShortHash(), entry.Title)
			} else {
				fmt.Printf("%s was already attached to %s.\n", img.ShortHash(), entry.Title)
			}
			return nil
		},
	}
}

func newDetachCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <short-hash> <entry-id>",
		Short: "Detach an image from an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			img, err := a.resolveImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entry, err := a.entries.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			changed, err := a.images.Detach(cmd.Context(), img, entry)
			if err != nil {
				return err
			}
			if changed {
				fmt.Printf("Detached %s from %s.\n", img.ShortHash(), entry.Title)
			} else {
				fmt.Printf("%s was not attached to %s.\n", img.ShortHash(), entry.Title)
			}
			return nil
		},
	}
}
