package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediashelf/internal/config"
	"mediashelf/internal/dupes"
	"mediashelf/internal/model"
)

func newStatsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the image store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.images.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Images:           %d\n", st.Objects)
			fmt.Printf("Total size:       %d KB\n", (st.TotalSizeBytes+512)/1024)
			fmt.Printf("Attached:         %d\n", st.Attached)
			fmt.Printf("Detached:         %d\n", st.Detached)
			fmt.Printf("Duplicate groups: %d\n", st.DuplicateGroups)
			return nil
		},
	}
}

func newCheckCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report entries referencing missing image objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			warnings, err := a.images.CheckConsistency(cmd.Context())
			if err != nil {
				return err
			}
			if len(warnings) == 0 {
				fmt.Println("All entry image references resolve.")
				return nil
			}
			for _, w := range warnings {
				fmt.Printf("%s (%s) references missing object %s\n",
					w.EntryTitle, w.EntryID, w.StorageKey)
			}
			return nil
		},
	}
}

func newDedupeCmd(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Find byte-identical uploads and optionally delete all but the earliest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.images.DuplicateGroups(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No duplicate images found.")
				return nil
			}

			fmt.Printf("Found %d duplicate groups:\n", len(groups))
			for i, g := range groups {
				fmt.Printf("Group %d:\n", i+1)
				for _, key := range g.Keys {
					fmt.Printf("  - #%s (%s)\n", model.ShortHash(model.IDFromKey(key)), key)
				}
			}

			if !yes && !confirm("Delete all but the first added image in each group? (this will ask again)") {
				fmt.Println("No images were deleted.")
				return nil
			}

			res := dupes.Resolve(groups)
			fmt.Printf("Selected %d images for deletion:\n", len(res.Delete))
			for _, key := range res.Delete {
				fmt.Printf("  - #%s (%s)\n", model.ShortHash(model.IDFromKey(key)), key)
			}
			if !yes && !confirm("Delete them?") {
				fmt.Println("No images were deleted.")
				return nil
			}

			deleted, err := a.images.ApplyResolution(cmd.Context(), res)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d images.\n", deleted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip both confirmation prompts")
	return cmd
}

func newReloadCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Drop and refetch the image tag cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := a.images.ReloadTags(cmd.Context(), tagProgress)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded tags for %d images.\n", len(tags))
			return nil
		},
	}
}

func newClearCacheCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete all locally cached image bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.images.ClearLocalCache()
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d cached files.\n", removed)
			return nil
		},
	}
}
