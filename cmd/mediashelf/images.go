package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediashelf/internal/config"
)

func newListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List images, optionally narrowed by a filter token",
		Long: `List images. The filter is a single token:
  *             every image (default)
  attached      images referenced by at least one entry
  detached      images referenced by no entry
  #ab12         short-hash prefix (at least 3 hex chars)
  15.05.2025    exact upload date
  key=value     tag substring match
A leading '!' negates the filter.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			filterToken := "*"
			if len(args) == 1 {
				filterToken = args[0]
			}

			if _, err := a.images.LoadTags(cmd.Context(), tagProgress); err != nil {
				return err
			}
			imgs, err := a.images.List(cmd.Context(), filterToken, nil)
			if err != nil {
				return err
			}
			if len(imgs) == 0 {
				fmt.Printf("No images match %q.\n", filterToken)
				return nil
			}
			for _, img := range imgs {
				fmt.Println(img)
			}
			return nil
		},
	}
}

func newShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <short-hash>",
		Short: "Print a presigned display URL for one image",
		Args:  cobra.ExactArgs(1),
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
			ttl := time.Duration(cfg.PresignTTLSeconds) * time.Second
			url, err := a.images.PresignURL(cmd.Context(), img, ttl)
			if err != nil {
				return err
			}
			fmt.Println(img)
			fmt.Println(url)
			return nil
		},
	}
}

func newUploadCmd(cfg *config.Config) *cobra.Command {
	var tagArgs []string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload an image file, normalised to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := parseTagArgs(tagArgs)
			if err != nil {
				return err
			}
			img, err := a.images.UploadFromPath(cmd.Context(), args[0], tags)
			if err != nil {
				return err
			}
			fmt.Println("Uploaded", img)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&tagArgs, "tag", nil, "tag in key=value form (repeatable)")
	return cmd
}

// deleteConfirmThreshold is the number of images above which delete
// prompts for confirmation unless --yes is given.
const deleteConfirmThreshold = 1

func newDeleteCmd(cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <filter>",
		Short: "Delete every image matching a filter token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			imgs, err := a.images.List(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			if len(imgs) == 0 {
				fmt.Printf("No images match %q.\n", args[0])
				return nil
			}
			for _, img := range imgs {
				fmt.Println(img)
			}
			if !yes && len(imgs) > deleteConfirmThreshold {
				if !confirm(fmt.Sprintf("Delete these %d images?", len(imgs))) {
					fmt.Println("No images were deleted.")
					return nil
				}
			}
			for _, img := range imgs {
				if err := a.images.Delete(cmd.Context(), img); err != nil {
					return err
				}
				fmt.Println("Deleted", img.ShortHash())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func newTagCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <short-hash> <key=value>...",
		Short: "Replace an image's tag set",
		Args:  cobra.MinimumNArgs(2),
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
			tags, err := parseTagArgs(args[1:])
			if err != nil {
				return err
			}
			if err := a.images.SetTags(cmd.Context(), img, tags); err != nil {
				return err
			}
			fmt.Println("Tagged", img)
			return nil
		},
	}
}
