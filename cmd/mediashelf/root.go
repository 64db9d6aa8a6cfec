package main

import (
	"github.com/spf13/cobra"

	"mediashelf/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mediashelf",
		Short:         "Mediashelf manages the image store of a movies/series database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = "0.0.0"

	cmd.AddCommand(
		newServeCmd(cfg),
		newListCmd(cfg),
		newShowCmd(cfg),
		newUploadCmd(cfg),
		newAttachCmd(cfg),
		newDetachCmd(cfg),
		newDeleteCmd(cfg),
		newTagCmd(cfg),
		newStatsCmd(cfg),
		newCheckCmd(cfg),
		newDedupeCmd(cfg),
		newReloadCmd(cfg),
		newClearCacheCmd(cfg),
		newEntryCmd(cfg),
	)

	return cmd
}
