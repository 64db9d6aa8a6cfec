package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"mediashelf/internal/blob"
	"mediashelf/internal/config"
	"mediashelf/internal/entries"
	"mediashelf/internal/localcache"
	"mediashelf/internal/router"
	"mediashelf/internal/store"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
			slog.SetDefault(logger)

			db, err := entries.NewSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			objects, err := blob.NewS3(cmd.Context(), blob.S3Options{
				Bucket:   cfg.Bucket,
				Prefix:   cfg.Prefix,
				Region:   cfg.Region,
				Endpoint: cfg.Endpoint,
			})
			if err != nil {
				return err
			}

			images, err := store.New(cmd.Context(), store.Options{
				Objects: objects,
				Entries: db,
				Cache:   localcache.New(cfg.CacheDir),
				Prefix:  cfg.Prefix,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			srv := router.New(images, db, cfg)

			slog.Info("starting server", "addr", cfg.ListenAddr)
			return http.ListenAndServe(cfg.ListenAddr, srv.Router)
		},
	}
}
