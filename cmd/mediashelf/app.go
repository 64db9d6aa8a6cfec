package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"mediashelf/internal/blob"
	"mediashelf/internal/config"
	"mediashelf/internal/entries"
	"mediashelf/internal/localcache"
	"mediashelf/internal/model"
	"mediashelf/internal/store"
)

// app bundles the wired dependencies every command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	entries *entries.SQLite
	images  *store.Store
}

// newApp wires the blob store, the entry database, and the image store.
// Blob-store access is probed here; commands never start half-connected.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	db, err := entries.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	objects, err := blob.NewS3(ctx, blob.S3Options{
		Bucket:   cfg.Bucket,
		Prefix:   cfg.Prefix,
		Region:   cfg.Region,
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	images, err := store.New(ctx, store.Options{
		Objects: objects,
		Entries: db,
		Cache:   localcache.New(cfg.CacheDir),
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, entries: db, images: images}, nil
}

func (a *app) Close() {
	a.entries.Close()
}

// resolveImage maps a short-hash argument to exactly one image.
func (a *app) resolveImage(ctx context.Context, ref string) (*model.Image, error) {
	ref = strings.TrimPrefix(ref, "#")
	imgs, err := a.images.List(ctx, "#"+ref, nil)
	if err != nil {
		return nil, err
	}
	switch len(imgs) {
	case 0:
		return nil, fmt.Errorf("no image matches %q", ref)
	case 1:
		return imgs[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d images, be more specific", ref, len(imgs))
	}
}

// confirm asks a yes/no question on stdin; anything but "y" is a no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(line)) == "y"
}

// parseTagArgs turns ["k=v", ...] into a map.
func parseTagArgs(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q, want key=value", arg)
		}
		tags[k] = v
	}
	return tags, nil
}

// tagProgress renders a single-line progress counter on stderr.
func tagProgress(done, total int) {
	fmt.Fprintf(os.Stderr, "\rloading image tags %d/%d", done, total)
	if done == total {
		fmt.Fprintln(os.Stderr)
	}
}
