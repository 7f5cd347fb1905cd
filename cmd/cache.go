package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// cachedVideoJSON is the --json shape of a cache entry.
type cachedVideoJSON struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	Channel   string    `json:"channel"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheList prints every cached video, most recently fetched first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	cached, err := repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]cachedVideoJSON, len(cached))
		for i, c := range cached {
			entries[i] = cachedVideoJSON{
				ID:        c.ID,
				VideoID:   c.Video.ID,
				Title:     c.Video.Title,
				Channel:   c.Video.Channel.Name,
				FetchedAt: c.FetchedAt,
			}
		}
		return r.writeJSON(entries, true)
	}

	if len(cached) == 0 {
		return r.writePlain("No cached videos\n")
	}

	r.writePlainHeader("Cached videos")
	now := time.Now()
	for _, c := range cached {
		r.writePlain("%-12s %-10s %s\n", c.Video.ID, c.Age(now).Round(time.Second), c.Video.Title)
	}
	return r.writePlainln("%d videos in %s", len(cached), r.config.Database.Path)
}

// CachePurge deletes every cached video.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repo.Purge()
	if err != nil {
		return err
	}

	r.logger.Info("cache purged", "rows", n)
	return r.writePlain("✓ Removed %d cached videos\n", n)
}
