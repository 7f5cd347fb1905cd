package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/twx/internal/formatter"
	"github.com/desertthunder/twx/internal/services"
	"github.com/desertthunder/twx/internal/shared"
	"github.com/desertthunder/twx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// authenticate returns the service, attaching the --token flag (or TWX_ACCESS_TOKEN) when present.
func (r *Runner) authenticate(ctx context.Context, cmd *cli.Command) (services.Service, error) {
	srv, err := r.service()
	if err != nil {
		return nil, err
	}

	if token := strings.TrimSpace(cmd.String("token")); token != "" {
		if err := srv.Authenticate(ctx, token); err != nil {
			return nil, err
		}
		r.logger.Debug("using access token", "token", shared.MaskToken(token))
	}

	return srv, nil
}

// VideosGet fetches one or more videos by ID, optionally through the local cache.
func (r *Runner) VideosGet(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one video ID is required", shared.ErrMissingArgument)
	}

	srv, err := r.authenticate(ctx, cmd)
	if err != nil {
		return err
	}

	var cache tasks.VideoCacher
	if cmd.Bool("cache") {
		repo, db, err := r.openCache()
		if err != nil {
			return err
		}
		defer db.Close()
		cache = repo
	}

	engine := tasks.NewVideoEngine(srv, cache, cmd.Duration("max-age"))

	progress := make(chan tasks.ProgressUpdate, len(ids)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := engine.BulkFetch(ctx, progress, ids, tasks.BulkFetchOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.Twitch.RateLimit,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range result.Results {
		if res.Error != nil {
			r.logger.Error("failed to fetch video", "id", res.ID, "error", res.Error)
			errs = append(errs, fmt.Errorf("video %s: %w", res.ID, res.Error))
		}
		if res.CacheError != nil {
			r.logger.Warn("failed to cache video", "id", res.ID, "error", res.CacheError)
		}
	}

	videos := result.Videos()
	if len(videos) > 0 {
		if cmd.Bool("json") {
			var data any = videos
			if len(ids) == 1 {
				data = videos[0]
			}
			if err := r.writeJSON(data, true); err != nil {
				return err
			}
		} else {
			for i := range videos {
				if i > 0 {
					r.writePlain("\n")
				}
				if _, err := r.output.Write(formatter.VideoToText(&videos[i])); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
		}
	}

	if result.CacheHits > 0 {
		r.logger.Info("served from cache", "hits", result.CacheHits, "total", result.Total)
	}

	return errors.Join(errs...)
}

// VideosTop lists the most viewed videos in the requested format.
func (r *Runner) VideosTop(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	params := services.TopVideosParams{
		Limit:         int(cmd.Int("limit")),
		Offset:        int(cmd.Int("offset")),
		Game:          cmd.String("game"),
		Period:        cmd.String("period"),
		BroadcastType: cmd.String("broadcast-type"),
	}
	if _, err := params.Values(); err != nil {
		return err
	}

	srv, err := r.authenticate(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching top videos", "limit", params.Limit, "period", params.Period, "game", params.Game)

	videos, err := srv.TopVideos(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to fetch top videos: %w", err)
	}

	title := "Top videos"
	if params.Game != "" {
		title = fmt.Sprintf("Top %s videos", params.Game)
	}
	if params.Period != "" {
		title = fmt.Sprintf("%s (%s)", title, params.Period)
	}

	if cmd.Bool("tui") {
		return r.videosTUI(title, videos)
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, format, title, videos); err != nil {
			return err
		}
		r.logger.Info("videos written", "path", path, "count", len(videos))
		return r.writePlain("✓ Wrote %d videos to %s\n", len(videos), path)
	}

	data, err := formatter.Render(format, title, videos)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if format == formatter.FormatJSON {
		return r.writePlain("\n")
	}
	return nil
}
