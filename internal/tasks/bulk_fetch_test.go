package tasks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/repositories"
	"github.com/desertthunder/twx/internal/shared"
	tu "github.com/desertthunder/twx/internal/testing"
)

// newCache returns a video repository over a migrated in-memory database, seeded with videos.
func newCache(t *testing.T, videos ...models.Video) (*repositories.VideoRepository, *sql.DB) {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repo := repositories.NewVideoRepository(db)
	for i := range videos {
		if _, err := repo.Put(&videos[i]); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
	}
	return repo, db
}

// failWrites makes every insert into the videos table fail.
func failWrites(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`CREATE TRIGGER fail_video_writes BEFORE INSERT ON videos BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	if err != nil {
		t.Fatalf("failed to create trigger: %v", err)
	}
}

func testVideos(ids ...string) []models.Video {
	videos := make([]models.Video, len(ids))
	for i, id := range ids {
		videos[i] = models.Video{ID: id, Title: "video " + id}
	}
	return videos
}

func drain(prog chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-prog:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestBulkFetch(t *testing.T) {
	fast := BulkFetchOpts{NumWorkers: 3, RateLimit: 1000}

	t.Run("fetches every video in request order", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1", "2", "3", "4")...)
		engine := NewVideoEngine(srv, nil, 0)
		prog := make(chan ProgressUpdate, 20)

		result, err := engine.BulkFetch(context.Background(), prog, []string{"4", "1", "3"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}

		if result.Total != 3 || result.Succeeded != 3 || result.Failed != 0 {
			t.Errorf("unexpected counts %+v", result)
		}
		for i, want := range []string{"4", "1", "3"} {
			if got := result.Results[i]; got.ID != want || got.Video == nil || got.Video.ID != want {
				t.Errorf("result %d: expected video %s, got %+v", i, want, got)
			}
		}
		if got := len(result.Videos()); got != 3 {
			t.Errorf("expected 3 videos, got %d", got)
		}

		updates := drain(prog)
		if len(updates) != 4 {
			t.Fatalf("expected 4 progress updates, got %d", len(updates))
		}
		if updates[0].Phase != FetchVideos || updates[0].Step != 0 {
			t.Errorf("expected initial fetch update, got %+v", updates[0])
		}
		if last := updates[3]; last.Step != 3 || last.Total != 3 {
			t.Errorf("expected final step 3/3, got %d/%d", last.Step, last.Total)
		}
	})

	t.Run("records per-video failures", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1")...)
		engine := NewVideoEngine(srv, nil, 0)
		prog := make(chan ProgressUpdate, 10)

		result, err := engine.BulkFetch(context.Background(), prog, []string{"1", "missing"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}

		if result.Succeeded != 1 || result.Failed != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}
		if !errors.Is(result.Results[1].Error, shared.ErrVideoNotFound) {
			t.Errorf("expected ErrVideoNotFound, got %v", result.Results[1].Error)
		}

		var failed bool
		for _, u := range drain(prog) {
			if u.Phase == FetchFailed && strings.Contains(u.Message, "missing") {
				failed = true
			}
		}
		if !failed {
			t.Error("expected a failure progress update")
		}
	})

	t.Run("serves fresh cache entries without the API", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1", "2")...)
		cache, _ := newCache(t, models.Video{ID: "1", Title: "cached one"})
		engine := NewVideoEngine(srv, cache, time.Hour)

		result, err := engine.BulkFetch(context.Background(), nil, []string{"1", "2"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}

		if result.CacheHits != 1 || !result.Results[0].Cached || result.Results[0].Video.Title != "cached one" {
			t.Errorf("expected first video from cache, got %+v", result.Results[0])
		}
		if result.Results[1].Cached {
			t.Error("expected second video from the API")
		}
		if got := srv.CallCount("Video"); got != 1 {
			t.Errorf("expected 1 API call, got %d", got)
		}
		if _, err := cache.Get("2", 0); err != nil {
			t.Errorf("expected fetched video to be cached, got %v", err)
		}
	})

	t.Run("second run is served from the cache", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1", "2")...)
		cache, _ := newCache(t)
		engine := NewVideoEngine(srv, cache, time.Hour)

		for i := 0; i < 2; i++ {
			if _, err := engine.BulkFetch(context.Background(), nil, []string{"1", "2"}, fast); err != nil {
				t.Fatalf("BulkFetch() run %d error = %v", i, err)
			}
		}

		if got := srv.CallCount("Video"); got != 2 {
			t.Errorf("expected 2 API calls across both runs, got %d", got)
		}
	})

	t.Run("stale entries are refetched", func(t *testing.T) {
		srv := tu.NewMockService(models.Video{ID: "1", Title: "fresh"})
		cache, db := newCache(t, models.Video{ID: "1", Title: "old"})
		if _, err := db.Exec("UPDATE videos SET fetched_at = ?", time.Now().Add(-2*time.Hour).UTC()); err != nil {
			t.Fatalf("failed to age cache entry: %v", err)
		}
		engine := NewVideoEngine(srv, cache, time.Hour)

		result, err := engine.BulkFetch(context.Background(), nil, []string{"1"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}
		if res := result.Results[0]; res.Cached || res.Video.Title != "fresh" {
			t.Errorf("expected a refetched video, got %+v", res)
		}
	})

	t.Run("cache write errors keep the video", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1")...)
		cache, db := newCache(t)
		failWrites(t, db)
		engine := NewVideoEngine(srv, cache, 0)

		result, err := engine.BulkFetch(context.Background(), nil, []string{"1"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}

		res := result.Results[0]
		if res.Video == nil || res.Error != nil || !repositories.IsCacheWriteError(res.CacheError) {
			t.Errorf("expected video with cache write error, got %+v", res)
		}
		if result.Succeeded != 1 {
			t.Errorf("expected cache failure to count as success, got %+v", result)
		}
	})

	t.Run("API errors are not cached", func(t *testing.T) {
		srv := tu.NewMockService()
		cache, _ := newCache(t)
		engine := NewVideoEngine(srv, cache, time.Hour)

		result, err := engine.BulkFetch(context.Background(), nil, []string{"missing"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}
		if res := result.Results[0]; !errors.Is(res.Error, shared.ErrVideoNotFound) || res.CacheError != nil {
			t.Errorf("expected ErrVideoNotFound without cache error, got %+v", res)
		}
		if list, _ := cache.List(); len(list) != 0 {
			t.Errorf("expected nothing cached, got %d entries", len(list))
		}
	})

	t.Run("unreadable cache fails the lookup", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1")...)
		cache, db := newCache(t)
		db.Close()
		engine := NewVideoEngine(srv, cache, time.Hour)

		result, err := engine.BulkFetch(context.Background(), nil, []string{"1"}, fast)
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}
		if res := result.Results[0]; res.Error == nil || res.Video != nil {
			t.Errorf("expected a cache read failure, got %+v", res)
		}
		if got := srv.CallCount("Video"); got != 0 {
			t.Errorf("expected no API call, got %d", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1", "2", "3")...)
		engine := NewVideoEngine(srv, nil, 0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := engine.BulkFetch(ctx, nil, []string{"1", "2", "3"}, fast)
		if err == nil {
			for _, res := range result.Results {
				if res.Error == nil {
					t.Fatalf("expected cancellation to fail every video, got %+v", res)
				}
			}
			return
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Total != 3 {
			t.Errorf("expected partial result, got %+v", result)
		}
	})

	t.Run("missing service", func(t *testing.T) {
		engine := NewVideoEngine(nil, nil, 0)
		if _, err := engine.BulkFetch(context.Background(), nil, []string{"1"}, fast); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("empty ids", func(t *testing.T) {
		engine := NewVideoEngine(tu.NewMockService(), nil, 0)
		result, err := engine.BulkFetch(context.Background(), nil, nil, BulkFetchOpts{})
		if err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}
		if result.Total != 0 || len(result.Videos()) != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := tu.NewMockService(testVideos("1", "2", "3")...)
		engine := NewVideoEngine(srv, nil, 0)

		start := time.Now()
		if _, err := engine.BulkFetch(context.Background(), nil, []string{"1", "2", "3"}, BulkFetchOpts{NumWorkers: 3, RateLimit: 10}); err != nil {
			t.Fatalf("BulkFetch() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
			t.Errorf("expected limiter to space requests, took %v", elapsed)
		}
	})
}

func TestSendProgress(t *testing.T) {
	engine := NewVideoEngine(nil, nil, 0)

	engine.sendProgress(nil, ProgressUpdate{})

	full := make(chan ProgressUpdate)
	done := make(chan struct{})
	go func() {
		engine.sendProgress(full, ProgressUpdate{Message: "dropped"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendProgress blocked on a full channel")
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{FetchVideos: "fetch_videos", CacheHit: "cache_hit", FetchFailed: "fetch_failed", Phase(99): ""} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
