package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/repositories"
	"github.com/desertthunder/twx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkFetchOpts contains configuration for bulk video lookups.
type BulkFetchOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // API requests per second (default: 5)
}

type fetchJob struct {
	index int
	id    string
}

// BulkFetch fetches multiple videos concurrently with rate limiting and progress tracking.
//
// Per-video failures are recorded in the result. The returned error is non-nil only when the
// service is missing or ctx ends before every video was processed; the partial result is still returned.
func (e *VideoEngine) BulkFetch(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkFetchOpts,
) (*BulkFetchResult, error) {
	if e.srv == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BulkFetchResult{
		Total:   len(ids),
		Results: make([]VideoFetchResult, len(ids)),
	}
	for i, id := range ids {
		result.Results[i].ID = id
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan fetchJob)
	done := make(chan fetchJob, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result.Results[job.index] = e.fetchOne(ctx, limiter, job.id)
				done <- job
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			select {
			case <-ctx.Done():
				return
			case jobs <- fetchJob{index: i, id: id}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	e.sendProgress(prog, fetchVideosUpdate(0, len(ids)))

	completed := 0
	for job := range done {
		completed++
		res := result.Results[job.index]

		switch {
		case res.Error != nil:
			result.Failed++
			e.sendProgress(prog, fetchFailedUpdate(completed, len(ids), job.id, res.Error))
		case res.Cached:
			result.Succeeded++
			result.CacheHits++
			e.sendProgress(prog, cacheHitUpdate(completed, len(ids), res.Video))
		default:
			result.Succeeded++
			e.sendProgress(prog, fetchCompletedUpdate(completed, len(ids), res.Video))
		}
	}

	if completed < len(ids) {
		return result, fmt.Errorf("fetched %d of %d videos: %w", completed, len(ids), ctx.Err())
	}
	return result, nil
}

// fetchOne serves id through the cache when one is set. Only API calls wait on the limiter.
func (e *VideoEngine) fetchOne(ctx context.Context, limiter *rate.Limiter, id string) VideoFetchResult {
	res := VideoFetchResult{ID: id}

	fetch := func(ctx context.Context, id string) (*models.Video, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		return e.srv.Video(ctx, id)
	}

	if e.cache == nil {
		res.Video, res.Error = fetch(ctx, id)
		return res
	}

	video, hit, err := e.cache.Fetch(ctx, id, e.maxAge, fetch)
	switch {
	case err == nil:
	case repositories.IsCacheWriteError(err):
		res.CacheError = err
	default:
		res.Error = err
		return res
	}

	res.Video = video
	res.Cached = hit
	return res
}
