// package tasks implements batched video operations on top of a [services.Service].
package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/repositories"
	"github.com/desertthunder/twx/internal/services"
)

// VideoCacher is a read-through video cache, implemented by [repositories.VideoRepository].
//
// Fetch reports whether the video came from the cache. A fetched video that could not be stored is returned
// with an error satisfying [repositories.IsCacheWriteError].
type VideoCacher interface {
	Fetch(ctx context.Context, id string, maxAge time.Duration, fetch repositories.FetchFunc) (*models.Video, bool, error)
}

// VideoFetchResult is the outcome of fetching a single video.
type VideoFetchResult struct {
	ID         string        // Requested video ID
	Video      *models.Video // Fetched video (nil on failure)
	Cached     bool          // Served from the cache
	CacheError error         // Failed to write the fetched video to the cache
	Error      error         // Failed to fetch
}

// BulkFetchResult contains the results of a [VideoEngine.BulkFetch] in request order.
type BulkFetchResult struct {
	Total     int
	Succeeded int
	Failed    int
	CacheHits int
	Results   []VideoFetchResult
}

// Videos returns the successfully fetched videos in request order.
func (r *BulkFetchResult) Videos() []models.Video {
	videos := make([]models.Video, 0, r.Succeeded)
	for _, res := range r.Results {
		if res.Video != nil {
			videos = append(videos, *res.Video)
		}
	}
	return videos
}

// VideoEngine runs video lookups against a service with an optional cache.
type VideoEngine struct {
	srv    services.Service
	cache  VideoCacher
	maxAge time.Duration
}

// NewVideoEngine creates a new VideoEngine. cache may be nil; maxAge is passed to [VideoCacher.Fetch].
func NewVideoEngine(srv services.Service, cache VideoCacher, maxAge time.Duration) *VideoEngine {
	return &VideoEngine{srv: srv, cache: cache, maxAge: maxAge}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *VideoEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
