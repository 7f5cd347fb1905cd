package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/shared"
)

// FetchFunc loads a video from the API.
type FetchFunc func(ctx context.Context, id string) (*models.Video, error)

// Fetch returns the cached video when it is younger than maxAge, otherwise calls fetch and caches the result.
//
// The boolean reports whether the value came from the cache. When the fetched video cannot be cached it is
// returned together with an error for which [IsCacheWriteError] is true.
func (r *VideoRepository) Fetch(ctx context.Context, id string, maxAge time.Duration, fetch FetchFunc) (*models.Video, bool, error) {
	cached, err := r.Get(id, maxAge)
	if err == nil {
		return &cached.Video, true, nil
	}
	if !errors.Is(err, shared.ErrCacheMiss) {
		return nil, false, err
	}

	video, err := fetch(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if _, err := r.Put(video); err != nil {
		return video, false, fmt.Errorf("%w: %v", errCacheWrite, err)
	}

	return video, false, nil
}

// errCacheWrite marks a successful fetch whose result could not be cached.
var errCacheWrite = errors.New("failed to write cache")

// IsCacheWriteError reports whether err came from caching a fetched video.
func IsCacheWriteError(err error) bool {
	return errors.Is(err, errCacheWrite)
}
