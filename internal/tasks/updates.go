package tasks

import (
	"fmt"

	"github.com/desertthunder/twx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchVideos Phase = iota
	CacheHit
	FetchFailed
)

func (p Phase) String() string {
	switch p {
	case FetchVideos:
		return "fetch_videos"
	case CacheHit:
		return "cache_hit"
	case FetchFailed:
		return "fetch_failed"
	default:
		return ""
	}
}

func fetchVideosUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d videos from Twitch...", total),
	}
}

func fetchCompletedUpdate(step, total int, v *models.Video) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, v.Title),
		Data:    v,
	}
}

func cacheHitUpdate(step, total int, v *models.Video) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheHit,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (cached)", step, total, v.Title),
		Data:    v,
	}
}

func fetchFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}
