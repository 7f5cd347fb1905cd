package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/shared"
)

// VideoRepository caches [models.Video] lookups.
//
// The full API payload is stored as JSON next to a few columns used for listing.
type VideoRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewVideoRepository creates a new VideoRepository with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db, now: time.Now}
}

// Put inserts or replaces the cached copy of video and resets its fetch time.
func (r *VideoRepository) Put(video *models.Video) (*models.CachedVideo, error) {
	if err := video.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	payload, err := json.Marshal(video)
	if err != nil {
		return nil, fmt.Errorf("failed to encode video: %w", err)
	}

	cached := &models.CachedVideo{ID: shared.GenerateID(), Video: *video, FetchedAt: r.now().UTC()}

	query := `
		INSERT INTO videos (id, video_id, title, channel, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			channel = excluded.channel,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`

	_, err = r.db.Exec(query,
		cached.ID,
		video.ID,
		video.Title,
		video.Channel.Name,
		string(payload),
		cached.FetchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cache video: %w", err)
	}

	// On conflict the row keeps its original id.
	if err := r.db.QueryRow("SELECT id FROM videos WHERE video_id = ?", video.ID).Scan(&cached.ID); err != nil {
		return nil, notFound(err, "video "+video.ID)
	}

	return cached, nil
}

// Get returns the cached video with the given Twitch id.
//
// Entries older than maxAge are reported as [shared.ErrCacheMiss]. A maxAge of zero or less never expires.
func (r *VideoRepository) Get(videoID string, maxAge time.Duration) (*models.CachedVideo, error) {
	query := `
		SELECT id, payload, fetched_at
		FROM videos
		WHERE video_id = ?
	`

	cached, err := r.scanOne(r.db.QueryRow(query, videoID), videoID)
	if err != nil {
		return nil, err
	}

	if maxAge > 0 && cached.Age(r.now()) > maxAge {
		return nil, fmt.Errorf("%w: video %s is stale", shared.ErrCacheMiss, videoID)
	}

	return cached, nil
}

// List returns every cached video, most recently fetched first.
func (r *VideoRepository) List() ([]*models.CachedVideo, error) {
	query := `
		SELECT id, payload, fetched_at
		FROM videos
		ORDER BY fetched_at DESC, video_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []*models.CachedVideo
	for rows.Next() {
		cached, err := r.scanOne(rows, "row")
		if err != nil {
			return nil, err
		}
		videos = append(videos, cached)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// Purge removes every cached video and returns how many rows were deleted.
func (r *VideoRepository) Purge() (int64, error) {
	result, err := r.db.Exec("DELETE FROM videos")
	if err != nil {
		return 0, fmt.Errorf("failed to purge videos: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func (r *VideoRepository) scanOne(row scanner, what string) (*models.CachedVideo, error) {
	var (
		cached  models.CachedVideo
		payload string
	)

	if err := row.Scan(&cached.ID, &payload, &cached.FetchedAt); err != nil {
		return nil, notFound(err, "video "+what)
	}

	if err := json.Unmarshal([]byte(payload), &cached.Video); err != nil {
		return nil, fmt.Errorf("failed to decode cached video %s: %w", what, err)
	}

	return &cached, nil
}
