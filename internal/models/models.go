// package models defines the Twitch data returned by the API and kept in the local cache
package models

import (
	"fmt"
	"time"
)

// Channel is the channel summary embedded in a [Video].
type Channel struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Preview holds the thumbnail URLs of a [Video].
type Preview struct {
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Template string `json:"template"`
}

// Video is a Twitch VOD, highlight or upload.
type Video struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	BroadcastID   int64     `json:"broadcast_id"`
	BroadcastType string    `json:"broadcast_type"`
	Status        string    `json:"status"`
	TagList       string    `json:"tag_list"`
	Views         int       `json:"views"`
	URL           string    `json:"url"`
	Game          string    `json:"game"`
	Language      string    `json:"language"`
	Length        int       `json:"length"` // seconds
	CreatedAt     time.Time `json:"created_at"`
	PublishedAt   time.Time `json:"published_at"`
	Preview       Preview   `json:"preview"`
	Channel       Channel   `json:"channel"`
}

// Validate checks the fields required to cache a video.
func (v *Video) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("video id is required")
	}
	return nil
}

// TopVideos is the response of the top videos endpoint.
type TopVideos struct {
	Vods []Video `json:"vods"`
}

// CachedVideo is a [Video] stored in the local database.
type CachedVideo struct {
	ID        string
	Video     Video
	FetchedAt time.Time
}

// Age returns how long ago the video was fetched, relative to now.
func (c *CachedVideo) Age(now time.Time) time.Duration {
	return now.Sub(c.FetchedAt)
}
