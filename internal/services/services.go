// package services defines interface Service for interacting with the Twitch API
package services

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/shared"
)

// Service defines the video operations the CLI needs from a provider.
type Service interface {
	// Authenticate attaches an access token obtained through the implicit grant.
	Authenticate(ctx context.Context, accessToken string) error

	// Video retrieves a single video by ID.
	Video(ctx context.Context, id string) (*models.Video, error)

	// TopVideos retrieves the most viewed videos, optionally filtered.
	TopVideos(ctx context.Context, params TopVideosParams) ([]models.Video, error)

	// Name returns the name of the service (e.g., "Twitch")
	Name() string
}

// ImplicitGrantService is a [Service] whose tokens come from a browser redirect.
type ImplicitGrantService interface {
	Service

	// AuthURL returns the authorize URL that redirects back to redirectURI with the token in the fragment.
	AuthURL(redirectURI, state string) string
}

var (
	validPeriods        = []string{"week", "month", "all"}
	validBroadcastTypes = []string{"archive", "highlight", "upload"}
)

// TopVideosParams are the optional filters of the top videos endpoint. Zero values are omitted.
type TopVideosParams struct {
	Limit         int    // 1 to 100, provider default 10
	Offset        int    // pagination offset
	Game          string // only videos from this game
	Period        string // week, month or all
	BroadcastType string // comma separated: archive, highlight, upload
}

// Values validates p and encodes it as query parameters.
func (p TopVideosParams) Values() (url.Values, error) {
	v := url.Values{}

	if p.Limit < 0 || p.Limit > 100 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 100, got %d", shared.ErrInvalidArgument, p.Limit)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}

	if p.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative, got %d", shared.ErrInvalidArgument, p.Offset)
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}

	if p.Game != "" {
		v.Set("game", p.Game)
	}

	if p.Period != "" {
		if !slices.Contains(validPeriods, p.Period) {
			return nil, fmt.Errorf("%w: period must be one of %s, got %q", shared.ErrInvalidArgument, strings.Join(validPeriods, ", "), p.Period)
		}
		v.Set("period", p.Period)
	}

	if p.BroadcastType != "" {
		types := strings.Split(p.BroadcastType, ",")
		for i, t := range types {
			types[i] = strings.TrimSpace(t)
			if !slices.Contains(validBroadcastTypes, types[i]) {
				return nil, fmt.Errorf("%w: broadcast_type must be any of %s, got %q", shared.ErrInvalidArgument, strings.Join(validBroadcastTypes, ", "), t)
			}
		}
		v.Set("broadcast_type", strings.Join(types, ","))
	}

	return v, nil
}
