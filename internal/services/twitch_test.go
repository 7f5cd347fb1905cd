package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/twx/internal/shared"
	"github.com/google/go-cmp/cmp"
)

const videoJSON = `{
	"_id": "106400740",
	"title": "Speedrun practice",
	"description": "any%",
	"broadcast_id": 24683497248,
	"broadcast_type": "archive",
	"status": "recorded",
	"views": 42,
	"url": "https://www.twitch.tv/videos/106400740",
	"game": "Celeste",
	"length": 3600,
	"created_at": "2016-12-05T19:11:12Z",
	"published_at": "2016-12-05T19:11:12Z",
	"channel": {"_id": "12826", "name": "twitch", "display_name": "Twitch"}
}`

func newTestService(t *testing.T, handler http.HandlerFunc) *TwitchService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewTwitchService(TwitchOpts{
		ClientID:   "test_client_id",
		APIURL:     srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewTwitchService() error = %v", err)
	}
	return svc
}

func TestTwitchService(t *testing.T) {
	t.Run("NewTwitchService", func(t *testing.T) {
		t.Run("defaults", func(t *testing.T) {
			svc, err := NewTwitchService(TwitchOpts{ClientID: "id"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.Name() != "Twitch" {
				t.Errorf("expected service name 'Twitch', got %s", svc.Name())
			}
			if svc.apiURL != twitchAPIURL || svc.apiVersion != twitchAPIVersion {
				t.Errorf("unexpected defaults %s v%d", svc.apiURL, svc.apiVersion)
			}
			if svc.Authenticated() {
				t.Error("expected no token before Authenticate")
			}
		})

		t.Run("missing client id", func(t *testing.T) {
			_, err := NewTwitchService(TwitchOpts{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("AuthURL", func(t *testing.T) {
		svc, err := NewTwitchService(TwitchOpts{ClientID: "abc", Scopes: []string{"user_read", "channel_read"}})
		if err != nil {
			t.Fatalf("NewTwitchService() error = %v", err)
		}

		raw := svc.AuthURL("http://127.0.0.1:23522/authorize.html", "")
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid auth URL %s: %v", raw, err)
		}
		if !strings.HasPrefix(raw, twitchAuthURL+"?") {
			t.Errorf("expected authorize endpoint, got %s", raw)
		}

		q := u.Query()
		want := map[string]string{
			"response_type": "token",
			"client_id":     "abc",
			"redirect_uri":  "http://127.0.0.1:23522/authorize.html",
			"scope":         "user_read channel_read",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("expected %s=%q, got %q", k, v, got)
			}
		}
		if q.Has("state") {
			t.Error("expected no state when none is given")
		}

		if q := mustQuery(t, svc.AuthURL("http://127.0.0.1:1/cb", "xyz")); q.Get("state") != "xyz" {
			t.Errorf("expected state xyz, got %q", q.Get("state"))
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		var gotAuth, gotClientID, gotAccept string
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotClientID = r.Header.Get("Client-ID")
			gotAccept = r.Header.Get("Accept")
			w.Write([]byte(videoJSON))
		})

		if err := svc.Authenticate(context.Background(), ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated for empty token, got %v", err)
		}
		if err := svc.Authenticate(context.Background(), "ABC123"); err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if _, err := svc.Video(context.Background(), "106400740"); err != nil {
			t.Fatalf("Video() error = %v", err)
		}

		if gotAuth != "OAuth ABC123" {
			t.Errorf("expected OAuth authorization header, got %q", gotAuth)
		}
		if gotClientID != "test_client_id" {
			t.Errorf("expected Client-ID header, got %q", gotClientID)
		}
		if gotAccept != "application/vnd.twitchtv.v5+json" {
			t.Errorf("expected versioned Accept header, got %q", gotAccept)
		}
	})

	t.Run("Video", func(t *testing.T) {
		var gotPath string
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(videoJSON))
		})

		video, err := svc.Video(context.Background(), "v106400740")
		if err != nil {
			t.Fatalf("Video() error = %v", err)
		}
		if gotPath != "/videos/106400740" {
			t.Errorf("expected v prefix to be stripped, got path %s", gotPath)
		}
		if video.Title != "Speedrun practice" || video.Channel.DisplayName != "Twitch" {
			t.Errorf("unexpected video %+v", video)
		}
		if video.Length != 3600 || video.CreatedAt != time.Date(2016, 12, 5, 19, 11, 12, 0, time.UTC) {
			t.Errorf("unexpected length or created_at: %d %v", video.Length, video.CreatedAt)
		}
	})

	t.Run("Video requires an id", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if _, err := svc.Video(context.Background(), "  "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("TopVideos", func(t *testing.T) {
		var gotQuery url.Values
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/videos/top" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			gotQuery = r.URL.Query()
			w.Write([]byte(`{"vods": [` + videoJSON + `, {"_id": "2", "title": "second"}]}`))
		})

		videos, err := svc.TopVideos(context.Background(), TopVideosParams{
			Limit:         5,
			Offset:        10,
			Game:          "Celeste",
			Period:        "month",
			BroadcastType: "archive, highlight",
		})
		if err != nil {
			t.Fatalf("TopVideos() error = %v", err)
		}
		if len(videos) != 2 || videos[1].Title != "second" {
			t.Errorf("unexpected videos %+v", videos)
		}

		want := url.Values{
			"limit":          {"5"},
			"offset":         {"10"},
			"game":           {"Celeste"},
			"period":         {"month"},
			"broadcast_type": {"archive,highlight"},
		}
		if diff := cmp.Diff(want, gotQuery); diff != "" {
			t.Errorf("query mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("status errors", func(t *testing.T) {
		tc := []struct {
			name    string
			status  int
			body    string
			wantErr error
			wantMsg string
		}{
			{"unauthorized", http.StatusUnauthorized, `{"error":"Unauthorized","status":401,"message":"invalid oauth token"}`, shared.ErrTokenExpired, "invalid oauth token"},
			{"not found", http.StatusNotFound, `{"error":"Not Found","status":404,"message":"Video does not exist"}`, shared.ErrVideoNotFound, "Video does not exist"},
			{"server error", http.StatusBadGateway, "upstream down", shared.ErrAPIRequest, "status 502: upstream down"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				})

				_, err := svc.Video(context.Background(), "1")
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("expected message %q in %q", tt.wantMsg, err.Error())
				}
			})
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})
		if _, err := svc.Video(context.Background(), "1"); err == nil || !strings.Contains(err.Error(), "decode") {
			t.Errorf("expected decode error, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(videoJSON))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := svc.Video(ctx, "1"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})

	t.Run("rate limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(videoJSON))
		}))
		defer srv.Close()

		svc, err := NewTwitchService(TwitchOpts{ClientID: "id", APIURL: srv.URL, HTTPClient: srv.Client(), RateLimit: 10})
		if err != nil {
			t.Fatalf("NewTwitchService() error = %v", err)
		}

		start := time.Now()
		for i := 0; i < 3; i++ {
			if _, err := svc.Video(context.Background(), "1"); err != nil {
				t.Fatalf("Video() error = %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
			t.Errorf("expected requests to be spaced by the limiter, took %v", elapsed)
		}
	})
}

func TestTopVideosParams(t *testing.T) {
	tc := []struct {
		name    string
		params  TopVideosParams
		want    url.Values
		wantErr bool
	}{
		{name: "empty", params: TopVideosParams{}, want: url.Values{}},
		{name: "limit bounds", params: TopVideosParams{Limit: 100}, want: url.Values{"limit": {"100"}}},
		{name: "limit too large", params: TopVideosParams{Limit: 101}, wantErr: true},
		{name: "negative limit", params: TopVideosParams{Limit: -1}, wantErr: true},
		{name: "negative offset", params: TopVideosParams{Offset: -5}, wantErr: true},
		{name: "bad period", params: TopVideosParams{Period: "year"}, wantErr: true},
		{name: "all period", params: TopVideosParams{Period: "all"}, want: url.Values{"period": {"all"}}},
		{name: "bad broadcast type", params: TopVideosParams{BroadcastType: "archive,live"}, wantErr: true},
		{name: "broadcast types", params: TopVideosParams{BroadcastType: "upload"}, want: url.Values{"broadcast_type": {"upload"}}},
		{name: "broadcast type list", params: TopVideosParams{BroadcastType: "archive, highlight"}, want: url.Values{"broadcast_type": {"archive,highlight"}}},
		{name: "every period", params: TopVideosParams{Period: "week", Game: "Celeste"}, want: url.Values{"period": {"week"}, "game": {"Celeste"}}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.params.Values()
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Values() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Values() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeVideoID(t *testing.T) {
	for in, want := range map[string]string{
		"v123":   "123",
		"123":    "123",
		" v9 ":   "9",
		"v":      "v",
		"video1": "video1",
		"":       "",
	} {
		if got := normalizeVideoID(in); got != want {
			t.Errorf("normalizeVideoID(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid URL %s: %v", raw, err)
	}
	return u.Query()
}
