// Twitch API implementation of [Service]
//
// Endpoints follow the v5 videos resource: GET /videos/{id} and GET /videos/top.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	twitchAuthURL     = "https://id.twitch.tv/oauth2/authorize"
	twitchAPIURL      = "https://api.twitch.tv/kraken"
	twitchAPIVersion  = 5
	twitchTokenType   = "OAuth"
	twitchServiceName = "Twitch"
)

// TwitchOpts configures a [TwitchService]. Only ClientID is required.
type TwitchOpts struct {
	ClientID   string
	AuthURL    string
	APIURL     string
	APIVersion int
	Scopes     []string
	RateLimit  float64 // requests per second, zero or less disables limiting
	HTTPClient *http.Client
}

// twitchError is the error body returned by the API.
type twitchError struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// TwitchService implements [ImplicitGrantService] for the Twitch API.
//
// Tokens come from the implicit grant, so there is no refresh: a 401 surfaces as
// [shared.ErrTokenExpired] and the caller runs the browser flow again.
type TwitchService struct {
	config     *oauth2.Config
	apiURL     string
	apiVersion int
	token      *oauth2.Token
	baseClient *http.Client
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTwitchService creates a Twitch service for the registered application in opts.
func NewTwitchService(opts TwitchOpts) (*TwitchService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing twitch client_id", shared.ErrMissingCredentials)
	}
	if opts.AuthURL == "" {
		opts.AuthURL = twitchAuthURL
	}
	if opts.APIURL == "" {
		opts.APIURL = twitchAPIURL
	}
	if opts.APIVersion <= 0 {
		opts.APIVersion = twitchAPIVersion
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &TwitchService{
		config: &oauth2.Config{
			ClientID: opts.ClientID,
			Scopes:   opts.Scopes,
			Endpoint: oauth2.Endpoint{AuthURL: opts.AuthURL},
		},
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		apiVersion: opts.APIVersion,
		baseClient: opts.HTTPClient,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

func (s *TwitchService) Name() string {
	return twitchServiceName
}

// AuthURL returns the implicit grant authorize URL (response_type=token).
func (s *TwitchService) AuthURL(redirectURI, state string) string {
	config := *s.config
	config.RedirectURL = redirectURI
	return config.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))
}

// Authenticate attaches accessToken to every subsequent request.
func (s *TwitchService) Authenticate(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrNotAuthenticated)
	}

	s.token = &oauth2.Token{AccessToken: accessToken, TokenType: twitchTokenType}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
	s.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(s.token))
	return nil
}

// Authenticated reports whether a token is attached.
func (s *TwitchService) Authenticated() bool {
	return s.token != nil
}

// Video retrieves a video by ID. The deprecated "v" prefix is accepted.
func (s *TwitchService) Video(ctx context.Context, id string) (*models.Video, error) {
	id = normalizeVideoID(id)
	if id == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	var video models.Video
	if err := s.doRequest(ctx, "/videos/"+url.PathEscape(id), nil, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// TopVideos retrieves the top videos by view count.
func (s *TwitchService) TopVideos(ctx context.Context, params TopVideosParams) ([]models.Video, error) {
	query, err := params.Values()
	if err != nil {
		return nil, err
	}

	var top models.TopVideos
	if err := s.doRequest(ctx, "/videos/top", query, &top); err != nil {
		return nil, err
	}
	return top.Vods, nil
}

// doRequest performs a rate limited GET against the API and decodes the JSON body into result.
func (s *TwitchService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := s.apiURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", fmt.Sprintf("application/vnd.twitchtv.v%d+json", s.apiVersion))
	req.Header.Set("Client-ID", s.config.ClientID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError maps a non-2xx response to a shared sentinel error.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := strings.TrimSpace(string(body))
	var apiErr twitchError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrVideoNotFound, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

func normalizeVideoID(id string) string {
	id = strings.TrimSpace(id)
	if rest, ok := strings.CutPrefix(id, "v"); ok && rest != "" && strings.Trim(rest, "0123456789") == "" {
		return rest
	}
	return id
}
