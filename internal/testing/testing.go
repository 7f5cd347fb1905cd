// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/services"
	"github.com/desertthunder/twx/internal/shared"
)

// MockService is a test double for [services.ImplicitGrantService].
//
// Videos are served from the Videos map; a missing id returns [shared.ErrVideoNotFound].
type MockService struct {
	mu        sync.Mutex
	Videos    map[string]*models.Video
	Top       []models.Video
	Err       error // returned by every call when set
	Token     string
	Calls     map[string]int
	LastQuery services.TopVideosParams
}

// NewMockService creates a MockService serving the given videos.
func NewMockService(videos ...models.Video) *MockService {
	m := &MockService{Videos: map[string]*models.Video{}, Calls: map[string]int{}}
	for i := range videos {
		m.Videos[videos[i].ID] = &videos[i]
	}
	m.Top = videos
	return m
}

func (m *MockService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[name]++
}

// CallCount returns how many times the named method was called.
func (m *MockService) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockService) Authenticate(ctx context.Context, accessToken string) error {
	m.record("Authenticate")
	if accessToken == "" {
		return shared.ErrNotAuthenticated
	}
	m.mu.Lock()
	m.Token = accessToken
	m.mu.Unlock()
	return m.Err
}

func (m *MockService) Video(ctx context.Context, id string) (*models.Video, error) {
	m.record("Video")
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.Videos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
	}
	return v, nil
}

func (m *MockService) TopVideos(ctx context.Context, params services.TopVideosParams) ([]models.Video, error) {
	m.record("TopVideos")
	if _, err := params.Values(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.LastQuery = params
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Top, nil
}

func (m *MockService) AuthURL(redirectURI, state string) string {
	return "https://auth.example/authorize?response_type=token&redirect_uri=" + url.QueryEscape(redirectURI)
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter forwards the first maxWrites writes to target and fails after that.
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

// NewLimitedWriter returns a [LimitedWriter] that has already seen written writes.
func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.written >= l.maxWrites {
		return 0, fmt.Errorf("write limit of %d exceeded", l.maxWrites)
	}
	l.written++
	return l.target.Write(p)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
