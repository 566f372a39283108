// package testing contains shared test doubles and helpers
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/services"
	"github.com/desertthunder/flox/internal/shared"
)

// MockSearcher is a test double for [resolver.Searcher].
//
// Results maps a query string to its result groups; unknown queries return no groups.
type MockSearcher struct {
	mu      sync.Mutex
	Results map[string][]models.SearchGroup
	Errors  map[string]error
	Queries []string
}

func NewMockSearcher() *MockSearcher {
	return &MockSearcher{Results: map[string][]models.SearchGroup{}, Errors: map[string]error{}}
}

// Track registers a single-entry TRACK group for query.
func (m *MockSearcher) Track(query, id string) *MockSearcher {
	m.Results[query] = []models.SearchGroup{{Type: "TRACK", Entries: []models.SearchEntry{{ID: id}}}}
	return m
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]models.SearchGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if err := m.Errors[query]; err != nil {
		return nil, err
	}
	return m.Results[query], nil
}

// Calls returns the queries searched so far.
func (m *MockSearcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Queries...)
}

// MockStore is a test double for the FLO playlist store.
type MockStore struct {
	mu         sync.Mutex
	Paths      map[string]string
	Playlists  map[uint64]*services.FloPlaylist
	CreateID   uint64
	ResolveErr error
	FetchErr   error
	CreateErr  error
	Created    []services.CreatePlaylistRequest
	Tokens     []string
}

func NewMockStore() *MockStore {
	return &MockStore{Paths: map[string]string{}, Playlists: map[uint64]*services.FloPlaylist{}}
}

func (m *MockStore) ResolveURL(ctx context.Context, rawURL string) (string, error) {
	if m.ResolveErr != nil {
		return "", m.ResolveErr
	}
	if path, ok := m.Paths[rawURL]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: no route for %s", shared.ErrTransport, rawURL)
}

func (m *MockStore) Playlist(ctx context.Context, id uint64) (*services.FloPlaylist, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if p, ok := m.Playlists[id]; ok {
		return p, nil
	}
	return nil, &services.APIError{StatusCode: http.StatusNotFound}
}

func (m *MockStore) CreatePlaylist(ctx context.Context, accessToken string, req services.CreatePlaylistRequest) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, req)
	m.Tokens = append(m.Tokens, accessToken)
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	return m.CreateID, nil
}

// MockTokens is a test double for a token provider.
type MockTokens struct {
	Token string
	Err   error
	calls atomic.Int32
}

func (m *MockTokens) GetToken(ctx context.Context) (string, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Token, nil
}

func (m *MockTokens) Calls() int { return int(m.calls.Load()) }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
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
