// FLO HTTP API client
//
// Responses are wrapped in a {"code", "message", "data"} envelope; fields are read with [gjson] paths.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultWebURL       = "https://www.music-flo.com"
	DefaultAPIURL       = "https://api.music-flo.com"
	DefaultMaxRedirects = 2

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.132 Safari/537.36"

	headerAccessToken = "x-gm-access-token"
	headerDeviceID    = "x-gm-device-id"
)

// FloTrack is a track as listed inside a FLO playlist.
type FloTrack struct {
	ID     string
	Name   string
	Artist string
}

// FloPlaylist is the detail view of a FLO playlist.
type FloPlaylist struct {
	ID          uint64
	Name        string
	Description string
	Tracks      []FloTrack
}

// NewTrack is a trackList entry in a create-playlist request.
type NewTrack struct {
	NewYn   string `json:"newYn"`
	TrackID string `json:"trackId"`
}

// CreatePlaylistRequest is the body of POST /personal/v2/myplaylist.
type CreatePlaylistRequest struct {
	Description string     `json:"chnlDesc"`
	Name        string     `json:"name"`
	PublishYn   string     `json:"publishYn"`
	TrackList   []NewTrack `json:"trackList"`
}

// APIError is a non-2xx response from FLO. It unwraps to [shared.ErrTransport].
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("flo API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("flo API error: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return shared.ErrTransport }

// FloOpts configures a [FloService].
type FloOpts struct {
	WebURL            string
	APIURL            string
	HTTPClient        *http.Client
	RequestsPerSecond float64 // zero disables throttling
	MaxRedirects      int
	Now               func() time.Time
	Logger            *log.Logger
}

// FloService talks to the FLO web and API hosts. It implements search, sign-in and the playlist store.
//
// Requests share one [rate.Limiter]. Nothing is retried.
type FloService struct {
	webURL       string
	apiURL       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRedirects int
	now          func() time.Time
	logger       *log.Logger
}

// NewFloService creates a FLO client, filling unset options with production defaults.
func NewFloService(opts FloOpts) *FloService {
	if opts.WebURL == "" {
		opts.WebURL = DefaultWebURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &FloService{
		webURL:       opts.WebURL,
		apiURL:       opts.APIURL,
		httpClient:   opts.HTTPClient,
		limiter:      rate.NewLimiter(limit, 1),
		maxRedirects: opts.MaxRedirects,
		now:          opts.Now,
		logger:       opts.Logger,
	}
}

func (f *FloService) Name() string {
	return "FLO"
}

// doRequest sends a request and returns the parsed JSON body.
//
// body, when non-nil, is sent as JSON. Network failures and non-2xx statuses wrap [shared.ErrTransport].
func (f *FloService) doRequest(ctx context.Context, method, endpoint string, body any, headers map[string]string) (gjson.Result, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if gjson.ValidBytes(raw) {
			apiErr.Message = gjson.GetBytes(raw, "message").String()
		}
		return gjson.Result{}, apiErr
	}

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: response is not valid JSON", shared.ErrTransport)
	}

	return gjson.ParseBytes(raw), nil
}

// Search runs a track keyword search.
//
// Calls GET {web}/api/search/v2/search. A response without data.list yields no groups.
func (f *FloService) Search(ctx context.Context, query string) ([]models.SearchGroup, error) {
	params := url.Values{}
	params.Set("keyword", query)
	params.Set("searchType", "TRACK")
	params.Set("sortType", "ACCURACY")
	params.Set("size", "50")
	params.Set("page", "1")
	params.Set("timestamp", strconv.FormatInt(f.now().UnixMilli(), 10))

	res, err := f.doRequest(ctx, http.MethodGet, f.webURL+"/api/search/v2/search?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var groups []models.SearchGroup
	res.Get("data.list").ForEach(func(_, g gjson.Result) bool {
		group := models.SearchGroup{Type: g.Get("type").String()}
		g.Get("list").ForEach(func(_, e gjson.Result) bool {
			group.Entries = append(group.Entries, models.SearchEntry{
				ID:     idString(e.Get("id")),
				Name:   e.Get("name").String(),
				Artist: e.Get("representationArtist.name").String(),
			})
			return true
		})
		groups = append(groups, group)
		return true
	})

	return groups, nil
}

// SignIn exchanges member credentials for an access token.
//
// Calls POST {api}/auth/v3/sign/in. 4xx responses and a missing data.accessToken wrap [shared.ErrAuthentication].
func (f *FloService) SignIn(ctx context.Context, username, password, deviceID string) (string, error) {
	body := map[string]string{
		"memberId":           username,
		"memberPwd":          password,
		"requestChannelType": "AAPP",
		"signInType":         "IDM",
	}

	res, err := f.doRequest(ctx, http.MethodPost, f.apiURL+"/auth/v3/sign/in", body, map[string]string{headerDeviceID: deviceID})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return "", fmt.Errorf("%w: %v", shared.ErrAuthentication, apiErr)
		}
		return "", err
	}

	token := res.Get("data.accessToken").String()
	if token == "" {
		return "", fmt.Errorf("%w: sign-in response has no access token", shared.ErrAuthentication)
	}
	return token, nil
}

// ResolveURL requests a public playlist URL and returns the path it finally lands on.
//
// At most maxRedirects redirects are followed. The request carries desktop browser headers so
// share links resolve to the web detail page.
func (f *FloService) ResolveURL(ctx context.Context, rawURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	client := *f.httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > f.maxRedirects {
			return fmt.Errorf("stopped after %d redirects", f.maxRedirects)
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("sec-ch-ua-platform", "Windows")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode}
	}

	return resp.Request.URL.Path, nil
}

// Playlist fetches playlist detail with tracks.
//
// Calls GET {api}/personal/v1/playlist/{id}?depth=2&mixYn=N.
func (f *FloService) Playlist(ctx context.Context, id uint64) (*FloPlaylist, error) {
	endpoint := fmt.Sprintf("%s/personal/v1/playlist/%d?depth=2&mixYn=N", f.apiURL, id)

	res, err := f.doRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	data := res.Get("data")
	if !data.IsObject() {
		return nil, fmt.Errorf("playlist %d: response has no data", id)
	}
	name := data.Get("name")
	if !name.Exists() {
		return nil, fmt.Errorf("playlist %d: missing name", id)
	}
	list := data.Get("track.list")
	if !list.IsArray() {
		return nil, fmt.Errorf("playlist %d: missing track.list", id)
	}

	playlist := &FloPlaylist{
		ID:          id,
		Name:        name.String(),
		Description: data.Get("chnlDesc").String(),
		Tracks:      make([]FloTrack, 0, len(list.Array())),
	}

	var missing error
	list.ForEach(func(i, t gjson.Result) bool {
		tid := idString(t.Get("id"))
		artist := t.Get("representationArtist.name")
		if tid == "" || !artist.Exists() {
			missing = fmt.Errorf("playlist %d: track %d is missing id or artist", id, i.Int())
			return false
		}
		playlist.Tracks = append(playlist.Tracks, FloTrack{
			ID:     tid,
			Name:   t.Get("name").String(),
			Artist: artist.String(),
		})
		return true
	})
	if missing != nil {
		return nil, missing
	}

	return playlist, nil
}

// CreatePlaylist creates a playlist under the signed-in member and returns its internal ID.
//
// Calls POST {api}/personal/v2/myplaylist with the x-gm-access-token header.
func (f *FloService) CreatePlaylist(ctx context.Context, accessToken string, req CreatePlaylistRequest) (uint64, error) {
	res, err := f.doRequest(ctx, http.MethodPost, f.apiURL+"/personal/v2/myplaylist", req, map[string]string{headerAccessToken: accessToken})
	if err != nil {
		return 0, err
	}
	f.logger.Debug("create playlist response", "body", truncate(res.Raw, 500))

	id := res.Get("data.id")
	if !id.Exists() {
		return 0, fmt.Errorf("create response has no data.id: %s", truncate(res.Raw, 200))
	}
	parsed, err := strconv.ParseUint(idString(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("create response has non-numeric data.id %q", id.Raw)
	}
	return parsed, nil
}

// idString renders a JSON id that may be a number or a string. Numbers keep their raw digits.
func idString(r gjson.Result) string {
	if r.Type == gjson.Number {
		return r.Raw
	}
	return r.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
