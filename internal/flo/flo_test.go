package flo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/flox/internal/auth"
	"github.com/desertthunder/flox/internal/codec"
	"github.com/desertthunder/flox/internal/models"
	"github.com/desertthunder/flox/internal/resolver"
	"github.com/desertthunder/flox/internal/services"
	"github.com/desertthunder/flox/internal/shared"
	tu "github.com/desertthunder/flox/internal/testing"
)

const shareURL = "https://www.music-flo.com/share/road-trip"

func roadTripStore() *tu.MockStore {
	store := tu.NewMockStore()
	store.Paths[shareURL] = "/detail/openplaylist/ohy"
	store.Playlists[789] = &services.FloPlaylist{
		ID:          789,
		Name:        "Road Trip",
		Description: "windows down",
		Tracks: []services.FloTrack{
			{ID: "11", Name: "Drive", Artist: "Incubus"},
			{ID: "12", Name: "Holiday", Artist: "Green Day"},
			{ID: "13", Name: "Fast Car", Artist: "Tracy Chapman"},
		},
	}
	store.CreateID = 789
	return store
}

func TestTranscriber(t *testing.T) {
	ctx := context.Background()

	t.Run("GetPlaylistContent", func(t *testing.T) {
		tr := NewTranscriber(roadTripStore(), nil, nil)

		pl, err := tr.GetPlaylistContent(ctx, shareURL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if pl.Name != "Road Trip" || pl.Description != "windows down" {
			t.Errorf("unexpected metadata: %q / %q", pl.Name, pl.Description)
		}
		if len(pl.PreGenerated) != 1 || pl.PreGenerated[models.ChannelFLO] != shareURL {
			t.Errorf("expected pre-generated URL to be the input, got %v", pl.PreGenerated)
		}

		want := []string{"Drive", "Holiday", "Fast Car"}
		if len(pl.Tracks) != len(want) {
			t.Fatalf("expected %d tracks, got %d", len(want), len(pl.Tracks))
		}
		for i, song := range pl.Tracks {
			if song.Name != want[i] {
				t.Errorf("track %d: expected %s, got %s", i, want[i], song.Name)
			}
			if len(song.ChannelIDs) != 1 {
				t.Errorf("track %d: expected only the FLO id, got %v", i, song.ChannelIDs)
			}
		}
		if id, _ := pl.Tracks[1].ChannelID(models.ChannelFLO); id != "12" {
			t.Errorf("expected FLO id 12, got %s", id)
		}
		if pl.Tracks[2].Artist != "Tracy Chapman" {
			t.Errorf("expected artist from representation artist, got %s", pl.Tracks[2].Artist)
		}
	})

	t.Run("Failures", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(*tu.MockStore)
			cause error
		}{
			{
				name:  "redirect fails",
				setup: func(s *tu.MockStore) { s.ResolveErr = fmt.Errorf("%w: too many redirects", shared.ErrTransport) },
				cause: shared.ErrTransport,
			},
			{
				name:  "path too short",
				setup: func(s *tu.MockStore) { s.Paths[shareURL] = "/detail" },
			},
			{
				name:  "empty id segment",
				setup: func(s *tu.MockStore) { s.Paths[shareURL] = "/detail/openplaylist/" },
			},
			{
				name:  "undecodable id",
				setup: func(s *tu.MockStore) { s.Paths[shareURL] = "/detail/openplaylist/x1y" },
				cause: shared.ErrDecode,
			},
			{
				name:  "playlist fetch fails",
				setup: func(s *tu.MockStore) { s.FetchErr = errors.New("playlist 789: missing track.list") },
			},
			{
				name:  "unknown playlist",
				setup: func(s *tu.MockStore) { delete(s.Playlists, 789) },
				cause: shared.ErrTransport,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := roadTripStore()
				tt.setup(store)

				pl, err := NewTranscriber(store, nil, nil).GetPlaylistContent(ctx, shareURL)
				if !errors.Is(err, shared.ErrTranscription) {
					t.Fatalf("expected ErrTranscription, got %v", err)
				}
				if tt.cause != nil && !errors.Is(err, tt.cause) {
					t.Errorf("expected cause %v, got %v", tt.cause, err)
				}
				if pl.Name != "" || pl.Tracks != nil {
					t.Errorf("expected zero playlist on failure, got %+v", pl)
				}
			})
		}
	})

	t.Run("PlaylistID", func(t *testing.T) {
		store := roadTripStore()
		store.Paths["https://flo.example/custom"] = "/detail/openplaylist/" + codec.Encode(1234567890)

		id, err := NewTranscriber(store, nil, nil).PlaylistID(ctx, "https://flo.example/custom")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != 1234567890 {
			t.Errorf("expected 1234567890, got %d", id)
		}
	})
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()

	playlist := models.Playlist{
		Name:        "Road Trip",
		Description: "windows down",
		Tracks: []models.Song{
			{Name: "Drive", Artist: "Incubus", ChannelIDs: map[string]string{"flo": "11", "spotify": "sp1"}},
			{Name: "Holiday", Artist: "Green Day", ChannelIDs: map[string]string{"flo": "12"}},
		},
	}

	t.Run("GenerateURL", func(t *testing.T) {
		store := roadTripStore()
		tokens := &tu.MockTokens{Token: "tok"}

		got, err := NewPublisher(store, tokens, nil, nil, PublishOptions{}).GenerateURL(ctx, playlist)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "https://www.music-flo.com/detail/openplaylist/ohy" {
			t.Errorf("unexpected URL %s", got)
		}

		if len(store.Created) != 1 {
			t.Fatalf("expected one create call, got %d", len(store.Created))
		}
		req := store.Created[0]
		if req.Name != "Road Trip" || req.Description != "windows down" || req.PublishYn != "Y" {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.TrackList) != 2 || req.TrackList[0].TrackID != "11" || req.TrackList[1].TrackID != "12" {
			t.Errorf("unexpected track list: %+v", req.TrackList)
		}
		for _, nt := range req.TrackList {
			if nt.NewYn != "Y" {
				t.Errorf("expected newYn Y, got %s", nt.NewYn)
			}
		}
		if store.Tokens[0] != "tok" {
			t.Errorf("expected token tok, got %s", store.Tokens[0])
		}
	})

	t.Run("Missing Identifier Fails Before Sign-In", func(t *testing.T) {
		store := roadTripStore()
		tokens := &tu.MockTokens{Token: "tok"}

		broken := playlist.Clone()
		broken.Tracks = append(broken.Tracks, models.Song{Name: "Fast Car", Artist: "Tracy Chapman", ChannelIDs: map[string]string{"spotify": "sp3"}})

		_, err := NewPublisher(store, tokens, nil, nil, PublishOptions{}).GenerateURL(ctx, broken)
		if !errors.Is(err, shared.ErrMissingIdentifier) {
			t.Fatalf("expected ErrMissingIdentifier, got %v", err)
		}
		if !strings.Contains(err.Error(), "track 2") || !strings.Contains(err.Error(), "Fast Car") {
			t.Errorf("expected error to name the track, got %v", err)
		}
		if tokens.Calls() != 0 {
			t.Errorf("expected no token request, got %d", tokens.Calls())
		}
		if len(store.Created) != 0 {
			t.Error("expected no create call")
		}
	})

	t.Run("Empty FLO Id Counts As Missing", func(t *testing.T) {
		broken := models.Playlist{Tracks: []models.Song{{Name: "x", ChannelIDs: map[string]string{"flo": ""}}}}
		_, err := NewPublisher(roadTripStore(), &tu.MockTokens{}, nil, nil, PublishOptions{}).GenerateURL(ctx, broken)
		if !errors.Is(err, shared.ErrMissingIdentifier) {
			t.Errorf("expected ErrMissingIdentifier, got %v", err)
		}
	})

	t.Run("Authentication Failure Propagates", func(t *testing.T) {
		store := roadTripStore()
		tokens := &tu.MockTokens{Err: fmt.Errorf("%w: invalid member", shared.ErrAuthentication)}

		_, err := NewPublisher(store, tokens, nil, nil, PublishOptions{}).GenerateURL(ctx, playlist)
		if !errors.Is(err, shared.ErrAuthentication) {
			t.Fatalf("expected ErrAuthentication, got %v", err)
		}
		if errors.Is(err, shared.ErrPublish) {
			t.Error("authentication failure should not be reported as a publish failure")
		}
		if len(store.Created) != 0 {
			t.Error("expected no create call")
		}
	})

	t.Run("Store Rejection", func(t *testing.T) {
		store := roadTripStore()
		store.CreateErr = &services.APIError{StatusCode: http.StatusBadRequest, Message: "invalid track"}

		_, err := NewPublisher(store, &tu.MockTokens{Token: "tok"}, nil, nil, PublishOptions{}).GenerateURL(ctx, playlist)
		if !errors.Is(err, shared.ErrPublish) {
			t.Fatalf("expected ErrPublish, got %v", err)
		}
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected API error cause, got %v", err)
		}
	})

	t.Run("Store Failure After Creation", func(t *testing.T) {
		var creates int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creates++
			fmt.Fprint(w, `{"code":"2000000","data":{"id":"pl-789"}}`)
		}))
		defer srv.Close()

		svc := services.NewFloService(services.FloOpts{APIURL: srv.URL, HTTPClient: srv.Client()})
		_, err := NewPublisher(svc, &tu.MockTokens{Token: "tok"}, nil, nil, PublishOptions{}).GenerateURL(ctx, playlist)
		if !errors.Is(err, shared.ErrPublish) {
			t.Fatalf("expected ErrPublish, got %v", err)
		}
		if creates != 1 {
			t.Errorf("expected the server-side create to have happened once, got %d", creates)
		}
	})

	t.Run("ReusePreGenerated", func(t *testing.T) {
		existing := playlist.Clone()
		existing.PreGenerated = map[string]string{"flo": shareURL}

		t.Run("enabled", func(t *testing.T) {
			store := roadTripStore()
			tokens := &tu.MockTokens{Token: "tok"}
			got, err := NewPublisher(store, tokens, nil, nil, PublishOptions{ReusePreGenerated: true}).GenerateURL(ctx, existing)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != shareURL {
				t.Errorf("expected %s, got %s", shareURL, got)
			}
			if tokens.Calls() != 0 || len(store.Created) != 0 {
				t.Error("expected no sign-in or create")
			}
		})

		t.Run("disabled", func(t *testing.T) {
			store := roadTripStore()
			got, err := NewPublisher(store, &tu.MockTokens{Token: "tok"}, nil, nil, PublishOptions{}).GenerateURL(ctx, existing)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == shareURL || len(store.Created) != 1 {
				t.Errorf("expected a new playlist, got %s", got)
			}
		})
	})
}

func TestAdaptor(t *testing.T) {
	ctx := context.Background()

	t.Run("Round Trip", func(t *testing.T) {
		store := roadTripStore()
		a := NewAdaptor(store, resolver.New(tu.NewMockSearcher()), &tu.MockTokens{Token: "tok"})

		pl, err := a.GetPlaylistContent(ctx, shareURL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		url, err := a.GenerateURL(ctx, pl)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		encoded := strings.TrimPrefix(url, PublicURLBase)
		id, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("expected %s to decode, got %v", encoded, err)
		}
		if id != 789 {
			t.Errorf("expected 789, got %d", id)
		}
		if ids := store.Created[0].TrackList; len(ids) != 3 || ids[2].TrackID != "13" {
			t.Errorf("expected source order to be preserved, got %+v", ids)
		}
	})

	t.Run("FindSongID", func(t *testing.T) {
		searcher := tu.NewMockSearcher().Track("The Beatles Yesterday", "123")
		a := NewAdaptor(tu.NewMockStore(), resolver.New(searcher), &tu.MockTokens{})

		id, ok, err := a.FindSongID(ctx, models.Song{Name: "Yesterday", Artist: "The Beatles"})
		if err != nil || !ok || id != "123" {
			t.Errorf("expected 123, got %q ok=%v err=%v", id, ok, err)
		}
	})

	t.Run("Metadata", func(t *testing.T) {
		a := NewAdaptor(tu.NewMockStore(), resolver.New(tu.NewMockSearcher()), &tu.MockTokens{})

		if d := a.Determinator(); len(d) != 1 || d[0] != "flo" {
			t.Errorf("expected [flo], got %v", d)
		}

		display := a.Display()
		if display.Name != "플로" || display.Color != "#3F3FFF" {
			t.Errorf("unexpected display: %s %s", display.Name, display.Color)
		}
		if !strings.HasPrefix(display.Logo, "<svg") || !strings.Contains(display.Logo, "</svg>") {
			t.Error("expected embedded SVG logo")
		}

		if !a.Matches("https://www.music-flo.com/detail/openplaylist/ohy") {
			t.Error("expected FLO URL to match")
		}
		if a.Matches("https://open.spotify.com/playlist/abc") {
			t.Error("expected Spotify URL not to match")
		}
	})

	t.Run("Live Client", func(t *testing.T) {
		var signIns int
		mux := http.NewServeMux()
		mux.HandleFunc("/s/road-trip", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/detail/openplaylist/ohy", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/detail/openplaylist/ohy", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html></html>")
		})
		mux.HandleFunc("/personal/v1/playlist/789", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":{"name":"Road Trip","chnlDesc":"","track":{"list":[
				{"id":11,"name":"Drive","representationArtist":{"name":"Incubus"}}
			]}}}`)
		})
		mux.HandleFunc("/auth/v3/sign/in", func(w http.ResponseWriter, r *http.Request) {
			signIns++
			fmt.Fprint(w, `{"data":{"accessToken":"live-token"}}`)
		})
		mux.HandleFunc("/personal/v2/myplaylist", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-gm-access-token") != "live-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var req services.CreatePlaylistRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			fmt.Fprint(w, `{"data":{"id":1234567890}}`)
		})
		mux.HandleFunc("/api/search/v2/search", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":{"list":[{"type":"TRACK","list":[{"id":11}]}]}}`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		svc := services.NewFloService(services.FloOpts{WebURL: srv.URL, APIURL: srv.URL, HTTPClient: srv.Client()})
		tokens := auth.NewTokenCache(svc, auth.Credentials{Username: "u", Password: "p"},
			auth.WithClock(auth.NewManualClock(time.Unix(0, 0))))
		a := NewAdaptor(svc, resolver.New(svc), tokens)

		pl, err := a.GetPlaylistContent(ctx, srv.URL+"/s/road-trip")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		id, ok, err := a.FindSongID(ctx, pl.Tracks[0])
		if err != nil || !ok || id != "11" {
			t.Fatalf("expected 11, got %q ok=%v err=%v", id, ok, err)
		}

		for range 2 {
			url, err := a.GenerateURL(ctx, pl)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if url != PublicURLBase+"anielzohyd" {
				t.Errorf("unexpected URL %s", url)
			}
		}
		if signIns != 1 {
			t.Errorf("expected one sign-in across publishes, got %d", signIns)
		}
	})
}
