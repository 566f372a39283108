package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/flox/internal/shared"
)

type fakeAuthenticator struct {
	mu        sync.Mutex
	calls     int
	deviceIDs []string
	err       error
}

func (f *fakeAuthenticator) SignIn(ctx context.Context, username, password, deviceID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.deviceIDs = append(f.deviceIDs, deviceID)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d", f.calls), nil
}

func (f *fakeAuthenticator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCache(a Authenticator, clock Clock) *TokenCache {
	return NewTokenCache(a, Credentials{Username: "listener", Password: "secret"},
		WithClock(clock),
		WithDeviceID(func() string { return "device" }),
	)
}

func TestTokenCache(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("Memoization", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		clock := NewManualClock(start)
		cache := newTestCache(fa, clock)

		first, err := cache.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		clock.Advance(6 * 24 * time.Hour)
		second, err := cache.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if fa.Calls() != 1 {
			t.Errorf("expected 1 sign-in, got %d", fa.Calls())
		}
		if first.AccessToken != second.AccessToken {
			t.Errorf("expected same token, got %s and %s", first.AccessToken, second.AccessToken)
		}
		if first.TokenType != TokenType {
			t.Errorf("expected token type %s, got %s", TokenType, first.TokenType)
		}
		if !first.Expiry.Equal(start.Add(TokenTTL)) {
			t.Errorf("expected expiry %v, got %v", start.Add(TokenTTL), first.Expiry)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		clock := NewManualClock(start)
		cache := newTestCache(fa, clock)

		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		clock.Advance(TokenTTL + time.Second)
		if cache.Valid() {
			t.Fatal("expected cache to be empty after TTL")
		}

		tok, err := cache.Token(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fa.Calls() != 2 {
			t.Errorf("expected 2 sign-ins, got %d", fa.Calls())
		}
		if tok.AccessToken != "token-2" {
			t.Errorf("expected fresh token, got %s", tok.AccessToken)
		}
	})

	t.Run("Expiry Fires Without Reads", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		clock := NewManualClock(start)
		cache := newTestCache(fa, clock)

		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if clock.Pending() != 1 {
			t.Fatalf("expected one armed timer, got %d", clock.Pending())
		}

		clock.Advance(TokenTTL)
		if cache.Valid() {
			t.Error("expected token to be dropped exactly at TTL")
		}
		if clock.Pending() != 0 {
			t.Errorf("expected no armed timers, got %d", clock.Pending())
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		clock := NewManualClock(start)
		cache := newTestCache(fa, clock)

		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		cache.Invalidate()

		if cache.Valid() {
			t.Error("expected cache to be empty")
		}
		if clock.Pending() != 0 {
			t.Errorf("expected expiry timer to be cancelled, got %d pending", clock.Pending())
		}

		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fa.Calls() != 2 {
			t.Errorf("expected 2 sign-ins, got %d", fa.Calls())
		}
	})

	t.Run("Stale Timer Keeps Newer Token", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		clock := NewManualClock(start)
		cache := newTestCache(fa, clock)

		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		clock.Advance(TokenTTL / 2)
		cache.Invalidate()
		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		clock.Advance(TokenTTL/2 + time.Minute)
		if !cache.Valid() {
			t.Error("expected second token to outlive the first token's deadline")
		}
	})

	t.Run("Authentication Failure", func(t *testing.T) {
		fa := &fakeAuthenticator{err: errors.New("bad password")}
		clock := NewManualClock(start)
		cache := newTestCache(fa, clock)

		_, err := cache.Token(ctx)
		if !errors.Is(err, shared.ErrAuthentication) {
			t.Fatalf("expected ErrAuthentication, got %v", err)
		}
		if cache.Valid() {
			t.Error("expected cache to stay empty")
		}
		if clock.Pending() != 0 {
			t.Error("expected no expiry to be armed")
		}

		t.Run("already classified errors pass through", func(t *testing.T) {
			wrapped := fmt.Errorf("%w: status 401", shared.ErrAuthentication)
			cache := newTestCache(&fakeAuthenticator{err: wrapped}, clock)
			if _, err := cache.Token(ctx); err != wrapped {
				t.Errorf("expected error to be returned unchanged, got %v", err)
			}
		})
	})

	t.Run("Empty Token", func(t *testing.T) {
		cache := newTestCache(authFunc(func() (string, error) { return "", nil }), NewManualClock(start))
		if _, err := cache.Token(ctx); !errors.Is(err, shared.ErrAuthentication) {
			t.Errorf("expected ErrAuthentication, got %v", err)
		}
	})

	t.Run("GetToken", func(t *testing.T) {
		cache := newTestCache(&fakeAuthenticator{}, NewManualClock(start))
		got, err := cache.GetToken(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "token-1" {
			t.Errorf("expected token-1, got %s", got)
		}
	})

	t.Run("Passes Credentials And Device ID", func(t *testing.T) {
		var gotUser, gotPass, gotDevice string
		a := authFunc(func() (string, error) { return "t", nil })
		cache := NewTokenCache(recordingAuth{a, &gotUser, &gotPass, &gotDevice}, Credentials{Username: "u", Password: "p"},
			WithClock(NewManualClock(start)),
			WithDeviceID(func() string { return "abc" }),
		)
		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotUser != "u" || gotPass != "p" || gotDevice != "abc" {
			t.Errorf("unexpected sign-in args: %q %q %q", gotUser, gotPass, gotDevice)
		}
	})

	t.Run("Concurrent Callers", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		cache := newTestCache(fa, NewManualClock(start))

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := cache.Token(ctx); err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			}()
		}
		wg.Wait()

		if !cache.Valid() {
			t.Error("expected a token to be cached")
		}
		if fa.Calls() < 1 || fa.Calls() > 8 {
			t.Errorf("expected between 1 and 8 sign-ins, got %d", fa.Calls())
		}
	})

	t.Run("TokenSource", func(t *testing.T) {
		fa := &fakeAuthenticator{}
		cache := newTestCache(fa, NewManualClock(start))
		src := cache.TokenSource(ctx)

		for range 3 {
			tok, err := src.Token()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tok.AccessToken != "token-1" {
				t.Errorf("expected token-1, got %s", tok.AccessToken)
			}
		}
		if fa.Calls() != 1 {
			t.Errorf("expected 1 sign-in through token source, got %d", fa.Calls())
		}
	})

	t.Run("WithTTL", func(t *testing.T) {
		clock := NewManualClock(start)
		cache := NewTokenCache(&fakeAuthenticator{}, Credentials{}, WithClock(clock), WithTTL(time.Hour))
		if _, err := cache.Token(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		clock.Advance(time.Hour)
		if cache.Valid() {
			t.Error("expected custom TTL to apply")
		}
	})
}

type authFunc func() (string, error)

func (f authFunc) SignIn(ctx context.Context, username, password, deviceID string) (string, error) {
	return f()
}

type recordingAuth struct {
	next                     Authenticator
	user, password, deviceID *string
}

func (r recordingAuth) SignIn(ctx context.Context, username, password, deviceID string) (string, error) {
	*r.user, *r.password, *r.deviceID = username, password, deviceID
	return r.next.SignIn(ctx, username, password, deviceID)
}

func TestDeviceID(t *testing.T) {
	t.Run("Length", func(t *testing.T) {
		for range 50 {
			if id := NewDeviceID(); len(id) == 0 || len(id) > 16 {
				t.Errorf("unexpected device ID length %d: %q", len(id), id)
			}
		}
	})

	t.Run("Deterministic Inputs", func(t *testing.T) {
		now := time.UnixMilli(1700000000000)
		a := deviceIDFrom(now, 0.5, 0.25)
		b := deviceIDFrom(now, 0.5, 0.25)
		if a != b {
			t.Errorf("expected same output for same inputs, got %q and %q", a, b)
		}
		if len(a) == 0 || len(a) > 16 {
			t.Errorf("expected 1 to 16 characters, got %d (%q)", len(a), a)
		}
	})

	t.Run("Zero Draws", func(t *testing.T) {
		if id := deviceIDFrom(time.UnixMilli(1), 0, 0); id == "" {
			t.Error("expected a printable identifier")
		}
	})
}

func TestManualClock(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var order []string

	clock.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(time.Second, func() { order = append(order, "a") })
	stopped := clock.AfterFunc(time.Second, func() { order = append(order, "x") })

	if !stopped.Stop() {
		t.Error("expected first Stop to succeed")
	}
	if stopped.Stop() {
		t.Error("expected second Stop to report false")
	}

	clock.Advance(3 * time.Second)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("unexpected firing order: %v", order)
	}
	if !clock.Now().Equal(time.Unix(3, 0)) {
		t.Errorf("unexpected time: %v", clock.Now())
	}
}
