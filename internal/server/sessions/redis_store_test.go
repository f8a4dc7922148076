package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, validity time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, validity), mr
}

func TestStartAndGetUserID(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	sessionID, err := store.Start(ctx, "u-1")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if len(sessionID) != 2*sessionIDBytes {
		t.Fatalf("unexpected session id length: %d", len(sessionID))
	}

	userID, err := store.GetUserID(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetUserID error: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("want u-1, got %q", userID)
	}
}

func TestGetUserID_UnknownSession(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.GetUserID(context.Background(), "no-such-session")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetUserID_ExpiredSession(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	sessionID, err := store.Start(ctx, "u-1")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err = store.GetUserID(ctx, sessionID)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound after expiry, got %v", err)
	}
}

func TestEnd(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	sessionID, err := store.Start(ctx, "u-1")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	if err := store.End(ctx, sessionID); err != nil {
		t.Fatalf("End error: %v", err)
	}

	_, err = store.GetUserID(ctx, sessionID)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("session should be gone, got %v", err)
	}

	// ending twice is fine
	if err := store.End(ctx, sessionID); err != nil {
		t.Fatalf("second End error: %v", err)
	}
}

func TestStart_DistinctIDs(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	s1, err := store.Start(ctx, "u-1")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	s2, err := store.Start(ctx, "u-1")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("two sessions must not share an id")
	}
}
