package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConsumeUpToLimit(t *testing.T) {
	svc := NewService(2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := svc.CanConsume(ctx, "u1", 1)
		if err != nil || !ok {
			t.Fatalf("CanConsume %d: ok=%v err=%v", i, ok, err)
		}
		if _, err := svc.Consume(ctx, "u1", 1); err != nil {
			t.Fatalf("Consume %d: %v", i, err)
		}
	}

	ok, u, err := svc.CanConsume(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("CanConsume after limit: %v", err)
	}
	if ok {
		t.Fatalf("expected limit reached, usage %+v", u)
	}
	if _, err := svc.Consume(ctx, "u1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestWindowExpiryResets(t *testing.T) {
	store := newMemoryStore(1, time.Millisecond)
	svc := NewPostgresService(store)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	ok, u, err := svc.CanConsume(ctx, "u1", 1)
	if err != nil || !ok {
		t.Fatalf("expected fresh window, ok=%v usage=%+v err=%v", ok, u, err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used reset to 0, got %d", u.Used)
	}
}

func TestResetClearsUsage(t *testing.T) {
	svc := NewService(5, time.Hour)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 3); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Reset(ctx, "u1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0 after reset, got %d", u.Used)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	svc := NewService(1, time.Hour)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume u1: %v", err)
	}
	ok, _, err := svc.CanConsume(ctx, "u2", 1)
	if err != nil || !ok {
		t.Fatalf("u2 must have its own quota, ok=%v err=%v", ok, err)
	}
}
