package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/clock"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("get returns not found for unknown identity", func(t *testing.T) {
		store := NewStore(clock.NewFixed(start))

		_, err := store.GetChallenge(ctx, "a@x.com")
		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("put then get round trips", func(t *testing.T) {
		store := NewStore(clock.NewFixed(start))

		chal := entity.OTPChallenge{
			ID:        1,
			Identity:  "a@x.com",
			CodeHash:  "hash",
			CreatedAt: start,
			ExpiresAt: start.Add(10 * time.Minute),
		}
		if err := store.PutChallenge(ctx, chal); err != nil {
			t.Fatalf("put challenge: %v", err)
		}

		got, err := store.GetChallenge(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("get challenge: %v", err)
		}
		if *got != chal {
			t.Fatalf("expected %+v, got %+v", chal, *got)
		}
	})

	t.Run("put overwrites a previous challenge", func(t *testing.T) {
		store := NewStore(clock.NewFixed(start))

		base := entity.OTPChallenge{ID: 1, Identity: "a@x.com", CodeHash: "old", Attempts: 2}
		if err := store.PutChallenge(ctx, base); err != nil {
			t.Fatalf("put challenge: %v", err)
		}

		base.ID = 2
		base.CodeHash = "new"
		base.Attempts = 0
		if err := store.PutChallenge(ctx, base); err != nil {
			t.Fatalf("overwrite challenge: %v", err)
		}

		got, err := store.GetChallenge(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("get challenge: %v", err)
		}
		if got.CodeHash != "new" || got.Attempts != 0 {
			t.Fatalf("expected fresh challenge, got %+v", got)
		}
	})

	t.Run("increment attempts is atomic under contention", func(t *testing.T) {
		store := NewStore(clock.NewFixed(start))

		if err := store.PutChallenge(ctx, entity.OTPChallenge{ID: 1, Identity: "a@x.com"}); err != nil {
			t.Fatalf("put challenge: %v", err)
		}

		const workers = 16
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.IncrementAttempts(ctx, "a@x.com"); err != nil {
					t.Errorf("increment attempts: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := store.GetChallenge(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("get challenge: %v", err)
		}
		if got.Attempts != workers {
			t.Fatalf("expected %d attempts, got %d", workers, got.Attempts)
		}
	})

	t.Run("increment attempts requires an existing challenge", func(t *testing.T) {
		store := NewStore(clock.NewFixed(start))

		if _, err := store.IncrementAttempts(ctx, "a@x.com"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete expired removes only stale challenges", func(t *testing.T) {
		clk := clock.NewFixed(start)
		store := NewStore(clk)

		challenges := []entity.OTPChallenge{
			{ID: 1, Identity: "stale@x.com", ExpiresAt: start.Add(5 * time.Minute)},
			{ID: 2, Identity: "live@x.com", ExpiresAt: start.Add(30 * time.Minute)},
		}
		for _, chal := range challenges {
			if err := store.PutChallenge(ctx, chal); err != nil {
				t.Fatalf("put challenge: %v", err)
			}
		}

		clk.Advance(10 * time.Minute)

		deleted, err := store.DeleteExpired(ctx)
		if err != nil {
			t.Fatalf("delete expired: %v", err)
		}
		if deleted != 1 {
			t.Fatalf("expected 1 deleted, got %d", deleted)
		}

		if _, err := store.GetChallenge(ctx, "stale@x.com"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected stale challenge gone, got %v", err)
		}
		if _, err := store.GetChallenge(ctx, "live@x.com"); err != nil {
			t.Fatalf("expected live challenge kept, got %v", err)
		}
	})
}
