package server

import (
	"context"
	"testing"

	"github.com/playperu/treasurehunt/internal/huntstore"
	"github.com/playperu/treasurehunt/internal/seed"
)

func TestSeedHuntsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := huntstore.NewMemoryStore(huntstore.Options{})

	hunts := append(seed.Default(), seed.Hunt{ID: "second", QRCodes: map[string]int{"B1": 3}})
	for i := 0; i < 2; i++ {
		if err := SeedHunts(ctx, discardLogger(), store, hunts); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	list, err := store.ListHunts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 hunts, got %d", len(list))
	}
	for _, h := range list {
		if h.Version != 1 {
			t.Errorf("expected %s untouched at version 1, got %d", h.ID, h.Version)
		}
	}
}

func TestSeedHuntsRejectsInvalid(t *testing.T) {
	store := huntstore.NewMemoryStore(huntstore.Options{})
	err := SeedHunts(context.Background(), discardLogger(), store, []seed.Hunt{{ID: "bad"}})
	if err == nil {
		t.Fatal("expected error for hunt without qr codes")
	}
}
