package git

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/masmgr/codetracker-go/internal/model"
)

func TestMemoryStore_Chain(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c0 := model.Version{ID: "c0", Time: base}
	c1 := model.Version{ID: "c1", Time: base.Add(time.Hour)}
	c2 := model.Version{ID: "c2", Time: base.Add(2 * time.Hour)}

	store := Chain(c0, c1, c2)
	ctx := context.Background()

	if store.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", store.Len())
	}

	t.Run("walks to root", func(t *testing.T) {
		p, ok, err := store.Parent(ctx, c2)
		if err != nil || !ok || p != c1 {
			t.Fatalf("Parent(c2) = (%v, %v, %v), expected c1", p, ok, err)
		}
		p, ok, err = store.Parent(ctx, c1)
		if err != nil || !ok || p != c0 {
			t.Fatalf("Parent(c1) = (%v, %v, %v), expected c0", p, ok, err)
		}
		if _, ok, err := store.Parent(ctx, c0); err != nil || ok {
			t.Fatalf("Parent(c0) = (_, %v, %v), expected no parent", ok, err)
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		_, _, err := store.Parent(ctx, model.Version{ID: "nope"})
		if !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("expected ErrUnknownVersion, got %v", err)
		}
		if _, err := store.Time(ctx, "nope"); !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("expected ErrUnknownVersion, got %v", err)
		}
	})

	t.Run("time", func(t *testing.T) {
		when, err := store.Time(ctx, "c1")
		if err != nil {
			t.Fatalf("Time: %v", err)
		}
		if !when.Equal(c1.Time) {
			t.Errorf("Time(c1) = %v, expected %v", when, c1.Time)
		}
	})
}

func TestMemoryStore_MissingParentEndsAncestry(t *testing.T) {
	store := NewMemoryStore([]Commit{
		{Version: model.Version{ID: "c5"}, Parents: []string{"c4"}},
	})

	_, ok, err := store.Parent(context.Background(), model.Version{ID: "c5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected no parent for a commit whose parent is not recorded")
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := Chain(model.Version{ID: "c0"}, model.Version{ID: "c1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := store.Parent(ctx, model.Version{ID: "c1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
