package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore[*adventure.World, adventure.Action]()
	ctx := context.Background()

	inst := storeTestInstance("test")
	if err := store.Save(ctx, inst); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, inst.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil || loaded.Name != "test" {
		t.Fatalf("Unexpected loaded instance %+v", loaded)
	}

	// The store holds serialized records; mutating a loaded copy must not
	// affect what a later Load sees.
	loaded.Name = "mutated"
	again, err := store.Load(ctx, inst.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again.Name != "test" {
		t.Error("Mutating a loaded instance changed the stored record")
	}
}

func TestMemoryStore_Load_NotFound(t *testing.T) {
	store := NewMemoryStore[*adventure.World, adventure.Action]()

	loaded, err := store.Load(context.Background(), uuid.New())
	if err != nil || loaded != nil {
		t.Errorf("Expected nil, nil for unknown ID, got %v, %v", loaded, err)
	}
}

func TestMemoryStore_ListDelete(t *testing.T) {
	store := NewMemoryStore[*adventure.World, adventure.Action]()
	ctx := context.Background()

	older := storeTestInstance("older")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := storeTestInstance("newer")
	for _, inst := range []*sva.Instance[*adventure.World, adventure.Action]{older, newer} {
		if err := store.Save(ctx, inst); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 || metas[0].Name != "newer" {
		t.Errorf("Expected newest-first listing, got %v", metas)
	}

	if err := store.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	metas, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 || metas[0].Name != "newer" {
		t.Errorf("Unexpected listing after delete: %v", metas)
	}
}

func TestMemoryStore_FailureInjection(t *testing.T) {
	store := NewMemoryStore[*adventure.World, adventure.Action]()
	store.SaveErr = errors.New("save failed")

	if err := store.Save(context.Background(), storeTestInstance("test")); err == nil {
		t.Error("Expected injected save error")
	}

	store.SaveErr = nil
	store.LoadErr = errors.New("load failed")
	if _, err := store.Load(context.Background(), uuid.New()); err == nil {
		t.Error("Expected injected load error")
	}
}
