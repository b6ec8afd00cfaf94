package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

func testRedisStore(t *testing.T) *RedisStore[*adventure.World, adventure.Action] {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := NewRedisStore[*adventure.World, adventure.Action]("redis://"+mr.Addr(), logger)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func storeTestInstance(name string) *sva.Instance[*adventure.World, adventure.Action] {
	w := adventure.NewWorld("Test World")
	w.AddRoom(adventure.Room{Name: "Clearing", Visited: true})
	_ = w.AddPlayer(adventure.Player{Name: "Silas"}, adventure.PlayerLocation{Room: "Clearing"})

	return &sva.Instance[*adventure.World, adventure.Action]{
		ID:           uuid.New(),
		Name:         name,
		Seed:         "test.yaml",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		InitialState: w.Clone(),
		State:        w,
		Turns:        []sva.Turn[*adventure.World, adventure.Action]{},
	}
}

func TestRedisStore_SaveLoad(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	inst := storeTestInstance("test")
	inst.Turns = append(inst.Turns, sva.Turn[*adventure.World, adventure.Action]{
		State:     inst.State.Clone(),
		Actions:   []adventure.Action{{Kind: adventure.Inspect, Actor: "Silas", Target: "Clearing"}},
		Narration: "You look around.",
		CreatedAt: time.Now().UTC(),
	})

	if err := store.Save(ctx, inst); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, inst.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for a saved instance")
	}
	if loaded.Name != "test" || loaded.Seed != "test.yaml" {
		t.Errorf("Round trip lost metadata: %+v", loaded.Meta())
	}
	if len(loaded.Turns) != 1 || loaded.Turns[0].Narration != "You look around." {
		t.Errorf("Round trip lost turns: %+v", loaded.Turns)
	}
	if _, ok := loaded.State.Players["Silas"]; !ok {
		t.Error("Round trip lost world state")
	}
}

func TestRedisStore_Load_NotFound(t *testing.T) {
	store := testRedisStore(t)

	loaded, err := store.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Load of unknown ID should not error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for unknown instance")
	}
}

func TestRedisStore_List(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	older := storeTestInstance("older")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := storeTestInstance("newer")

	if err := store.Save(ctx, older); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, newer); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("Expected 2 instances, got %d", len(metas))
	}
	if metas[0].Name != "newer" || metas[1].Name != "older" {
		t.Errorf("Expected newest-first ordering, got %v", metas)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	inst := storeTestInstance("test")
	if err := store.Save(ctx, inst); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, inst.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	loaded, err := store.Load(ctx, inst.ID)
	if err != nil || loaded != nil {
		t.Errorf("Instance still loadable after delete: %v %v", loaded, err)
	}
	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("Instance still listed after delete: %v", metas)
	}
}
