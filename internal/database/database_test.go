package database

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetMissingKeyLeavesDefault(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	items := []string{"default"}
	ok, err := store.Get(ctx, "users", &items)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected missing key to report absent")
	}
	if len(items) != 1 || items[0] != "default" {
		t.Fatalf("expected caller default untouched, got %v", items)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "users", []string{"a", "b"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var items []string
	ok, err := store.Get(ctx, "users", &items)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be present")
	}
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Fatalf("unexpected value: %v", items)
	}
}

func TestSetOverwritesLastWriterWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "k", 2); err != nil {
		t.Fatalf("set again: %v", err)
	}

	var v int
	if _, err := store.Get(ctx, "k", &v); err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected last write to win, got %d", v)
	}
}

func TestMalformedValueTreatedAsAbsent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// A stored scalar that cannot decode into the caller's slice shape.
	if err := store.Set(ctx, "users", "not-a-list"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var items []string
	ok, err := store.Get(ctx, "users", &items)
	if err != nil {
		t.Fatalf("get should not fail on malformed value: %v", err)
	}
	if ok {
		t.Fatal("malformed value should report absent")
	}
	if items != nil {
		t.Fatalf("caller default should stand, got %v", items)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "authUser", "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(ctx, "authUser"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "authUser"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}

	var v string
	ok, err := store.Get(ctx, "authUser", &v)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected key to be gone")
	}
}
