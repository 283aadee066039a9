package runtime

import (
	"bytes"
	"errors"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	rt := NewForTest()

	rt.Store.DefineClass("Account", "Object", nil, []string{"balance"})
	id, _ := rt.Store.Create("Account", map[string]Value{
		"balance": FloatValue(0.5),
		"tags":    ListValue(TextValue("savings"), IntValue(7)),
	})

	data, err := rt.Store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	other := NewForTest()
	if err := other.Store.RestoreSnapshot(data); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}

	v, err := other.Store.Get(id, "balance")
	if err != nil {
		t.Fatalf("Get after restore: %v", err)
	}
	if v.Wire() != "float/0.5" {
		t.Errorf("balance = %q after restore", v.Wire())
	}
	tags, _ := other.Store.Get(id, "tags")
	if len(tags.ListVal) != 2 || tags.ListVal[0].TextVal != "savings" {
		t.Errorf("tags = %v after restore", tags)
	}

	// The class row travels too: methods resolve in the restored store.
	if _, err := other.Store.Resolve("Account", "printString"); err != nil {
		t.Errorf("restored class chain broken: %v", err)
	}
}

// Equal stores snapshot to identical bytes.
func TestSnapshotIsDeterministic(t *testing.T) {
	build := func() *Runtime {
		rt := NewForTest()
		rt.Store.DefineClass("Pixel", "Point", nil, nil)
		return rt
	}
	a, _ := build().Store.Snapshot()
	b, _ := build().Store.Snapshot()
	if len(a) == 0 {
		t.Fatal("empty snapshot")
	}
	if !bytes.Equal(a, b) {
		t.Error("snapshots of equal stores differ")
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	rt := NewForTest()
	if err := rt.Store.RestoreSnapshot([]byte("not cbor at all")); err == nil {
		t.Error("garbage snapshot accepted")
	}
}

// Restoring replaces same-id entities wholesale.
func TestRestoreReplacesExisting(t *testing.T) {
	rt := NewForTest()
	rt.Store.DefineClass("Counter", "Object", nil, nil)
	id, _ := rt.Store.Create("Counter", map[string]Value{"n": IntValue(1)})

	data, err := rt.Store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if err := rt.Store.Set(id, "n", IntValue(99)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := rt.Store.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := rt.Store.Get(id, "n"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted, got %v", err)
	}

	if err := rt.Store.RestoreSnapshot(data); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	v, err := rt.Store.Get(id, "n")
	if err != nil || v.IntVal != 1 {
		t.Errorf("restored n = %v (%v), want int/1", v, err)
	}
}
