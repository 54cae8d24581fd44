package store

import (
	"testing"
	"time"
)

func TestNoteCRUD(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	note, err := ns.Create("Groceries", "Ask about oat milk", now)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := ns.GetByID(note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got == nil {
		t.Fatal("expected note, got nil")
	}
	if got.Title != "Groceries" || got.Content != "Ask about oat milk" {
		t.Errorf("note = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, now)
	}

	later := now.Add(time.Hour)
	updated, err := ns.Update(note.ID, "Groceries", "Oat milk and honey", later)
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Content != "Oat milk and honey" {
		t.Errorf("content = %q", updated.Content)
	}
	if !updated.LastModified.Equal(later) {
		t.Errorf("last_modified = %v, want %v", updated.LastModified, later)
	}
	if !updated.CreatedAt.Equal(now) {
		t.Errorf("created_at changed to %v", updated.CreatedAt)
	}

	deleted, err := ns.Delete(note.ID)
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v; want true, nil", deleted, err)
	}
	if got, _ := ns.GetByID(note.ID); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestNoteUpdateMissing(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))

	got, err := ns.Update("missing", "t", "c", time.Now())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestNoteListOrderedByLastModified(t *testing.T) {
	ns := NewNoteStore(setupTestDB(t))
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	first, _ := ns.Create("first", "", base)
	ns.Create("second", "", base.Add(time.Minute))
	ns.Update(first.ID, "first", "edited", base.Add(time.Hour))

	notes, err := ns.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	if notes[0].Title != "first" {
		t.Errorf("notes[0] = %q, want first (most recently modified)", notes[0].Title)
	}

	count, _ := ns.Count()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
