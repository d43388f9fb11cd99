package storage

import (
	"context"
	"testing"

	"gallerykit/internal/models"
)

func insertTestImage(t *testing.T, store *MemoryStore, ownerType, ownerID string) *models.Image {
	t.Helper()

	img := &models.Image{OwnerType: ownerType, OwnerID: ownerID}
	if err := store.Insert(context.Background(), img); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	return img
}

func TestInsertAssignsIDAndRank(t *testing.T) {
	store := NewMemoryStore()

	first := insertTestImage(t, store, "post", "42")
	second := insertTestImage(t, store, "post", "42")

	if first.ID == 0 || second.ID == 0 {
		t.Fatal("Insert() assigned no id")
	}
	if first.ID == second.ID {
		t.Errorf("duplicate id assigned: %d", first.ID)
	}
	if first.Rank != first.ID || second.Rank != second.ID {
		t.Errorf("ranks = %d, %d, want the rows' own ids %d, %d", first.Rank, second.Rank, first.ID, second.ID)
	}
}

func TestListScopedAndOrdered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := insertTestImage(t, store, "post", "42")
	b := insertTestImage(t, store, "post", "42")
	insertTestImage(t, store, "post", "43")
	insertTestImage(t, store, "page", "42")

	// Move the first image behind the second.
	if err := store.UpdateRank(ctx, a.ID, 100); err != nil {
		t.Fatalf("UpdateRank() failed: %v", err)
	}

	images, err := store.List(ctx, "post", "42", SortAsc)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("List() returned %d rows, want 2 scoped to the owner", len(images))
	}
	if images[0].ID != b.ID || images[1].ID != a.ID {
		t.Errorf("List() order = [%d, %d], want rank order [%d, %d]", images[0].ID, images[1].ID, b.ID, a.ID)
	}

	desc, err := store.List(ctx, "post", "42", SortDesc)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if desc[0].ID != a.ID {
		t.Errorf("List(desc) first = %d, want %d", desc[0].ID, a.ID)
	}
}

func TestListByIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := insertTestImage(t, store, "post", "42")
	insertTestImage(t, store, "post", "42")
	c := insertTestImage(t, store, "post", "42")

	images, err := store.ListByIDs(ctx, "post", "42", []int64{a.ID, c.ID, 999}, SortAsc)
	if err != nil {
		t.Fatalf("ListByIDs() failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("ListByIDs() returned %d rows, want 2", len(images))
	}
	if images[0].ID != a.ID || images[1].ID != c.ID {
		t.Errorf("ListByIDs() = [%d, %d], want [%d, %d]", images[0].ID, images[1].ID, a.ID, c.ID)
	}
}

func TestUpdateFieldsPartial(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	img := insertTestImage(t, store, "post", "42")

	name := "sunset"
	if err := store.UpdateFields(ctx, img.ID, models.ImageFields{Name: &name}); err != nil {
		t.Fatalf("UpdateFields() failed: %v", err)
	}

	rows, err := store.List(ctx, "post", "42", SortAsc)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if rows[0].Name != name {
		t.Errorf("name = %q, want %q", rows[0].Name, name)
	}
	if rows[0].Description != "" {
		t.Errorf("description = %q, want untouched", rows[0].Description)
	}

	// An empty field set issues no update at all.
	if err := store.UpdateFields(ctx, img.ID, models.ImageFields{}); err != nil {
		t.Fatalf("UpdateFields(empty) failed: %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	img := insertTestImage(t, store, "post", "42")

	if err := store.Delete(ctx, img.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	// Deleting an already-deleted row is not an error.
	if err := store.Delete(ctx, img.ID); err != nil {
		t.Fatalf("Delete() of missing row failed: %v", err)
	}

	images, err := store.List(ctx, "post", "42", SortAsc)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("List() returned %d rows after delete, want 0", len(images))
	}
}
