// Package storetest holds the behaviour every core.DrawingStore backend must
// share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"emojiart-server/core"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// Run exercises a store created fresh by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) core.DrawingStore) {
	t.Run("CreateAndFind", func(t *testing.T) { testCreateAndFind(t, newStore(t)) })
	t.Run("CreateNilDocument", func(t *testing.T) { testCreateNilDocument(t, newStore(t)) })
	t.Run("FindNotFound", func(t *testing.T) { testFindNotFound(t, newStore(t)) })
	t.Run("SavePreservesCreatedAt", func(t *testing.T) { testSave(t, newStore(t)) })
	t.Run("SaveNotFound", func(t *testing.T) { testSaveNotFound(t, newStore(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("ConcurrentCreate", func(t *testing.T) { testConcurrentCreate(t, newStore(t)) })
}

func sampleDrawing(name string) *core.Drawing {
	doc := core.NewDocument()
	doc.AddEmoji("😀", 0, 0, 40)
	doc.AddEmoji("🚀", 10, 10, 40)
	doc.SelectEmoji(1)
	doc.SetBackground(core.URLBackground("https://example.com/bg.png"))
	return &core.Drawing{Name: name, Document: doc}
}

func testCreateAndFind(t *testing.T, store core.DrawingStore) {
	ctx := context.Background()

	id, err := store.Create(ctx, sampleDrawing("first"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("Create() returned invalid ID length: got %d, want 26", len(id))
	}

	found, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if found.ID != id || found.Name != "first" {
		t.Errorf("FindID() metadata mismatch: got %q/%q", found.ID, found.Name)
	}
	if found.CreatedAt.IsZero() || found.UpdatedAt.IsZero() {
		t.Error("FindID() returned zero timestamps")
	}

	emojis := found.Document.Emojis()
	if len(emojis) != 2 {
		t.Fatalf("Emoji count mismatch: got %d, want 2", len(emojis))
	}
	if !emojis[0].IsSelected || emojis[1].X != 10 {
		t.Errorf("Emoji state not persisted: %+v", emojis)
	}
	if found.Document.Background().URL() != "https://example.com/bg.png" {
		t.Errorf("Background not persisted: %+v", found.Document.Background())
	}
	if next := found.Document.AddEmoji("🎉", 0, 0, 40); next != 3 {
		t.Errorf("Id counter not persisted: next id %d, want 3", next)
	}
}

func testCreateNilDocument(t *testing.T, store core.DrawingStore) {
	ctx := context.Background()

	id, err := store.Create(ctx, &core.Drawing{Name: "empty"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	found, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if found.Document == nil {
		t.Fatal("FindID() returned nil document")
	}
	if len(found.Document.Emojis()) != 0 {
		t.Errorf("Expected empty document, got %d emojis", len(found.Document.Emojis()))
	}
}

func testFindNotFound(t *testing.T, store core.DrawingStore) {
	_, err := store.FindID(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	if !errors.Is(err, core.ErrDrawingNotFound) {
		t.Errorf("FindID() error = %v, want ErrDrawingNotFound", err)
	}
}

func testSave(t *testing.T, store core.DrawingStore) {
	ctx := context.Background()

	d := sampleDrawing("before")
	id, err := store.Create(ctx, d)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	created, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}

	created.Name = "after"
	created.Document.DeleteEmoji(2)
	if err := store.Save(ctx, created); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	saved, err := store.FindID(ctx, id)
	if err != nil {
		t.Fatalf("FindID() failed: %v", err)
	}
	if saved.Name != "after" {
		t.Errorf("Name mismatch: got %q, want %q", saved.Name, "after")
	}
	if len(saved.Document.Emojis()) != 1 {
		t.Errorf("Emoji count mismatch: got %d, want 1", len(saved.Document.Emojis()))
	}
	if !saved.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", created.CreatedAt, saved.CreatedAt)
	}
	if saved.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", created.UpdatedAt, saved.UpdatedAt)
	}
}

func testSaveNotFound(t *testing.T, store core.DrawingStore) {
	d := sampleDrawing("ghost")
	d.ID = "01HZZZZZZZZZZZZZZZZZZZZZZZ"

	err := store.Save(context.Background(), d)
	if !errors.Is(err, core.ErrDrawingNotFound) {
		t.Errorf("Save() error = %v, want ErrDrawingNotFound", err)
	}
}

func testList(t *testing.T, store core.DrawingStore) {
	ctx := context.Background()

	empty, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty list, got %d", len(empty))
	}

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, err := store.Create(ctx, sampleDrawing(fmt.Sprintf("drawing-%d", i)))
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		ids[id] = true
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("List() length mismatch: got %d, want 3", len(list))
	}
	for _, d := range list {
		if !ids[d.ID] {
			t.Errorf("List() returned unknown id %q", d.ID)
		}
		if d.Document != nil {
			t.Errorf("List() should not include documents, got one for %q", d.ID)
		}
	}
}

func testDelete(t *testing.T, store core.DrawingStore) {
	ctx := context.Background()

	id, err := store.Create(ctx, sampleDrawing("doomed"))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.FindID(ctx, id); !errors.Is(err, core.ErrDrawingNotFound) {
		t.Errorf("FindID() after delete error = %v, want ErrDrawingNotFound", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, core.ErrDrawingNotFound) {
		t.Errorf("second Delete() error = %v, want ErrDrawingNotFound", err)
	}
}

func testConcurrentCreate(t *testing.T, store core.DrawingStore) {
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	idCh := make(chan string, n)
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.Create(ctx, sampleDrawing(fmt.Sprintf("concurrent-%d", i)))
			if err != nil {
				errCh <- err
				return
			}
			idCh <- id
		}(i)
	}
	wg.Wait()
	close(idCh)
	close(errCh)

	for err := range errCh {
		t.Errorf("Concurrent Create() failed: %v", err)
	}

	seen := make(map[string]bool)
	for id := range idCh {
		if seen[id] {
			t.Errorf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("Expected %d unique IDs, got %d", n, len(seen))
	}
}
