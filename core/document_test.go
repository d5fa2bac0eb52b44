package core

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument()

	if doc.Background().Kind() != BackgroundBlank {
		t.Errorf("Background kind mismatch: got %q, want %q", doc.Background().Kind(), BackgroundBlank)
	}
	if len(doc.Emojis()) != 0 {
		t.Errorf("Expected no emojis, got %d", len(doc.Emojis()))
	}
}

func TestAddEmoji_AssignsIncreasingIDs(t *testing.T) {
	doc := NewDocument()

	var prev int
	for i := 0; i < 50; i++ {
		id := doc.AddEmoji("😀", i, -i, 40)
		if id <= prev {
			t.Fatalf("AddEmoji() id %d not greater than previous %d", id, prev)
		}
		prev = id
	}

	seen := make(map[int]bool)
	for _, e := range doc.Emojis() {
		if seen[e.ID] {
			t.Fatalf("Duplicate emoji id %d", e.ID)
		}
		seen[e.ID] = true
		if e.IsSelected {
			t.Errorf("Emoji %d should start unselected", e.ID)
		}
	}
}

func TestAddEmoji_IDsNotReusedAfterDelete(t *testing.T) {
	doc := NewDocument()

	first := doc.AddEmoji("😀", 0, 0, 40)
	doc.DeleteEmoji(first)
	second := doc.AddEmoji("🚀", 0, 0, 40)

	if second == first {
		t.Errorf("AddEmoji() reused id %d after delete", first)
	}
}

func TestSelectEmoji_Toggles(t *testing.T) {
	doc := NewDocument()
	a := doc.AddEmoji("😀", 0, 0, 40)
	b := doc.AddEmoji("🚀", 0, 0, 40)

	doc.SelectEmoji(a)

	ea, _ := doc.Emoji(a)
	eb, _ := doc.Emoji(b)
	if !ea.IsSelected {
		t.Error("SelectEmoji() did not select emoji")
	}
	if eb.IsSelected {
		t.Error("SelectEmoji() changed another emoji")
	}

	doc.SelectEmoji(a)
	ea, _ = doc.Emoji(a)
	if ea.IsSelected {
		t.Error("Selecting twice should restore the original flag")
	}
}

func TestSelectEmoji_UnknownIDIsNoop(t *testing.T) {
	doc := NewDocument()
	doc.AddEmoji("😀", 0, 0, 40)
	before := doc.Emojis()

	doc.SelectEmoji(99)

	after := doc.Emojis()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("SelectEmoji() on unknown id changed document: %+v -> %+v", before, after)
	}
}

func TestDeselectAll(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 5; i++ {
		id := doc.AddEmoji("😀", i, i, 40)
		if i%2 == 0 {
			doc.SelectEmoji(id)
		}
	}

	doc.DeselectAll()
	doc.DeselectAll()

	for _, e := range doc.Emojis() {
		if e.IsSelected {
			t.Errorf("Emoji %d still selected after DeselectAll()", e.ID)
		}
	}
	if len(doc.Selected()) != 0 {
		t.Errorf("Selected() should be empty, got %d", len(doc.Selected()))
	}
}

func TestDeleteEmoji_PreservesOrder(t *testing.T) {
	doc := NewDocument()
	ids := []int{
		doc.AddEmoji("a", 0, 0, 10),
		doc.AddEmoji("b", 0, 0, 10),
		doc.AddEmoji("c", 0, 0, 10),
		doc.AddEmoji("d", 0, 0, 10),
	}

	doc.DeleteEmoji(ids[1])

	got := doc.Emojis()
	want := []string{"a", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Emoji count mismatch: got %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Text != want[i] {
			t.Errorf("Emoji %d text mismatch: got %q, want %q", i, e.Text, want[i])
		}
	}
}

func TestDeleteEmoji_UnknownIDIsNoop(t *testing.T) {
	doc := NewDocument()
	doc.AddEmoji("a", 1, 2, 10)

	doc.DeleteEmoji(42)

	if len(doc.Emojis()) != 1 {
		t.Errorf("DeleteEmoji() on unknown id removed an emoji")
	}
}

func TestMoveSelectedEmojis(t *testing.T) {
	doc := NewDocument()
	a := doc.AddEmoji("a", 0, 0, 10)
	b := doc.AddEmoji("b", 10, 10, 10)
	c := doc.AddEmoji("c", -3, 4, 10)
	doc.SelectEmoji(a)
	doc.SelectEmoji(c)

	doc.MoveSelectedEmojis(7, -2)

	tests := []struct {
		id   int
		x, y int
	}{
		{a, 7, -2},
		{b, 10, 10},
		{c, 4, 2},
	}
	for _, tt := range tests {
		e, ok := doc.Emoji(tt.id)
		if !ok {
			t.Fatalf("Emoji %d missing", tt.id)
		}
		if e.X != tt.x || e.Y != tt.y {
			t.Errorf("Emoji %d position mismatch: got (%d,%d), want (%d,%d)", tt.id, e.X, e.Y, tt.x, tt.y)
		}
	}
}

func TestSetBackground(t *testing.T) {
	doc := NewDocument()

	doc.SetBackground(URLBackground("https://example.com/bg.png"))
	if doc.Background().Kind() != BackgroundURL || doc.Background().URL() != "https://example.com/bg.png" {
		t.Errorf("URL background not set: %+v", doc.Background())
	}

	doc.SetBackground(ImageDataBackground([]byte{1, 2, 3}))
	if doc.Background().Kind() != BackgroundImageData {
		t.Errorf("Background kind mismatch: got %q", doc.Background().Kind())
	}
	if doc.Background().URL() != "" {
		t.Error("URL should be cleared when image data is set")
	}
	if !bytes.Equal(doc.Background().ImageData(), []byte{1, 2, 3}) {
		t.Errorf("ImageData mismatch: got %v", doc.Background().ImageData())
	}

	doc.SetBackground(BlankBackground())
	if doc.Background().Kind() != BackgroundBlank || doc.Background().ImageData() != nil {
		t.Errorf("Blank background not set: %+v", doc.Background())
	}
}

func TestEmojis_ReturnsCopy(t *testing.T) {
	doc := NewDocument()
	id := doc.AddEmoji("a", 0, 0, 10)

	emojis := doc.Emojis()
	emojis[0].X = 100

	e, _ := doc.Emoji(id)
	if e.X != 0 {
		t.Error("Mutating Emojis() result changed the document")
	}
}

func TestWorkedExample(t *testing.T) {
	doc := NewDocument()

	first := doc.AddEmoji("😀", 0, 0, 40)
	second := doc.AddEmoji("🚀", 10, 10, 40)
	if first != 1 || second != 2 {
		t.Fatalf("ids mismatch: got %d and %d, want 1 and 2", first, second)
	}

	doc.SelectEmoji(1)
	doc.MoveSelectedEmojis(5, 5)

	e1, _ := doc.Emoji(1)
	e2, _ := doc.Emoji(2)
	if e1.X != 5 || e1.Y != 5 {
		t.Errorf("Emoji 1 position mismatch: got (%d,%d), want (5,5)", e1.X, e1.Y)
	}
	if e2.X != 10 || e2.Y != 10 {
		t.Errorf("Emoji 2 position mismatch: got (%d,%d), want (10,10)", e2.X, e2.Y)
	}

	doc.DeleteEmoji(2)

	emojis := doc.Emojis()
	if len(emojis) != 1 || emojis[0].ID != 1 || emojis[0].X != 5 || emojis[0].Y != 5 {
		t.Errorf("Unexpected document after delete: %+v", emojis)
	}
}

func TestDocumentJSON_KeepsCounter(t *testing.T) {
	doc := NewDocument()
	doc.AddEmoji("a", 1, 2, 10)
	last := doc.AddEmoji("b", 3, 4, 20)
	doc.DeleteEmoji(last)
	doc.SetBackground(URLBackground("https://example.com/x.jpg"))

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var loaded Document
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if loaded.Background().URL() != "https://example.com/x.jpg" {
		t.Errorf("Background lost: %+v", loaded.Background())
	}
	if id := loaded.AddEmoji("c", 0, 0, 10); id != last+1 {
		t.Errorf("Counter not restored: got id %d, want %d", id, last+1)
	}
}

func TestDocumentJSON_RejectsDuplicateIDs(t *testing.T) {
	data := `{"background":{"kind":"blank"},"emojis":[{"id":1,"text":"a"},{"id":1,"text":"b"}],"nextId":1}`

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err == nil {
		t.Error("Unmarshal should reject duplicate emoji ids")
	}
}

func TestDocumentJSON_RaisesLowCounter(t *testing.T) {
	data := `{"background":{"kind":"blank"},"emojis":[{"id":7,"text":"a"}],"nextId":2}`

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if id := doc.AddEmoji("b", 0, 0, 10); id != 8 {
		t.Errorf("AddEmoji() after load: got id %d, want 8", id)
	}
}

func TestBackgroundJSON_UnknownKind(t *testing.T) {
	var bg Background
	if err := json.Unmarshal([]byte(`{"kind":"video"}`), &bg); err == nil {
		t.Error("Unmarshal should reject unknown background kind")
	}
}

func TestDrawingClone(t *testing.T) {
	doc := NewDocument()
	doc.AddEmoji("a", 0, 0, 10)
	d := &Drawing{ID: "x", Name: "n", Document: doc}

	cp := d.Clone()
	cp.Document.AddEmoji("b", 0, 0, 10)

	if len(d.Document.Emojis()) != 1 {
		t.Error("Clone() shared the document with the original")
	}
	if d.Meta().Document != nil {
		t.Error("Meta() should drop the document")
	}
}
