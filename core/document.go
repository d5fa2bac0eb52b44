package core

import (
	"encoding/json"
	"fmt"
)

type (
	// Emoji is one placed glyph. X and Y are offsets from the document's
	// logical center, not pixels.
	Emoji struct {
		ID         int    `json:"id"`
		Text       string `json:"text"`
		X          int    `json:"x"`
		Y          int    `json:"y"`
		Size       int    `json:"size"`
		IsSelected bool   `json:"isSelected"`
	}

	// Document is the in-memory state of one emoji-art composition. It is not
	// safe for concurrent use; callers serialize access.
	Document struct {
		background Background
		emojis     []Emoji
		nextID     int
	}
)

// NewDocument returns an empty document with a blank background.
func NewDocument() *Document {
	return &Document{background: BlankBackground()}
}

func (d *Document) Background() Background {
	return d.background
}

// Emojis returns the placed emojis in z-order. The slice is a copy.
func (d *Document) Emojis() []Emoji {
	out := make([]Emoji, len(d.emojis))
	copy(out, d.emojis)
	return out
}

// Emoji looks up an emoji by id.
func (d *Document) Emoji(id int) (Emoji, bool) {
	if i := d.index(id); i >= 0 {
		return d.emojis[i], true
	}
	return Emoji{}, false
}

// Selected returns the currently selected emojis in z-order.
func (d *Document) Selected() []Emoji {
	var out []Emoji
	for _, e := range d.emojis {
		if e.IsSelected {
			out = append(out, e)
		}
	}
	return out
}

// AddEmoji places a new unselected emoji and returns its id. Ids start at 1
// and are never reused.
func (d *Document) AddEmoji(text string, x, y, size int) int {
	d.nextID++
	d.emojis = append(d.emojis, Emoji{
		ID:   d.nextID,
		Text: text,
		X:    x,
		Y:    y,
		Size: size,
	})
	return d.nextID
}

// SelectEmoji toggles the selection of the emoji with the given id.
func (d *Document) SelectEmoji(id int) {
	if i := d.index(id); i >= 0 {
		d.emojis[i].IsSelected = !d.emojis[i].IsSelected
	}
}

func (d *Document) DeselectAll() {
	for i := range d.emojis {
		d.emojis[i].IsSelected = false
	}
}

// DeleteEmoji removes the emoji with the given id, keeping the order of the
// rest.
func (d *Document) DeleteEmoji(id int) {
	if i := d.index(id); i >= 0 {
		d.emojis = append(d.emojis[:i], d.emojis[i+1:]...)
	}
}

func (d *Document) SetBackground(bg Background) {
	d.background = bg
}

// MoveSelectedEmojis translates every selected emoji by (dx, dy).
func (d *Document) MoveSelectedEmojis(dx, dy int) {
	selected := make([]int, 0, len(d.emojis))
	for i, e := range d.emojis {
		if e.IsSelected {
			selected = append(selected, i)
		}
	}
	for _, i := range selected {
		d.emojis[i].X += dx
		d.emojis[i].Y += dy
	}
}

// Clone returns a deep copy of the document, counter included.
func (d *Document) Clone() *Document {
	return &Document{
		background: d.background,
		emojis:     d.Emojis(),
		nextID:     d.nextID,
	}
}

func (d *Document) index(id int) int {
	for i, e := range d.emojis {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// documentJSON is the persisted form. The id counter travels with the
// document so ids stay unique after a reload.
type documentJSON struct {
	Background Background `json:"background"`
	Emojis     []Emoji    `json:"emojis"`
	NextID     int        `json:"nextId"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	emojis := d.emojis
	if emojis == nil {
		emojis = []Emoji{}
	}
	return json.Marshal(documentJSON{
		Background: d.background,
		Emojis:     emojis,
		NextID:     d.nextID,
	})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	seen := make(map[int]struct{}, len(raw.Emojis))
	next := raw.NextID
	for _, e := range raw.Emojis {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate emoji id %d", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.ID > next {
			next = e.ID
		}
	}

	d.background = raw.Background
	d.emojis = raw.Emojis
	d.nextID = next
	return nil
}
