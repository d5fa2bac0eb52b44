package core

import (
	"context"
	"errors"
	"time"
)

// ErrDrawingNotFound is wrapped by stores when an id has no drawing.
var ErrDrawingNotFound = errors.New("drawing not found")

type (
	// Drawing is a persisted, named Document.
	Drawing struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Document  *Document `json:"document,omitempty"` // Not included in list views.
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// DrawingStore defines the persistence layer for drawings.
	DrawingStore interface {
		// List returns metadata for all drawings, without their Document.
		List(ctx context.Context) ([]*Drawing, error)

		// FindID returns a single drawing by its ID.
		FindID(ctx context.Context, id string) (*Drawing, error)

		// Create stores a new drawing under a freshly generated ID and returns it.
		Create(ctx context.Context, drawing *Drawing) (string, error)

		// Save updates an existing drawing.
		Save(ctx context.Context, drawing *Drawing) error

		Delete(ctx context.Context, id string) error
	}

	Room struct {
		ID    string `json:"id"`
		Users int    `json:"users"`
	}
)

// Clone returns a deep copy so stores never share a Document with callers.
func (d *Drawing) Clone() *Drawing {
	cp := *d
	if d.Document != nil {
		cp.Document = d.Document.Clone()
	}
	return &cp
}

// Meta returns a copy without the Document, as used by list views.
func (d *Drawing) Meta() *Drawing {
	return &Drawing{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
