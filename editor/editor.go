// Package editor applies document operations to stored drawings. A Document
// is not safe for concurrent use, so every edit of one drawing runs under that
// drawing's lock: load, mutate, save, notify.
package editor

import (
	"context"
	"emojiart-server/core"
	"emojiart-server/emoji"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrInvalidInput marks request values the editor refuses to apply.
var ErrInvalidInput = errors.New("invalid input")

// Notifier is told about every committed change.
type Notifier interface {
	DrawingUpdated(d *core.Drawing)
	DrawingDeleted(id string)
}

type Editor struct {
	store    core.DrawingStore
	notifier Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns an editor over store. notifier may be nil.
func New(store core.DrawingStore, notifier Notifier) *Editor {
	return &Editor{
		store:    store,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (e *Editor) lock(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops the lock of a drawing that no longer exists. Ids are never
// reused, so a waiter still holding the old mutex can only see not-found.
func (e *Editor) forget(id string) {
	e.mu.Lock()
	delete(e.locks, id)
	e.mu.Unlock()
}

func (e *Editor) Store() core.DrawingStore {
	return e.store
}

// Create stores a new empty drawing.
func (e *Editor) Create(ctx context.Context, name string) (*core.Drawing, error) {
	d := &core.Drawing{Name: name, Document: core.NewDocument()}
	if _, err := e.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (e *Editor) Get(ctx context.Context, id string) (*core.Drawing, error) {
	return e.store.FindID(ctx, id)
}

func (e *Editor) Delete(ctx context.Context, id string) error {
	unlock := e.lock(id)
	defer unlock()

	if err := e.store.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrDrawingNotFound) {
			e.forget(id)
		}
		return err
	}
	e.forget(id)

	if e.notifier != nil {
		e.notifier.DrawingDeleted(id)
	}
	return nil
}

// Edit loads drawing id, applies fn to its document and saves the result.
func (e *Editor) Edit(ctx context.Context, id string, fn func(doc *core.Document)) (*core.Drawing, error) {
	unlock := e.lock(id)
	defer unlock()

	d, err := e.store.FindID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrDrawingNotFound) {
			e.forget(id)
		}
		return nil, err
	}
	if d.Document == nil {
		d.Document = core.NewDocument()
	}

	fn(d.Document)

	if err := e.store.Save(ctx, d); err != nil {
		logrus.WithError(err).WithField("drawing_id", id).Error("Failed to save edited drawing")
		return nil, err
	}

	if e.notifier != nil {
		e.notifier.DrawingUpdated(d)
	}
	return d, nil
}

// AddEmoji validates text and size, then places the emoji. It returns the
// drawing and the new emoji's id.
func (e *Editor) AddEmoji(ctx context.Context, id, text string, x, y, size int) (*core.Drawing, int, error) {
	if err := emoji.Validate(text); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if size <= 0 {
		return nil, 0, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidInput, size)
	}

	var emojiID int
	d, err := e.Edit(ctx, id, func(doc *core.Document) {
		emojiID = doc.AddEmoji(text, x, y, size)
	})
	if err != nil {
		return nil, 0, err
	}
	return d, emojiID, nil
}

func (e *Editor) SelectEmoji(ctx context.Context, id string, emojiID int) (*core.Drawing, error) {
	return e.Edit(ctx, id, func(doc *core.Document) {
		doc.SelectEmoji(emojiID)
	})
}

func (e *Editor) DeselectAll(ctx context.Context, id string) (*core.Drawing, error) {
	return e.Edit(ctx, id, func(doc *core.Document) {
		doc.DeselectAll()
	})
}

func (e *Editor) DeleteEmoji(ctx context.Context, id string, emojiID int) (*core.Drawing, error) {
	return e.Edit(ctx, id, func(doc *core.Document) {
		doc.DeleteEmoji(emojiID)
	})
}

func (e *Editor) MoveSelected(ctx context.Context, id string, dx, dy int) (*core.Drawing, error) {
	return e.Edit(ctx, id, func(doc *core.Document) {
		doc.MoveSelectedEmojis(dx, dy)
	})
}

// SetBackground replaces the background after checking that URL backgrounds
// are absolute http(s) URLs and image data is not empty.
func (e *Editor) SetBackground(ctx context.Context, id string, bg core.Background) (*core.Drawing, error) {
	switch bg.Kind() {
	case core.BackgroundURL:
		u, err := url.Parse(bg.URL())
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: background url must be absolute http(s), got %q", ErrInvalidInput, bg.URL())
		}
	case core.BackgroundImageData:
		if len(bg.ImageData()) == 0 {
			return nil, fmt.Errorf("%w: background image data is empty", ErrInvalidInput)
		}
	}

	return e.Edit(ctx, id, func(doc *core.Document) {
		doc.SetBackground(bg)
	})
}
