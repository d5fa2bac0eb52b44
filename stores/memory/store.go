package memory

import (
	"context"
	"emojiart-server/core"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type drawingStore struct {
	mu       sync.RWMutex
	drawings map[string]*core.Drawing
}

// NewDrawingStore creates a new in-memory store.
func NewDrawingStore() core.DrawingStore {
	return &drawingStore{
		drawings: make(map[string]*core.Drawing),
	}
}

func (s *drawingStore) List(ctx context.Context) ([]*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drawings := make([]*core.Drawing, 0, len(s.drawings))
	for _, d := range s.drawings {
		drawings = append(drawings, d.Meta())
	}

	sort.Slice(drawings, func(i, j int) bool {
		return drawings[i].ID < drawings[j].ID
	})

	logrus.Debugf("Listed %d drawings", len(drawings))
	return drawings, nil
}

func (s *drawingStore) FindID(ctx context.Context, id string) (*core.Drawing, error) {
	log := logrus.WithField("drawing_id", id)

	s.mu.RLock()
	d, ok := s.drawings[id]
	s.mu.RUnlock()

	if ok {
		log.Debug("Drawing retrieved successfully")
		return d.Clone(), nil
	}

	log.WithField("error", "drawing not found").Warn("Drawing with specified ID not found")
	return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
}

func (s *drawingStore) Create(ctx context.Context, drawing *core.Drawing) (string, error) {
	id := ulid.Make().String()
	now := time.Now()

	stored := drawing.Clone()
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Document == nil {
		stored.Document = core.NewDocument()
	}

	s.mu.Lock()
	s.drawings[id] = stored
	s.mu.Unlock()

	drawing.ID = id
	drawing.CreatedAt = now
	drawing.UpdatedAt = now

	logrus.WithFields(logrus.Fields{
		"drawing_id": id,
		"name":       drawing.Name,
	}).Info("Drawing created successfully")

	return id, nil
}

func (s *drawingStore) Save(ctx context.Context, drawing *core.Drawing) error {
	log := logrus.WithField("drawing_id", drawing.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.drawings[drawing.ID]
	if !ok {
		log.Warn("Drawing not found for save")
		return fmt.Errorf("drawing with id %s: %w", drawing.ID, core.ErrDrawingNotFound)
	}

	drawing.CreatedAt = existing.CreatedAt
	drawing.UpdatedAt = time.Now()
	s.drawings[drawing.ID] = drawing.Clone()

	log.Info("Drawing saved successfully")
	return nil
}

func (s *drawingStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("drawing_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drawings[id]; !ok {
		log.Warn("Drawing not found for deletion")
		return fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
	}

	delete(s.drawings, id)
	log.Info("Drawing deleted successfully")
	return nil
}
