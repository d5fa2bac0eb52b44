package filesystem

import (
	"context"
	"emojiart-server/core"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const fileExt = ".json"

type fsStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewDrawingStore creates a filesystem store keeping one JSON file per
// drawing under basePath.
func NewDrawingStore(basePath string) core.DrawingStore {
	if basePath == "" {
		basePath = "./data"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

// drawingPath maps an id to its file. Only well-formed ULIDs are accepted so
// an id can never escape basePath.
func (s *fsStore) drawingPath(id string) (string, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", fmt.Errorf("invalid drawing id %q: %w", id, core.ErrDrawingNotFound)
	}
	return filepath.Join(s.basePath, id+fileExt), nil
}

func (s *fsStore) read(path string) (*core.Drawing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d core.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drawing: %w", err)
	}
	if d.Document == nil {
		d.Document = core.NewDocument()
	}
	return &d, nil
}

func (s *fsStore) write(path string, d *core.Drawing) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *fsStore) List(ctx context.Context) ([]*core.Drawing, error) {
	log := logrus.WithField("path", s.basePath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.basePath)
	if err != nil {
		log.WithError(err).Error("Failed to read drawing directory")
		return nil, err
	}

	drawings := make([]*core.Drawing, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), fileExt) {
			continue
		}

		d, err := s.read(filepath.Join(s.basePath, file.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read drawing file %s, skipping", file.Name())
			continue
		}
		drawings = append(drawings, d.Meta())
	}

	sort.Slice(drawings, func(i, j int) bool {
		return drawings[i].ID < drawings[j].ID
	})

	log.Debugf("Listed %d drawings", len(drawings))
	return drawings, nil
}

func (s *fsStore) FindID(ctx context.Context, id string) (*core.Drawing, error) {
	path, err := s.drawingPath(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"drawing_id": id, "file_path": path})

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.read(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Drawing with specified ID not found")
			return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
		}
		log.WithError(err).Error("Failed to retrieve drawing")
		return nil, err
	}

	log.Debug("Drawing retrieved successfully")
	return d, nil
}

func (s *fsStore) Create(ctx context.Context, drawing *core.Drawing) (string, error) {
	id := ulid.Make().String()
	path := filepath.Join(s.basePath, id+fileExt)
	log := logrus.WithFields(logrus.Fields{"drawing_id": id, "file_path": path})

	now := time.Now()
	stored := drawing.Clone()
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Document == nil {
		stored.Document = core.NewDocument()
	}

	s.mu.Lock()
	err := s.write(path, stored)
	s.mu.Unlock()
	if err != nil {
		log.WithError(err).Error("Failed to create drawing")
		return "", err
	}

	drawing.ID = id
	drawing.CreatedAt = now
	drawing.UpdatedAt = now

	log.Info("Drawing created successfully")
	return id, nil
}

func (s *fsStore) Save(ctx context.Context, drawing *core.Drawing) error {
	path, err := s.drawingPath(drawing.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"drawing_id": drawing.ID, "file_path": path})

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Drawing not found for save")
			return fmt.Errorf("drawing with id %s: %w", drawing.ID, core.ErrDrawingNotFound)
		}
		return err
	}

	drawing.CreatedAt = existing.CreatedAt
	drawing.UpdatedAt = time.Now()
	if err := s.write(path, drawing); err != nil {
		log.WithError(err).Error("Failed to write drawing file")
		return err
	}

	log.Info("Drawing saved successfully")
	return nil
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	path, err := s.drawingPath(id)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"drawing_id": id, "file_path": path})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Drawing file not found for deletion")
			return fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
		}
		log.WithError(err).Error("Failed to delete drawing file")
		return err
	}

	log.Info("Drawing deleted successfully")
	return nil
}
