package sqlite

import (
	"context"
	"database/sql"
	"emojiart-server/core"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewDrawingStore opens (or creates) the database at dataSourceName.
func NewDrawingStore(dataSourceName string) core.DrawingStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}
	// sqlite allows a single writer; share one connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	drawingsTable := `
	CREATE TABLE IF NOT EXISTS drawings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		document BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err = db.Exec(drawingsTable); err != nil {
		log.Fatalf("failed to create drawings table: %v", err)
	}

	return &sqliteStore{db}
}

func encodeDocument(doc *core.Document) ([]byte, error) {
	if doc == nil {
		doc = core.NewDocument()
	}
	return json.Marshal(doc)
}

func (s *sqliteStore) List(ctx context.Context) ([]*core.Drawing, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, updated_at FROM drawings ORDER BY id")
	if err != nil {
		logrus.WithError(err).Error("Failed to list drawings")
		return nil, err
	}
	defer rows.Close()

	drawings := []*core.Drawing{}
	for rows.Next() {
		var (
			d                    core.Drawing
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&d.ID, &d.Name, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		d.CreatedAt = time.Unix(0, createdAt)
		d.UpdatedAt = time.Unix(0, updatedAt)
		drawings = append(drawings, &d)
	}
	return drawings, rows.Err()
}

func (s *sqliteStore) FindID(ctx context.Context, id string) (*core.Drawing, error) {
	log := logrus.WithField("drawing_id", id)
	log.Debug("Retrieving drawing by ID")

	var (
		d                    core.Drawing
		data                 []byte
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, document, created_at, updated_at FROM drawings WHERE id = ?", id,
	).Scan(&d.ID, &d.Name, &data, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Drawing with specified ID not found")
			return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
		}
		log.WithError(err).Error("Failed to retrieve drawing")
		return nil, err
	}

	d.Document = core.NewDocument()
	if err := json.Unmarshal(data, d.Document); err != nil {
		log.WithError(err).Error("Failed to decode drawing document")
		return nil, fmt.Errorf("failed to decode drawing %s: %w", id, err)
	}
	d.CreatedAt = time.Unix(0, createdAt)
	d.UpdatedAt = time.Unix(0, updatedAt)

	log.Debug("Drawing retrieved successfully")
	return &d, nil
}

func (s *sqliteStore) Create(ctx context.Context, drawing *core.Drawing) (string, error) {
	id := ulid.Make().String()
	data, err := encodeDocument(drawing.Document)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{
		"drawing_id":  id,
		"data_length": len(data),
	})

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO drawings (id, name, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, drawing.Name, data, now.UnixNano(), now.UnixNano())
	if err != nil {
		log.WithError(err).Error("Failed to create drawing")
		return "", err
	}

	drawing.ID = id
	drawing.CreatedAt = time.Unix(0, now.UnixNano())
	drawing.UpdatedAt = drawing.CreatedAt

	log.Info("Drawing created successfully")
	return id, nil
}

func (s *sqliteStore) Save(ctx context.Context, drawing *core.Drawing) error {
	log := logrus.WithField("drawing_id", drawing.ID)

	data, err := encodeDocument(drawing.Document)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var createdAt int64
	err = tx.QueryRowContext(ctx, "SELECT created_at FROM drawings WHERE id = ?", drawing.ID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("Drawing not found for save")
			return fmt.Errorf("drawing with id %s: %w", drawing.ID, core.ErrDrawingNotFound)
		}
		return err
	}

	now := time.Now().UnixNano()
	_, err = tx.ExecContext(ctx,
		"UPDATE drawings SET name = ?, document = ?, updated_at = ? WHERE id = ?",
		drawing.Name, data, now, drawing.ID)
	if err != nil {
		log.WithError(err).Error("Failed to save drawing")
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	drawing.CreatedAt = time.Unix(0, createdAt)
	drawing.UpdatedAt = time.Unix(0, now)
	log.Info("Drawing saved successfully")
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	log := logrus.WithField("drawing_id", id)

	res, err := s.db.ExecContext(ctx, "DELETE FROM drawings WHERE id = ?", id)
	if err != nil {
		log.WithError(err).Error("Failed to delete drawing")
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("Drawing not found for deletion")
		return fmt.Errorf("drawing with id %s: %w", id, core.ErrDrawingNotFound)
	}

	log.Info("Drawing deleted successfully")
	return nil
}
