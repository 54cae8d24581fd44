package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/google/uuid"
)

type NoteStore struct {
	db DBTX
}

func NewNoteStore(db DBTX) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var createdAt, lastModified int64

	err := scanner.Scan(&n.ID, &n.Title, &n.Content, &createdAt, &lastModified)
	if err != nil {
		return nil, err
	}

	n.CreatedAt = fromMillis(createdAt)
	n.LastModified = fromMillis(lastModified)
	return &n, nil
}

const noteCols = `id, title, content, created_at, last_modified`

func (s *NoteStore) Create(title, content string, now time.Time) (*model.Note, error) {
	n := &model.Note{
		ID:           uuid.NewString(),
		Title:        title,
		Content:      content,
		CreatedAt:    now.UTC(),
		LastModified: now.UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO notes (id, title, content, created_at, last_modified) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, toMillis(n.CreatedAt), toMillis(n.LastModified),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (s *NoteStore) GetByID(id string) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// List returns notes most recently modified first.
func (s *NoteStore) List() ([]model.Note, error) {
	rows, err := s.db.Query(`SELECT ` + noteCols + ` FROM notes ORDER BY last_modified DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

// Update returns (nil, nil) when the note does not exist.
func (s *NoteStore) Update(id, title, content string, now time.Time) (*model.Note, error) {
	result, err := s.db.Exec(
		`UPDATE notes SET title = ?, content = ?, last_modified = ? WHERE id = ?`,
		title, content, toMillis(now.UTC()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

func (s *NoteStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *NoteStore) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("delete all notes: %w", err)
	}
	return nil
}
