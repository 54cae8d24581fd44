package notes

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/events"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/store"
)

var (
	ErrNoteLimit = fmt.Errorf("note limit reached: at most %d notes", model.MaxNotes)
	ErrEmptyNote = errors.New("note needs a title or content")
	ErrNotFound  = errors.New("note not found")
)

type Service struct {
	db     *sql.DB
	pub    events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, pub events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		pub:    pub,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CanAddNote reports whether another note fits under model.MaxNotes.
func (s *Service) CanAddNote() (bool, error) {
	count, err := store.NewNoteStore(s.db).Count()
	if err != nil {
		return false, err
	}
	return count < model.MaxNotes, nil
}

func (s *Service) List() ([]model.Note, error) {
	notes, err := store.NewNoteStore(s.db).List()
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (s *Service) Get(id string) (*model.Note, error) {
	n, err := store.NewNoteStore(s.db).GetByID(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}

func normalize(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" && strings.TrimSpace(content) == "" {
		return "", "", ErrEmptyNote
	}
	return title, content, nil
}

// Create returns ErrNoteLimit when model.MaxNotes notes already exist.
func (s *Service) Create(title, content string) (*model.Note, error) {
	title, content, err := normalize(title, content)
	if err != nil {
		return nil, err
	}

	var note *model.Note
	err = store.WithTx(s.db, func(tx *sql.Tx) error {
		ns := store.NewNoteStore(tx)
		count, err := ns.Count()
		if err != nil {
			return err
		}
		if count >= model.MaxNotes {
			return ErrNoteLimit
		}
		note, err = ns.Create(title, content, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("note created", "id", note.ID)
	s.pub.Publish(events.NewEvent(events.EntityNote, "created", note.ID))
	return note, nil
}

func (s *Service) Update(id, title, content string) (*model.Note, error) {
	title, content, err := normalize(title, content)
	if err != nil {
		return nil, err
	}
	note, err := store.NewNoteStore(s.db).Update(id, title, content, s.now())
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}
	s.pub.Publish(events.NewEvent(events.EntityNote, "updated", id))
	return note, nil
}

func (s *Service) Delete(id string) error {
	deleted, err := store.NewNoteStore(s.db).Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.pub.Publish(events.NewEvent(events.EntityNote, "deleted", id))
	return nil
}
