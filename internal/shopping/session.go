package shopping

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/store"
)

type sessionState struct {
	State       model.ShoppingState
	MiscHistory []string
}

func (s sessionState) clone() sessionState {
	return sessionState{State: s.State, MiscHistory: slices.Clone(s.MiscHistory)}
}

// Session owns the process-wide shopping state and misc history. The embedded
// mutex serializes every read-then-write against the inventory and shopping
// tables; hold it for the whole operation, including its transaction.
type Session struct {
	sync.Mutex
	cur sessionState
}

func NewSession(state model.ShoppingState, history []string) *Session {
	if history == nil {
		history = []string{}
	}
	return &Session{cur: sessionState{State: state, MiscHistory: slices.Clone(history)}}
}

// LoadSession reads the persisted state from the settings table.
func LoadSession(db store.DBTX) (*Session, error) {
	settings, err := store.NewSettingsStore(db).GetAppSettings()
	if err != nil {
		return nil, fmt.Errorf("load shopping session: %w", err)
	}
	return NewSession(settings.ShoppingState, settings.MiscItemHistory), nil
}

// Reset returns the session to EMPTY with no misc history. The caller must
// hold the lock and must already have persisted the same reset.
func (s *Session) Reset() {
	s.cur = sessionState{State: model.ShoppingEmpty, MiscHistory: []string{}}
}
