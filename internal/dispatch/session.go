package dispatch

import (
	"log/slog"
	"sync"
)

// Menu is the per-conversation menu state.
type Menu int

const (
	MenuMain Menu = iota
	MenuBreeds
)

func (m Menu) String() string {
	if m == MenuBreeds {
		return "breeds"
	}
	return "main"
}

// SessionManager tracks which menu each conversation currently shows.
// Sessions are created implicitly on first interaction and never expire;
// no other per-user state is retained.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]Menu
	logger   *slog.Logger
}

func NewSessionManager(logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]Menu),
		logger:   logger,
	}
}

// Menu returns the current menu for the session key, MenuMain by default.
func (m *SessionManager) Menu(key string) Menu {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[key]
}

// SetMenu records a menu transition for the session key.
func (m *SessionManager) SetMenu(key string, menu Menu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[key] != menu {
		m.logger.Debug("menu transition", "session", key, "menu", menu.String())
	}
	m.sessions[key] = menu
}
