package connection

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrClosed         = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Transport delivers encoded frames to one remote peer
type Transport interface {
	Send(message []byte) error
	Close() error
}

// Session is one live connection to a table. Its player identity starts out
// provisional and is replaced in place when the player joins.
type Session struct {
	tableID   string
	transport Transport

	mutex    sync.RWMutex
	playerID string
}

func NewSession(tableID, playerID string, transport Transport) *Session {
	return &Session{
		tableID:   tableID,
		playerID:  playerID,
		transport: transport,
	}
}

func (s *Session) TableID() string { return s.tableID }

func (s *Session) PlayerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerID
}

func (s *Session) setPlayerID(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.playerID = id
}

// Manager binds player identities to their session. Each identity has at
// most one live session, and a session belongs to exactly one table.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	logger   *slog.Logger
}

// NewManager creates a new connection manager
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Connect registers a session, replacing and closing any older session held
// by the same identity
func (m *Manager) Connect(s *Session) {
	m.mutex.Lock()
	prev := m.sessions[s.PlayerID()]
	m.sessions[s.PlayerID()] = s
	m.mutex.Unlock()

	if prev != nil && prev != s {
		m.logger.Info("replacing session", "player", s.PlayerID(), "table", s.TableID())
		_ = prev.transport.Close()
	}
}

// Disconnect removes the session if it is still the live one for its
// identity. It reports whether a binding was removed.
func (m *Manager) Disconnect(s *Session) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := s.PlayerID()
	if m.sessions[id] != s {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Superseded reports whether another live session now holds the identity of s
func (m *Manager) Superseded(s *Session) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	current, ok := m.sessions[s.PlayerID()]
	return ok && current != s
}

// Rekey moves a session from its current identity to newID without touching
// the transport
func (m *Manager) Rekey(s *Session, newID string) {
	m.mutex.Lock()
	oldID := s.PlayerID()
	if m.sessions[oldID] == s {
		delete(m.sessions, oldID)
	}
	prev := m.sessions[newID]
	s.setPlayerID(newID)
	m.sessions[newID] = s
	m.mutex.Unlock()

	if prev != nil && prev != s {
		_ = prev.transport.Close()
	}
	m.logger.Debug("rekeyed session", "from", oldID, "to", newID, "table", s.TableID())
}

// Session returns the live session of an identity
func (m *Manager) Session(playerID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	s, ok := m.sessions[playerID]
	return s, ok
}

// SessionsAtTable returns every live session bound to a table
func (m *Manager) SessionsAtTable(tableID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []*Session
	for _, s := range m.sessions {
		if s.tableID == tableID {
			out = append(out, s)
		}
	}
	return out
}

// Send delivers a frame to one session. A failed send disconnects it.
func (m *Manager) Send(s *Session, message []byte) bool {
	if err := s.transport.Send(message); err != nil {
		m.logger.Warn("send failed, disconnecting", "player", s.PlayerID(), "table", s.TableID(), "error", err)
		m.Disconnect(s)
		_ = s.transport.Close()
		return false
	}
	return true
}

// SendToPlayer sends a message to a specific player
func (m *Manager) SendToPlayer(playerID string, message []byte) bool {
	s, ok := m.Session(playerID)
	if !ok {
		return false
	}
	return m.Send(s, message)
}

// CloseAll closes every live transport
func (m *Manager) CloseAll() {
	m.mutex.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mutex.RUnlock()

	for _, s := range sessions {
		_ = s.transport.Close()
	}
}

// SendToTable sends the same message to every session at a table
func (m *Manager) SendToTable(tableID string, message []byte) {
	m.SendToTableExcept(tableID, "", message)
}

// SendToTableExcept sends to every session at the table but the one bound to exceptID
func (m *Manager) SendToTableExcept(tableID, exceptID string, message []byte) {
	for _, s := range m.SessionsAtTable(tableID) {
		if exceptID != "" && s.PlayerID() == exceptID {
			continue
		}
		m.Send(s, message)
	}
}
