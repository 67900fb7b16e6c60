// Package history owns the ordered list of chat sessions.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"personachat/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSendInFlight    = errors.New("a reply is still streaming for this session")
)

// Persister receives a snapshot after every mutation. Implementations
// must not block; failures are theirs to log.
type Persister interface {
	SaveSessions(sessions []models.ChatSession)
	ClearHistory()
}

// Manager keeps sessions newest-first. It is not safe for concurrent use;
// callers drive it from a single event loop.
type Manager struct {
	sessions  []models.ChatSession
	persister Persister
	inFlight  map[string]struct{}
	now       func() time.Time
	newID     func() string
}

// NewManager starts from the given sessions. persister may be nil.
func NewManager(sessions []models.ChatSession, persister Persister) *Manager {
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	return &Manager{
		sessions:  sessions,
		persister: persister,
		inFlight:  map[string]struct{}{},
		now:       time.Now,
		newID:     newSessionID,
	}
}

// Source supplies previously stored sessions. A source that cannot read
// its data returns an empty list.
type Source interface {
	LoadSessions() []models.ChatSession
}

// Load builds a Manager from stored sessions.
func Load(src Source, persister Persister) *Manager {
	var sessions []models.ChatSession
	if src != nil {
		sessions = src.LoadSessions()
	}
	return NewManager(sessions, persister)
}

// newSessionID returns a time-ordered id.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Sessions returns a copy of the list, newest first.
func (m *Manager) Sessions() []models.ChatSession {
	out := make([]models.ChatSession, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s.Clone()
	}
	return out
}

func (m *Manager) Len() int { return len(m.sessions) }

// Create starts an empty session and puts it at the front of the list.
func (m *Manager) Create(settings models.AppSettings) models.ChatSession {
	now := m.now()
	s := models.ChatSession{
		ID:         m.newID(),
		Persona:    settings.Persona,
		Character:  settings.Character,
		Language:   settings.Language,
		ScriptMode: settings.ScriptMode,
		Messages:   []models.ChatMessage{},
		Timestamp:  now,
	}
	m.sessions = append([]models.ChatSession{s}, m.sessions...)
	m.persist()
	return s.Clone()
}

func (m *Manager) Find(id string) (models.ChatSession, bool) {
	i := m.index(id)
	if i < 0 {
		return models.ChatSession{}, false
	}
	return m.sessions[i].Clone(), true
}

// Append adds msg to the session and refreshes its activity time.
func (m *Manager) Append(id string, msg models.ChatMessage) error {
	i := m.index(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	m.sessions[i].Messages = append(m.sessions[i].Messages, msg)
	m.sessions[i].Timestamp = m.now()
	m.persist()
	return nil
}

// OverwriteLastModel replaces the content of the trailing model message.
// It does nothing when the last message is not from the model.
func (m *Manager) OverwriteLastModel(id, content string) error {
	i := m.index(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	msgs := m.sessions[i].Messages
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != models.RoleModel {
		return nil
	}
	msgs[len(msgs)-1].Content = content
	m.persist()
	return nil
}

// RecoverFromError puts apology into the transcript after a failed
// reply. An empty placeholder is replaced; partial content is kept and
// the apology follows it as a new message.
func (m *Manager) RecoverFromError(id, apology string) error {
	i := m.index(id)
	if i < 0 {
		return ErrSessionNotFound
	}
	msgs := m.sessions[i].Messages
	errMsg := models.ChatMessage{Role: models.RoleModel, Content: apology}
	if n := len(msgs); n > 0 && msgs[n-1].Role == models.RoleModel && msgs[n-1].Content == "" {
		msgs[n-1] = errMsg
	} else {
		m.sessions[i].Messages = append(msgs, errMsg)
	}
	m.persist()
	return nil
}

// ClearAll drops every session and the stored history.
func (m *Manager) ClearAll() {
	m.sessions = []models.ChatSession{}
	m.inFlight = map[string]struct{}{}
	if m.persister != nil {
		m.persister.ClearHistory()
	}
}

// BeginSend claims the single in-flight slot for a session.
func (m *Manager) BeginSend(id string) error {
	if m.index(id) < 0 {
		return ErrSessionNotFound
	}
	if _, busy := m.inFlight[id]; busy {
		return ErrSendInFlight
	}
	m.inFlight[id] = struct{}{}
	return nil
}

func (m *Manager) EndSend(id string) {
	delete(m.inFlight, id)
}

func (m *Manager) Sending(id string) bool {
	_, busy := m.inFlight[id]
	return busy
}

func (m *Manager) index(id string) int {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) persist() {
	if m.persister != nil {
		m.persister.SaveSessions(m.sessions)
	}
}
