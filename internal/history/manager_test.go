package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/models"
)

type recordingPersister struct {
	saves   [][]models.ChatSession
	cleared int
}

func (p *recordingPersister) SaveSessions(sessions []models.ChatSession) {
	snap := make([]models.ChatSession, len(sessions))
	for i, s := range sessions {
		snap[i] = s.Clone()
	}
	p.saves = append(p.saves, snap)
}

func (p *recordingPersister) ClearHistory() { p.cleared++ }

func (p *recordingPersister) last() []models.ChatSession {
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

func newTestManager(p Persister) *Manager {
	m := NewManager(nil, p)
	clock := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	n := 0
	m.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	return m
}

func settings(character string) models.AppSettings {
	s := models.DefaultSettings()
	s.Character = character
	return s
}

func TestCreatePrependsNewestFirst(t *testing.T) {
	p := &recordingPersister{}
	m := newTestManager(p)

	a := m.Create(settings("A"))
	b := m.Create(settings("B"))

	got := m.Sessions()
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
	assert.Empty(t, got[0].Messages)
	assert.Equal(t, "B", got[0].Character)

	require.Len(t, p.saves, 2)
	assert.Equal(t, b.ID, p.last()[0].ID)
}

func TestCreateUsesRealIDsByDefault(t *testing.T) {
	m := NewManager(nil, nil)
	a := m.Create(settings("A"))
	b := m.Create(settings("B"))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAppendRefreshesTimestamp(t *testing.T) {
	m := newTestManager(nil)
	s := m.Create(settings("A"))

	require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))

	got, ok := m.Find(s.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 1)
	assert.True(t, got.Timestamp.After(s.Timestamp))
}

func TestAppendUnknownSession(t *testing.T) {
	m := newTestManager(nil)
	err := m.Append("missing", models.ChatMessage{Role: models.RoleUser, Content: "Hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFindReturnsCopy(t *testing.T) {
	m := newTestManager(nil)
	s := m.Create(settings("A"))
	require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))

	got, _ := m.Find(s.ID)
	got.Messages[0].Content = "changed"

	again, _ := m.Find(s.ID)
	assert.Equal(t, "Hi", again.Messages[0].Content)
}

func TestOverwriteLastModel(t *testing.T) {
	m := newTestManager(nil)
	s := m.Create(settings("A"))
	require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))
	require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleModel}))

	require.NoError(t, m.OverwriteLastModel(s.ID, "Hel"))
	require.NoError(t, m.OverwriteLastModel(s.ID, "Hello"))

	got, _ := m.Find(s.ID)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Hello", got.Messages[1].Content)
}

func TestOverwriteLastModelIgnoresUserTail(t *testing.T) {
	m := newTestManager(nil)
	s := m.Create(settings("A"))
	require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))

	require.NoError(t, m.OverwriteLastModel(s.ID, "ignored"))

	got, _ := m.Find(s.ID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Hi", got.Messages[0].Content)
}

func TestRecoverFromError(t *testing.T) {
	const apology = "Sorry, I encountered an error. Please try again."

	t.Run("replaces empty placeholder", func(t *testing.T) {
		m := newTestManager(nil)
		s := m.Create(settings("A"))
		require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))
		require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleModel}))

		require.NoError(t, m.RecoverFromError(s.ID, apology))

		got, _ := m.Find(s.ID)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, apology, got.Messages[1].Content)
	})

	t.Run("keeps partial reply", func(t *testing.T) {
		m := newTestManager(nil)
		s := m.Create(settings("A"))
		require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))
		require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleModel, Content: "Sor"}))

		require.NoError(t, m.RecoverFromError(s.ID, apology))

		got, _ := m.Find(s.ID)
		require.Len(t, got.Messages, 3)
		assert.Equal(t, "Sor", got.Messages[1].Content)
		assert.Equal(t, models.ChatMessage{Role: models.RoleModel, Content: apology}, got.Messages[2])
	})

	t.Run("appends after user tail", func(t *testing.T) {
		m := newTestManager(nil)
		s := m.Create(settings("A"))
		require.NoError(t, m.Append(s.ID, models.ChatMessage{Role: models.RoleUser, Content: "Hi"}))

		require.NoError(t, m.RecoverFromError(s.ID, apology))

		got, _ := m.Find(s.ID)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, apology, got.Messages[1].Content)
	})
}

func TestClearAll(t *testing.T) {
	p := &recordingPersister{}
	m := newTestManager(p)
	s := m.Create(settings("A"))
	require.NoError(t, m.BeginSend(s.ID))

	m.ClearAll()

	assert.Zero(t, m.Len())
	assert.NotNil(t, m.Sessions())
	assert.False(t, m.Sending(s.ID))
	assert.Equal(t, 1, p.cleared)
}

func TestBeginSendRejectsSecondSend(t *testing.T) {
	m := newTestManager(nil)
	a := m.Create(settings("A"))
	b := m.Create(settings("B"))

	require.NoError(t, m.BeginSend(a.ID))
	assert.ErrorIs(t, m.BeginSend(a.ID), ErrSendInFlight)
	assert.NoError(t, m.BeginSend(b.ID))
	assert.True(t, m.Sending(a.ID))

	m.EndSend(a.ID)
	assert.False(t, m.Sending(a.ID))
	assert.NoError(t, m.BeginSend(a.ID))
}

func TestBeginSendUnknownSession(t *testing.T) {
	m := newTestManager(nil)
	assert.ErrorIs(t, m.BeginSend("missing"), ErrSessionNotFound)
}

type staticSource []models.ChatSession

func (s staticSource) LoadSessions() []models.ChatSession { return s }

func TestLoad(t *testing.T) {
	stored := staticSource{
		{ID: "b", Persona: models.PersonaMother, Messages: []models.ChatMessage{}},
		{ID: "a", Persona: models.PersonaFriend, Messages: []models.ChatMessage{}},
	}
	m := Load(stored, nil)
	got := m.Sessions()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	empty := Load(nil, nil)
	assert.NotNil(t, empty.Sessions())
	assert.Zero(t, empty.Len())
}
