package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"personachat/internal/chat"
	"personachat/internal/history"
	"personachat/internal/llm"
	"personachat/internal/models"
	"personachat/internal/prompt"
)

// Apology replaces or follows a reply that failed mid-stream.
const Apology = "Sorry, I encountered an error. Please try again."

var (
	ErrNoActiveChat = errors.New("no chat is open")
	ErrEmptyMessage = errors.New("message is empty")
)

// SettingsPersister stores the setup form values. Implementations must
// not block.
type SettingsPersister interface {
	SaveSettings(settings models.AppSettings)
}

// Controller owns the application state. Every method must be called
// from the same goroutine; only Turn.Run may run elsewhere.
type Controller struct {
	state    State
	History  *history.Manager
	settings SettingsPersister
	provider llm.Provider
	reducer  *chat.Reducer

	// session is the backend handle for state.CurrentSessionID.
	session llm.Session
}

func NewController(settings models.AppSettings, hist *history.Manager, persister SettingsPersister, provider llm.Provider, reducer *chat.Reducer) *Controller {
	if hist == nil {
		hist = history.NewManager(nil, nil)
	}
	if reducer == nil {
		reducer = chat.NewReducer(nil)
	}
	return &Controller{
		state:    State{View: ViewLanding, Settings: settings},
		History:  hist,
		settings: persister,
		provider: provider,
		reducer:  reducer,
	}
}

func (c *Controller) State() State { return c.state }

// CurrentSession returns the session shown on the chat screen.
func (c *Controller) CurrentSession() (models.ChatSession, bool) {
	if c.state.CurrentSessionID == "" {
		return models.ChatSession{}, false
	}
	return c.History.Find(c.state.CurrentSessionID)
}

// Dispatch applies ev and performs its side effect. When the side effect
// fails the view is left where it was and the failure is shown as a
// notice.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	next, effect := Reduce(c.state, ev)

	switch effect {
	case EffectNone:
		if c.state.View == ViewChat && next.View != ViewChat {
			c.session = nil
		}
		c.state = next

	case EffectPersistSettings:
		c.state = next
		c.saveSettings()

	case EffectCreateSession:
		sess, err := c.openSession(ctx, next.Settings, nil)
		if err != nil {
			c.state.Settings = next.Settings
			c.state.Notice = noticeFor(err)
			return err
		}
		created := c.History.Create(next.Settings)
		next.CurrentSessionID = created.ID
		c.session = sess
		c.state = next
		c.saveSettings()

	case EffectOpenSession:
		stored, ok := c.History.Find(next.CurrentSessionID)
		if !ok {
			c.state.Notice = "That chat no longer exists."
			return fmt.Errorf("open %s: %w", next.CurrentSessionID, history.ErrSessionNotFound)
		}
		sess, err := c.openSession(ctx, stored.Settings(), stored.Messages)
		if err != nil {
			c.state.Notice = noticeFor(err)
			return err
		}
		next.Loading = c.History.Sending(stored.ID)
		c.session = sess
		c.state = next

	case EffectClearHistory:
		c.History.ClearAll()
		c.session = nil
		c.state = next
	}
	return nil
}

func (c *Controller) openSession(ctx context.Context, settings models.AppSettings, messages []models.ChatMessage) (llm.Session, error) {
	if c.provider == nil {
		return nil, llm.Transport("create chat", errors.New("no model backend configured"))
	}
	sess, err := c.provider.NewSession(ctx, prompt.ForSettings(settings), messages)
	if err != nil {
		err = llm.Transport("create chat", err)
		slog.Error("opening chat session failed", "provider", c.provider.Name(), "error", err)
		return nil, err
	}
	return sess, nil
}

func (c *Controller) saveSettings() {
	if c.settings != nil {
		c.settings.SaveSettings(c.state.Settings)
	}
}

func noticeFor(err error) string {
	var te *llm.TransportError
	if errors.As(err, &te) {
		return "Could not reach the model: " + te.Err.Error()
	}
	return err.Error()
}

// Turn is one user message waiting for its reply.
type Turn struct {
	SessionID string
	Text      string

	session llm.Session
	reducer *chat.Reducer
}

// Run streams the reply. It touches no controller state, so it may run
// off the event loop; progress comes back through hooks.
func (t Turn) Run(ctx context.Context, hooks chat.Hooks) (string, error) {
	return t.reducer.Run(ctx, t.session, t.Text, hooks)
}

// BeginSend records the user message and an empty model placeholder, then
// hands back the Turn that will fill the placeholder.
func (c *Controller) BeginSend(text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}
	id := c.state.CurrentSessionID
	if c.state.View != ViewChat || id == "" || c.session == nil {
		return Turn{}, ErrNoActiveChat
	}
	if err := c.History.BeginSend(id); err != nil {
		return Turn{}, err
	}

	for _, msg := range []models.ChatMessage{
		{Role: models.RoleUser, Content: text},
		{Role: models.RoleModel},
	} {
		if err := c.History.Append(id, msg); err != nil {
			c.History.EndSend(id)
			return Turn{}, err
		}
	}
	c.state.Loading = true

	return Turn{SessionID: id, Text: text, session: c.session, reducer: c.reducer}, nil
}

// ApplyDelta shows the accumulated reply so far.
func (c *Controller) ApplyDelta(sessionID, content string) {
	if err := c.History.OverwriteLastModel(sessionID, content); err != nil {
		slog.Debug("delta for unknown session", "session", sessionID)
	}
}

// FinishSend settles the transcript after Turn.Run returns. The session's
// send slot is always released.
func (c *Controller) FinishSend(sessionID, content string, err error) {
	defer func() {
		c.History.EndSend(sessionID)
		if sessionID == c.state.CurrentSessionID {
			c.state.Loading = false
		}
	}()

	if content != "" {
		c.ApplyDelta(sessionID, content)
	}
	if err == nil {
		return
	}
	slog.Error("reply failed", "session", sessionID, "error", err)
	if rerr := c.History.RecoverFromError(sessionID, Apology); rerr != nil {
		slog.Debug("recovery for unknown session", "session", sessionID, "error", rerr)
	}
}
