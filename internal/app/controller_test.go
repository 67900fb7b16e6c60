package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/chat"
	"personachat/internal/history"
	"personachat/internal/llm"
	"personachat/internal/llm/llmtest"
	"personachat/internal/models"
	"personachat/internal/prompt"
	"personachat/internal/tools"
)

type settingsRecorder struct {
	saved []models.AppSettings
}

func (r *settingsRecorder) SaveSettings(s models.AppSettings) { r.saved = append(r.saved, s) }

type fixture struct {
	ctl      *Controller
	provider *llmtest.Provider
	settings *settingsRecorder
}

func newFixture(scripts ...[]llmtest.Step) fixture {
	provider := &llmtest.Provider{Session: llmtest.NewSession(scripts...)}
	rec := &settingsRecorder{}
	registry := &tools.Registry{Now: func() time.Time {
		return time.Date(2025, 3, 4, 15, 0, 0, 0, time.Local)
	}}
	ctl := NewController(models.DefaultSettings(), history.NewManager(nil, nil), rec, provider, chat.NewReducer(registry))
	return fixture{ctl: ctl, provider: provider, settings: rec}
}

func (f fixture) startChat(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.ctl.Dispatch(ctx, GetStarted{}))
	require.NoError(t, f.ctl.Dispatch(ctx, StartChat{Settings: validSettings()}))
	require.Equal(t, ViewChat, f.ctl.State().View)
	return f.ctl.State().CurrentSessionID
}

// send runs a whole turn the way the UI does, applying deltas as they come.
func (f fixture) send(t *testing.T, text string) {
	t.Helper()
	turn, err := f.ctl.BeginSend(text)
	require.NoError(t, err)
	content, err := turn.Run(context.Background(), chat.Hooks{
		OnUpdate: func(c string) { f.ctl.ApplyDelta(turn.SessionID, c) },
	})
	f.ctl.FinishSend(turn.SessionID, content, err)
}

func TestStartChatCreatesSession(t *testing.T) {
	f := newFixture()
	id := f.startChat(t)

	sess, ok := f.ctl.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
	assert.Empty(t, sess.Messages)
	assert.Equal(t, validSettings(), sess.Settings())

	require.Len(t, f.provider.Instructions, 1)
	assert.Equal(t, prompt.ForSettings(validSettings()), f.provider.Instructions[0])
	require.NotEmpty(t, f.settings.saved)
	assert.Equal(t, validSettings(), f.settings.saved[len(f.settings.saved)-1])
}

func TestStartChatWithBlankCharacter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Dispatch(ctx, GetStarted{}))

	s := validSettings()
	s.Character = "   "
	require.NoError(t, f.ctl.Dispatch(ctx, StartChat{Settings: s}))

	assert.Equal(t, ViewSetup, f.ctl.State().View)
	assert.NotEmpty(t, f.ctl.State().Validation)
	assert.Zero(t, f.ctl.History.Len())
	assert.Empty(t, f.provider.Instructions)
}

func TestStartChatBackendFailureKeepsView(t *testing.T) {
	f := newFixture()
	f.provider.Err = errors.New("dial tcp: refused")
	ctx := context.Background()
	require.NoError(t, f.ctl.Dispatch(ctx, GetStarted{}))

	err := f.ctl.Dispatch(ctx, StartChat{Settings: validSettings()})

	var te *llm.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ViewSetup, f.ctl.State().View)
	assert.Contains(t, f.ctl.State().Notice, "refused")
	assert.Zero(t, f.ctl.History.Len())
}

func TestSendStreamsIntoOneModelMessage(t *testing.T) {
	f := newFixture(llmtest.Script(llmtest.Text("Hel"), llmtest.Text("lo")))
	id := f.startChat(t)

	f.send(t, "  Hi  ")

	sess, _ := f.ctl.History.Find(id)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleModel, Content: "Hello"},
	}, sess.Messages)
	assert.False(t, f.ctl.State().Loading)
	assert.False(t, f.ctl.History.Sending(id))
}

func TestSendWithToolCall(t *testing.T) {
	f := newFixture(
		llmtest.Script(llmtest.Calls(llm.ToolCall{ID: "c1", Name: tools.CurrentDateTime})),
		llmtest.Script(llmtest.Text("It is "), llmtest.Text("3pm.")),
	)
	id := f.startChat(t)

	f.send(t, "What time is it?")

	sess, _ := f.ctl.History.Find(id)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "It is 3pm.", sess.Messages[1].Content)

	responses := f.provider.Session.Responses
	require.Len(t, responses, 1)
	require.Len(t, responses[0], 1)
	assert.Equal(t, "c1", responses[0][0].ID)
	assert.Equal(t, "3/4/2025, 3:00:00 PM", responses[0][0].Result["result"])
}

func TestSendFailureAfterPartialText(t *testing.T) {
	f := newFixture(llmtest.Script(llmtest.Text("Sor"), llmtest.Error(errors.New("stream reset"))))
	id := f.startChat(t)

	f.send(t, "Hi")

	sess, _ := f.ctl.History.Find(id)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleModel, Content: "Sor"},
		{Role: models.RoleModel, Content: Apology},
	}, sess.Messages)
	assert.False(t, f.ctl.State().Loading)
}

func TestSendFailureBeforeAnyText(t *testing.T) {
	f := newFixture(llmtest.Script(llmtest.Error(errors.New("503"))))
	id := f.startChat(t)

	f.send(t, "Hi")

	sess, _ := f.ctl.History.Find(id)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleModel, Content: Apology},
	}, sess.Messages)
}

func TestBeginSendGuards(t *testing.T) {
	f := newFixture()

	_, err := f.ctl.BeginSend("Hi")
	assert.ErrorIs(t, err, ErrNoActiveChat)

	f.startChat(t)

	_, err = f.ctl.BeginSend("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.ctl.BeginSend("first")
	require.NoError(t, err)
	_, err = f.ctl.BeginSend("second")
	assert.ErrorIs(t, err, history.ErrSendInFlight)

	sess, _ := f.ctl.CurrentSession()
	assert.Len(t, sess.Messages, 2, "rejected send leaves the transcript alone")
}

func TestBeginSendOnVanishedSession(t *testing.T) {
	f := newFixture()
	id := f.startChat(t)
	f.ctl.History.ClearAll()

	_, err := f.ctl.BeginSend("Hi")
	assert.ErrorIs(t, err, history.ErrSessionNotFound)
	assert.False(t, f.ctl.State().Loading)
	assert.False(t, f.ctl.History.Sending(id), "failed send does not hold the slot")
}

func TestSelectSessionHydratesHistory(t *testing.T) {
	f := newFixture(llmtest.Script(llmtest.Text("Hello")))
	ctx := context.Background()
	id := f.startChat(t)
	f.send(t, "Hi")

	require.NoError(t, f.ctl.Dispatch(ctx, GoBack{}))
	assert.Equal(t, ViewLanding, f.ctl.State().View)

	require.NoError(t, f.ctl.Dispatch(ctx, SelectSession{ID: id}))
	assert.Equal(t, ViewChat, f.ctl.State().View)
	assert.Equal(t, id, f.ctl.State().CurrentSessionID)

	require.Len(t, f.provider.Histories, 2)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleModel, Content: "Hello"},
	}, f.provider.Histories[1])
	assert.Equal(t, prompt.ForSettings(validSettings()), f.provider.Instructions[1])
}

func TestSelectMissingSession(t *testing.T) {
	f := newFixture()
	err := f.ctl.Dispatch(context.Background(), SelectSession{ID: "gone"})
	assert.ErrorIs(t, err, history.ErrSessionNotFound)
	assert.Equal(t, ViewLanding, f.ctl.State().View)
	assert.NotEmpty(t, f.ctl.State().Notice)
}

func TestReplyFinishingAfterLeavingChat(t *testing.T) {
	f := newFixture(llmtest.Script(llmtest.Text("Hello")))
	ctx := context.Background()
	id := f.startChat(t)

	turn, err := f.ctl.BeginSend("Hi")
	require.NoError(t, err)
	require.NoError(t, f.ctl.Dispatch(ctx, GoBack{}))

	content, err := turn.Run(ctx, chat.Hooks{})
	f.ctl.FinishSend(turn.SessionID, content, err)

	sess, _ := f.ctl.History.Find(id)
	assert.Equal(t, "Hello", sess.Messages[1].Content)
	assert.False(t, f.ctl.History.Sending(id))
}

func TestClearHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.startChat(t)
	require.NoError(t, f.ctl.Dispatch(ctx, GoBack{}))

	require.NoError(t, f.ctl.Dispatch(ctx, ClearHistory{}))
	assert.Zero(t, f.ctl.History.Len())
}

func TestSettingsChangesArePersisted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Dispatch(ctx, GetStarted{}))

	s := validSettings()
	require.NoError(t, f.ctl.Dispatch(ctx, SettingsChanged{Settings: s}))
	require.NoError(t, f.ctl.Dispatch(ctx, ResetSettings{}))

	assert.Equal(t, []models.AppSettings{s, models.DefaultSettings()}, f.settings.saved)
}
