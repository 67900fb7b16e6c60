// Package app holds the screen state machine and the controller that
// ties it to history, persistence and the model backend.
package app

import (
	"fmt"
	"strings"

	"personachat/internal/models"
)

type View int

const (
	ViewLanding View = iota
	ViewSetup
	ViewChat
)

func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewSetup:
		return "setup"
	case ViewChat:
		return "chat"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// State is everything the screens render from, apart from the sessions
// themselves.
type State struct {
	View             View
	Settings         models.AppSettings
	CurrentSessionID string
	Loading          bool
	Validation       string
	Notice           string
}

// Event is a user intent fed to Reduce.
type Event interface{ event() }

type (
	GetStarted    struct{}
	GoBack        struct{}
	SelectSession struct{ ID string }
	// StartChat carries the setup form values at the time of submit.
	StartChat       struct{ Settings models.AppSettings }
	SettingsChanged struct{ Settings models.AppSettings }
	ResetSettings   struct{}
	ClearHistory    struct{}
)

func (GetStarted) event()      {}
func (GoBack) event()          {}
func (SelectSession) event()   {}
func (StartChat) event()       {}
func (SettingsChanged) event() {}
func (ResetSettings) event()   {}
func (ClearHistory) event()    {}

// Effect names the side effect the controller must carry out for a
// transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectPersistSettings
	EffectCreateSession
	EffectOpenSession
	EffectClearHistory
)

// Reduce computes the next state for ev. Events that do not apply to the
// current view leave the state unchanged.
func Reduce(s State, ev Event) (State, Effect) {
	switch ev := ev.(type) {
	case GetStarted:
		if s.View != ViewLanding {
			return s, EffectNone
		}
		s.View = ViewSetup
		s.Validation = ""
		s.Notice = ""
		return s, EffectNone

	case GoBack:
		switch s.View {
		case ViewSetup:
			s.View = ViewLanding
			s.Validation = ""
		case ViewChat:
			s.View = ViewLanding
			s.CurrentSessionID = ""
			s.Loading = false
		}
		s.Notice = ""
		return s, EffectNone

	case SelectSession:
		if s.View != ViewLanding || ev.ID == "" {
			return s, EffectNone
		}
		s.View = ViewChat
		s.CurrentSessionID = ev.ID
		s.Notice = ""
		return s, EffectOpenSession

	case StartChat:
		if s.View != ViewSetup {
			return s, EffectNone
		}
		s.Settings = ev.Settings
		if err := Validate(ev.Settings); err != nil {
			s.Validation = err.Error()
			return s, EffectNone
		}
		s.View = ViewChat
		s.Validation = ""
		s.Notice = ""
		s.Loading = false
		return s, EffectCreateSession

	case SettingsChanged:
		s.Settings = ev.Settings
		s.Validation = ""
		return s, EffectPersistSettings

	case ResetSettings:
		s.Settings = models.DefaultSettings()
		s.Validation = ""
		return s, EffectPersistSettings

	case ClearHistory:
		if s.View != ViewLanding {
			return s, EffectNone
		}
		s.Notice = "Chat history cleared."
		return s, EffectClearHistory
	}
	return s, EffectNone
}

// ValidationError reports the first setup field that keeps a chat from
// starting.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field == "character" {
		return "Describe the character before starting."
	}
	return fmt.Sprintf("Choose a %s before starting.", e.Field)
}

func Validate(s models.AppSettings) error {
	switch {
	case !s.Persona.Valid():
		return &ValidationError{Field: "persona"}
	case strings.TrimSpace(s.Character) == "":
		return &ValidationError{Field: "character"}
	case !s.Language.Valid():
		return &ValidationError{Field: "language"}
	case !s.ScriptMode.Valid():
		return &ValidationError{Field: "script mode"}
	}
	return nil
}
