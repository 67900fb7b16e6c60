package models

import "time"

type Persona string

const (
	PersonaFriend      Persona = "Friend"
	PersonaFather      Persona = "Father"
	PersonaMother      Persona = "Mother"
	PersonaSon         Persona = "Son"
	PersonaDaughter    Persona = "Daughter"
	PersonaBrother     Persona = "Brother"
	PersonaSister      Persona = "Sister"
	PersonaGrandfather Persona = "Grandfather"
	PersonaGrandmother Persona = "Grandmother"
	PersonaHusband     Persona = "Husband"
	PersonaWife        Persona = "Wife"
	PersonaUncle       Persona = "Uncle"
	PersonaCousin      Persona = "Cousin"
	PersonaAunt        Persona = "Aunt"
)

// Personas lists every selectable persona in display order.
var Personas = []Persona{
	PersonaFriend, PersonaFather, PersonaMother, PersonaSon, PersonaDaughter,
	PersonaBrother, PersonaSister, PersonaGrandfather, PersonaGrandmother,
	PersonaHusband, PersonaWife, PersonaUncle, PersonaCousin, PersonaAunt,
}

func (p Persona) Valid() bool {
	for _, known := range Personas {
		if p == known {
			return true
		}
	}
	return false
}

type Language string

const (
	LanguageUrdu     Language = "Urdu"
	LanguageGujarati Language = "Gujarati"
	LanguageTamil    Language = "Tamil"
	LanguageTelugu   Language = "Telugu"
	LanguageMarathi  Language = "Marathi"
	LanguageHindi    Language = "Hindi"
	LanguageKannada  Language = "Kannada"
)

var Languages = []Language{
	LanguageUrdu, LanguageGujarati, LanguageTamil, LanguageTelugu,
	LanguageMarathi, LanguageHindi, LanguageKannada,
}

func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// ScriptMode selects between a language's own writing system and a
// Latin-letter transliteration.
type ScriptMode string

const (
	ScriptNative         ScriptMode = "native"
	ScriptTransliterated ScriptMode = "transliterated"
)

var ScriptModes = []ScriptMode{ScriptNative, ScriptTransliterated}

func (s ScriptMode) Valid() bool {
	return s == ScriptNative || s == ScriptTransliterated
}

// Label is the user-facing name of the script mode.
func (s ScriptMode) Label() string {
	switch s {
	case ScriptNative:
		return "Native Script"
	case ScriptTransliterated:
		return "English Letters"
	default:
		return string(s)
	}
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is one conversation with a configured persona. Only the
// message list and Timestamp change after creation.
type ChatSession struct {
	ID         string        `json:"id"`
	Persona    Persona       `json:"persona"`
	Character  string        `json:"character"`
	Language   Language      `json:"language"`
	ScriptMode ScriptMode    `json:"scriptMode"`
	Messages   []ChatMessage `json:"messages"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Settings returns the form values the session was started with.
func (s ChatSession) Settings() AppSettings {
	return AppSettings{
		Persona:    s.Persona,
		Character:  s.Character,
		Language:   s.Language,
		ScriptMode: s.ScriptMode,
	}
}

// LastMessage returns the final message in the session, if any.
func (s ChatSession) LastMessage() (ChatMessage, bool) {
	if len(s.Messages) == 0 {
		return ChatMessage{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Clone returns a copy that shares no message storage with s.
func (s ChatSession) Clone() ChatSession {
	c := s
	c.Messages = append([]ChatMessage(nil), s.Messages...)
	return c
}

// AppSettings holds the last-used setup form values.
type AppSettings struct {
	Persona    Persona    `json:"persona"`
	Character  string     `json:"character"`
	Language   Language   `json:"language"`
	ScriptMode ScriptMode `json:"scriptMode"`
}

func DefaultSettings() AppSettings {
	return AppSettings{
		Persona:    Personas[0],
		Language:   Languages[0],
		ScriptMode: ScriptNative,
	}
}
