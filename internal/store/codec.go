package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"personachat/internal/models"
)

const (
	SettingsKey = "persona-chat-settings"
	HistoryKey  = "persona-chat-history"

	SchemaVersion = 1
)

type settingsRecord struct {
	Version  int                `json:"version"`
	Settings models.AppSettings `json:"settings"`
}

type historyRecord struct {
	Version  int                  `json:"version"`
	Sessions []models.ChatSession `json:"sessions"`
}

// legacy browser layout: unversioned, script mode stored as languageType,
// messages as chatHistory and timestamps in unix milliseconds.
type legacySettings struct {
	Persona      *string `json:"persona"`
	Character    string  `json:"character"`
	Language     *string `json:"language"`
	LanguageType *string `json:"languageType"`
}

type legacySession struct {
	ID           string               `json:"id"`
	Persona      string               `json:"persona"`
	Character    string               `json:"character"`
	Language     string               `json:"language"`
	LanguageType string               `json:"languageType"`
	ChatHistory  []models.ChatMessage `json:"chatHistory"`
	Timestamp    int64                `json:"timestamp"`
}

type versionProbe struct {
	Version *int `json:"version"`
}

func EncodeSettings(s models.AppSettings) (string, error) {
	data, err := json.Marshal(settingsRecord{Version: SchemaVersion, Settings: s})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func EncodeSessions(sessions []models.ChatSession) (string, error) {
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	data, err := json.Marshal(historyRecord{Version: SchemaVersion, Sessions: sessions})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSettings parses a stored settings value, migrating the legacy
// layout. Unknown enum values fall back to the defaults field by field.
func DecodeSettings(raw string) (models.AppSettings, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		return models.DefaultSettings(), fmt.Errorf("settings: not a JSON object")
	}

	var probe versionProbe
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return models.DefaultSettings(), fmt.Errorf("settings: %w", err)
	}

	var s models.AppSettings
	switch {
	case probe.Version == nil:
		var legacy legacySettings
		if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
			return models.DefaultSettings(), fmt.Errorf("legacy settings: %w", err)
		}
		s = models.AppSettings{Character: legacy.Character}
		if legacy.Persona != nil {
			s.Persona = models.Persona(*legacy.Persona)
		}
		if legacy.Language != nil {
			s.Language = models.Language(*legacy.Language)
		}
		if legacy.LanguageType != nil {
			s.ScriptMode = models.ScriptMode(*legacy.LanguageType)
		}
	case *probe.Version == SchemaVersion:
		var rec settingsRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return models.DefaultSettings(), fmt.Errorf("settings v%d: %w", SchemaVersion, err)
		}
		s = rec.Settings
	default:
		return models.DefaultSettings(), fmt.Errorf("settings: unsupported version %d", *probe.Version)
	}

	return sanitizeSettings(s), nil
}

// DecodeSessions parses a stored history value. Sessions with an empty id
// or an unknown enum value are dropped; the rest are kept.
func DecodeSessions(raw string) ([]models.ChatSession, error) {
	raw = strings.TrimSpace(raw)

	var sessions []models.ChatSession
	switch {
	case strings.HasPrefix(raw, "["):
		var legacy []legacySession
		if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
			return nil, fmt.Errorf("legacy history: %w", err)
		}
		sessions = make([]models.ChatSession, 0, len(legacy))
		for _, l := range legacy {
			sessions = append(sessions, migrateSession(l))
		}
	case strings.HasPrefix(raw, "{"):
		var probe versionProbe
		if err := json.Unmarshal([]byte(raw), &probe); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		if probe.Version == nil || *probe.Version != SchemaVersion {
			return nil, fmt.Errorf("history: unsupported version")
		}
		var rec historyRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("history v%d: %w", SchemaVersion, err)
		}
		sessions = rec.Sessions
	default:
		return nil, fmt.Errorf("history: not a JSON array or object")
	}

	kept := make([]models.ChatSession, 0, len(sessions))
	for _, s := range sessions {
		if s.ID == "" || !s.Persona.Valid() || !s.Language.Valid() || !s.ScriptMode.Valid() {
			slog.Warn("dropping unreadable session", "id", s.ID, "persona", s.Persona)
			continue
		}
		if s.Messages == nil {
			s.Messages = []models.ChatMessage{}
		}
		kept = append(kept, s)
	}
	return kept, nil
}

func migrateSession(l legacySession) models.ChatSession {
	ts := time.UnixMilli(l.Timestamp)
	if l.Timestamp == 0 {
		if ms, err := strconv.ParseInt(l.ID, 10, 64); err == nil {
			ts = time.UnixMilli(ms)
		}
	}
	return models.ChatSession{
		ID:         l.ID,
		Persona:    models.Persona(l.Persona),
		Character:  l.Character,
		Language:   models.Language(l.Language),
		ScriptMode: models.ScriptMode(l.LanguageType),
		Messages:   l.ChatHistory,
		Timestamp:  ts,
	}
}

func sanitizeSettings(s models.AppSettings) models.AppSettings {
	def := models.DefaultSettings()
	if !s.Persona.Valid() {
		s.Persona = def.Persona
	}
	if !s.Language.Valid() {
		s.Language = def.Language
	}
	if !s.ScriptMode.Valid() {
		s.ScriptMode = def.ScriptMode
	}
	return s
}
