// Package store persists the last-used settings and the session list in
// two fixed keys of the local database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"personachat/internal/db"
	"personachat/internal/models"
)

// PersistenceError is a failed read or write of a stored key. It is
// logged, never shown to the user.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type Store struct {
	DB *sql.DB
}

func New(conn *sql.DB) *Store {
	return &Store{DB: conn}
}

// LoadSettings returns the stored settings, or the defaults when the key
// is absent or unreadable.
func (s *Store) LoadSettings() models.AppSettings {
	raw, ok, err := s.get(SettingsKey)
	if err != nil || !ok {
		return models.DefaultSettings()
	}
	settings, err := DecodeSettings(raw)
	if err != nil {
		logPersistence(&PersistenceError{Op: "decode", Key: SettingsKey, Err: err})
		return models.DefaultSettings()
	}
	return settings
}

// LoadSessions returns the stored sessions newest-first, or an empty list
// when the key is absent or unreadable.
func (s *Store) LoadSessions() []models.ChatSession {
	raw, ok, err := s.get(HistoryKey)
	if err != nil || !ok {
		return []models.ChatSession{}
	}
	sessions, err := DecodeSessions(raw)
	if err != nil {
		logPersistence(&PersistenceError{Op: "decode", Key: HistoryKey, Err: err})
		return []models.ChatSession{}
	}
	return sessions
}

func (s *Store) SaveSettings(settings models.AppSettings) error {
	raw, err := EncodeSettings(settings)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: SettingsKey, Err: err}
	}
	return s.put(SettingsKey, raw)
}

func (s *Store) SaveSessions(sessions []models.ChatSession) error {
	raw, err := EncodeSessions(sessions)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: HistoryKey, Err: err}
	}
	return s.put(HistoryKey, raw)
}

func (s *Store) ClearHistory() error {
	return s.delete(HistoryKey)
}

var errNoDB = errors.New("history database not initialized")

func (s *Store) get(key string) (string, bool, error) {
	if s.DB == nil {
		return "", false, &PersistenceError{Op: "read", Key: key, Err: errNoDB}
	}
	raw, ok, err := db.GetValue(s.DB, key)
	if err != nil {
		perr := &PersistenceError{Op: "read", Key: key, Err: err}
		logPersistence(perr)
		return "", false, perr
	}
	return raw, ok, nil
}

func (s *Store) put(key, raw string) error {
	if s.DB == nil {
		return &PersistenceError{Op: "write", Key: key, Err: errNoDB}
	}
	if err := db.PutValue(s.DB, key, raw); err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (s *Store) delete(key string) error {
	if s.DB == nil {
		return &PersistenceError{Op: "delete", Key: key, Err: errNoDB}
	}
	if err := db.DeleteValue(s.DB, key); err != nil {
		return &PersistenceError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func logPersistence(err error) {
	slog.Warn("persistence failure", "err", err)
}

// Writer applies saves on a background goroutine. Values are encoded on
// the caller's goroutine; only the newest pending value per key is kept.
type Writer struct {
	store *Store

	mu      sync.Mutex
	pending map[string]*string // nil value deletes the key
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func NewWriter(s *Store) *Writer {
	w := &Writer{
		store:   s,
		pending: map[string]*string{},
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) SaveSettings(settings models.AppSettings) {
	raw, err := EncodeSettings(settings)
	if err != nil {
		logPersistence(&PersistenceError{Op: "encode", Key: SettingsKey, Err: err})
		return
	}
	w.enqueue(SettingsKey, &raw)
}

func (w *Writer) SaveSessions(sessions []models.ChatSession) {
	raw, err := EncodeSessions(sessions)
	if err != nil {
		logPersistence(&PersistenceError{Op: "encode", Key: HistoryKey, Err: err})
		return
	}
	w.enqueue(HistoryKey, &raw)
}

func (w *Writer) ClearHistory() {
	w.enqueue(HistoryKey, nil)
}

// Close writes anything still pending and stops the goroutine.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()

	<-w.done
	return nil
}

func (w *Writer) enqueue(key string, value *string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		// late writes go straight through once the final flush is done
		<-w.done
		w.apply(key, value)
		return
	}
	w.pending[key] = value
	select {
	case w.wake <- struct{}{}:
	default:
	}
	w.mu.Unlock()
}

func (w *Writer) run() {
	defer close(w.done)
	for range w.wake {
		w.flush()
	}
	w.flush()
}

func (w *Writer) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = map[string]*string{}
	w.mu.Unlock()

	for key, value := range batch {
		w.apply(key, value)
	}
}

func (w *Writer) apply(key string, value *string) {
	var err error
	if value == nil {
		err = w.store.delete(key)
	} else {
		err = w.store.put(key, *value)
	}
	if err != nil {
		logPersistence(err)
	}
}
