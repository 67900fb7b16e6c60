// Package llm defines the chat session boundary to a hosted model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"personachat/internal/models"
)

// Provider opens chat sessions against one model backend.
type Provider interface {
	Name() string
	NewSession(ctx context.Context, systemInstruction string, history []models.ChatMessage) (Session, error)
}

// Session is one conversation handle. Each call returns a finite,
// non-restartable sequence that ends when the service closes the stream.
type Session interface {
	SendMessageStream(ctx context.Context, text string) iter.Seq2[Chunk, error]
	SendToolResponses(ctx context.Context, responses []ToolResponse) iter.Seq2[Chunk, error]
}

// Chunk is one streamed piece of a reply.
type Chunk struct {
	Text      string
	ToolCalls []ToolCall
}

type ToolCall struct {
	ID   string // empty when the backend does not assign call ids
	Name string
	Args map[string]any
	// RawArgs holds undecoded JSON arguments from backends that stream
	// them as text. Args is nil when RawArgs is set.
	RawArgs string
}

type ToolResponse struct {
	ID     string
	Name   string
	Result map[string]any
}

// TransportError reports a failed call to, or broken stream from, the
// model service.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError unless it already is one.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// Fail returns a sequence that yields err once.
func Fail(err error) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		yield(Chunk{}, err)
	}
}

// TrimHistory drops empty messages, which backends reject as turns.
func TrimHistory(history []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
