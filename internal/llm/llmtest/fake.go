// Package llmtest provides scripted llm sessions for tests.
package llmtest

import (
	"context"
	"iter"
	"sync"

	"personachat/internal/llm"
	"personachat/internal/models"
)

// Step is one scripted stream element. A non-nil Err ends the stream.
type Step struct {
	Chunk llm.Chunk
	Err   error
}

func Text(s string) Step           { return Step{Chunk: llm.Chunk{Text: s}} }
func Calls(c ...llm.ToolCall) Step { return Step{Chunk: llm.Chunk{ToolCalls: c}} }
func Error(err error) Step         { return Step{Err: err} }
func Script(steps ...Step) []Step  { return steps }

// Session replays one script per send, in order.
type Session struct {
	mu        sync.Mutex
	Scripts   [][]Step
	Sent      []string
	Responses [][]llm.ToolResponse
}

func NewSession(scripts ...[]Step) *Session {
	return &Session{Scripts: scripts}
}

func (s *Session) SendMessageStream(_ context.Context, text string) iter.Seq2[llm.Chunk, error] {
	s.mu.Lock()
	s.Sent = append(s.Sent, text)
	s.mu.Unlock()
	return s.next()
}

func (s *Session) SendToolResponses(_ context.Context, responses []llm.ToolResponse) iter.Seq2[llm.Chunk, error] {
	s.mu.Lock()
	s.Responses = append(s.Responses, responses)
	s.mu.Unlock()
	return s.next()
}

func (s *Session) next() iter.Seq2[llm.Chunk, error] {
	s.mu.Lock()
	var script []Step
	if len(s.Scripts) > 0 {
		script, s.Scripts = s.Scripts[0], s.Scripts[1:]
	}
	s.mu.Unlock()

	return func(yield func(llm.Chunk, error) bool) {
		for _, step := range script {
			if step.Err != nil {
				yield(llm.Chunk{}, step.Err)
				return
			}
			if !yield(step.Chunk, nil) {
				return
			}
		}
	}
}

// Provider hands out Session, recording what each session was opened
// with. Err, when set, fails NewSession.
type Provider struct {
	Session      *Session
	Err          error
	Instructions []string
	Histories    [][]models.ChatMessage
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) NewSession(_ context.Context, systemInstruction string, history []models.ChatMessage) (llm.Session, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	p.Instructions = append(p.Instructions, systemInstruction)
	p.Histories = append(p.Histories, append([]models.ChatMessage(nil), history...))
	if p.Session == nil {
		p.Session = NewSession()
	}
	return p.Session, nil
}
