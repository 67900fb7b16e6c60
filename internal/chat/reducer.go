// Package chat folds a streamed model reply, including one tool-call
// round trip, into a single message.
package chat

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"personachat/internal/llm"
	"personachat/internal/tools"
)

// Hooks receive progress while a reply streams. Either may be nil.
type Hooks struct {
	// OnUpdate gets the full accumulated text after every delta.
	OnUpdate func(content string)
	// OnToolResult fires once per resolved tool call.
	OnToolResult func(name string, result map[string]any)
}

type Reducer struct {
	Tools *tools.Registry
}

func NewReducer(registry *tools.Registry) *Reducer {
	return &Reducer{Tools: registry}
}

// Run sends text on sess and returns the reply. On failure the partial
// reply is returned along with a *llm.TransportError.
func (r *Reducer) Run(ctx context.Context, sess llm.Session, text string, hooks Hooks) (string, error) {
	var acc strings.Builder

	calls, err := consume(sess.SendMessageStream(ctx, text), &acc, hooks)
	if err != nil {
		return acc.String(), llm.Transport("stream reply", err)
	}
	if len(calls) == 0 {
		return acc.String(), nil
	}

	responses := r.resolve(calls, hooks)
	if len(responses) == 0 {
		return acc.String(), nil
	}

	// a second round of calls from the follow-up is not answered
	if _, err := consume(sess.SendToolResponses(ctx, responses), &acc, hooks); err != nil {
		return acc.String(), llm.Transport("stream follow-up", err)
	}
	return acc.String(), nil
}

func consume(seq iter.Seq2[llm.Chunk, error], acc *strings.Builder, hooks Hooks) ([]llm.ToolCall, error) {
	var calls []llm.ToolCall
	for chunk, err := range seq {
		if err != nil {
			return calls, err
		}
		if chunk.Text != "" {
			acc.WriteString(chunk.Text)
			if hooks.OnUpdate != nil {
				hooks.OnUpdate(acc.String())
			}
		}
		calls = append(calls, chunk.ToolCalls...)
	}
	return calls, nil
}

func (r *Reducer) resolve(calls []llm.ToolCall, hooks Hooks) []llm.ToolResponse {
	responses := make([]llm.ToolResponse, 0, len(calls))
	for _, call := range calls {
		if !tools.IsKnownToolName(call.Name) {
			slog.Debug("dropping unrecognized tool call", "tool", call.Name)
			continue
		}
		result, ok, err := r.execute(call)
		if err != nil {
			slog.Warn("dropping tool call with bad arguments", "tool", call.Name, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if hooks.OnToolResult != nil {
			hooks.OnToolResult(call.Name, result)
		}
		responses = append(responses, llm.ToolResponse{
			ID:     call.ID,
			Name:   call.Name,
			Result: result,
		})
	}
	return responses
}

func (r *Reducer) execute(call llm.ToolCall) (map[string]any, bool, error) {
	if call.RawArgs != "" {
		return r.Tools.ExecuteJSON(call.Name, call.RawArgs)
	}
	result, ok := r.Tools.Execute(call.Name, call.Args)
	return result, ok, nil
}
