package openrouter

import (
	"context"
	"encoding/json"
	"iter"
	"slices"
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"personachat/internal/llm"
	"personachat/internal/models"
	"personachat/internal/tools"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemini-2.5-flash"
)

type Provider struct {
	Client openai.Client
	Model  string
	Tools  []openai.ChatCompletionToolUnionParam
}

// NewProvider builds a client for any OpenAI-compatible endpoint.
func NewProvider(apiKey, baseURL, model string, defs []tools.Definition, opts ...option.RequestOption) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHeader("X-Title", "Persona Chat"),
	}
	reqOpts = append(reqOpts, opts...)

	return &Provider{
		Client: openai.NewClient(reqOpts...),
		Model:  model,
		Tools:  ToolParams(defs),
	}
}

func (p *Provider) Name() string { return "openrouter/" + p.Model }

func (p *Provider) NewSession(_ context.Context, systemPrompt string, pastMessages []models.ChatMessage) (llm.Session, error) {
	history := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}
	for _, msg := range llm.TrimHistory(pastMessages) {
		switch msg.Role {
		case models.RoleUser:
			history = append(history, openai.UserMessage(msg.Content))
		case models.RoleModel:
			history = append(history, openai.AssistantMessage(msg.Content))
		}
	}
	return &ChatSession{provider: p, History: history}, nil
}

// unansweredToolResult stands in for calls the caller dropped. The API
// rejects a request while any tool_call_id in the history lacks a reply.
const unansweredToolResult = `{"error":"unknown tool"}`

// ChatSession keeps the running message list, since the completions API
// is stateless.
type ChatSession struct {
	provider *Provider
	History  []openai.ChatCompletionMessageParamUnion
	// Pending lists tool call ids from the last assistant turn that have
	// no tool message yet, in call order.
	Pending []string
}

func (s *ChatSession) SendMessageStream(ctx context.Context, text string) iter.Seq2[llm.Chunk, error] {
	s.answerPending()
	s.History = append(s.History, openai.UserMessage(text))
	return s.stream(ctx, "send message")
}

func (s *ChatSession) SendToolResponses(ctx context.Context, responses []llm.ToolResponse) iter.Seq2[llm.Chunk, error] {
	for _, r := range responses {
		data, err := json.Marshal(r.Result)
		if err != nil {
			return llm.Fail(llm.Transport("encode tool response", err))
		}
		s.History = append(s.History, openai.ToolMessage(string(data), r.ID))
		s.Pending = slices.DeleteFunc(s.Pending, func(id string) bool { return id == r.ID })
	}
	s.answerPending()
	return s.stream(ctx, "send tool responses")
}

// answerPending closes out every call still waiting for a tool message.
func (s *ChatSession) answerPending() {
	for _, id := range s.Pending {
		s.History = append(s.History, openai.ToolMessage(unansweredToolResult, id))
	}
	s.Pending = nil
}

func (s *ChatSession) stream(ctx context.Context, op string) iter.Seq2[llm.Chunk, error] {
	return func(yield func(llm.Chunk, error) bool) {
		params := openai.ChatCompletionNewParams{
			Model:    s.provider.Model,
			Messages: s.History,
		}
		if len(s.provider.Tools) > 0 {
			params.Tools = s.provider.Tools
		}

		stream := s.provider.Client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}
		calls := map[int64]*pendingCall{}
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			for _, tc := range delta.ToolCalls {
				pc, ok := calls[tc.Index]
				if !ok {
					pc = &pendingCall{}
					calls[tc.Index] = pc
				}
				if tc.ID != "" {
					pc.id = tc.ID
				}
				pc.name += tc.Function.Name
				pc.args += tc.Function.Arguments
			}
			if delta.Content != "" {
				if !yield(llm.Chunk{Text: delta.Content}, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(llm.Chunk{}, llm.Transport(op, err))
			return
		}

		if len(acc.Choices) > 0 {
			s.History = append(s.History, acc.Choices[0].Message.ToParam())
		}
		if len(calls) > 0 {
			collected := collectCalls(calls)
			for _, c := range collected {
				if c.ID != "" {
					s.Pending = append(s.Pending, c.ID)
				}
			}
			yield(llm.Chunk{ToolCalls: collected}, nil)
		}
	}
}

type pendingCall struct {
	id   string
	name string
	args string
}

// collectCalls orders accumulated tool calls by stream index. Arguments
// stay raw; the tool registry decodes them.
func collectCalls(calls map[int64]*pendingCall) []llm.ToolCall {
	idx := make([]int64, 0, len(calls))
	for i := range calls {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })

	out := make([]llm.ToolCall, 0, len(calls))
	for _, i := range idx {
		pc := calls[i]
		out = append(out, llm.ToolCall{ID: pc.id, Name: pc.name, RawArgs: pc.args})
	}
	return out
}

func ToolParams(defs []tools.Definition) []openai.ChatCompletionToolUnionParam {
	params := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, d := range defs {
		params = append(params, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        d.Name,
			Description: openai.String(d.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": map[string]interface{}{},
				"required":   []string{},
			},
		}))
	}
	return params
}
