package gemini

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"personachat/internal/llm"
	"personachat/internal/models"
	"personachat/internal/tools"
)

const DefaultModel = "gemini-2.5-flash"

type Provider struct {
	client *genai.Client
	model  string
	tools  []tools.Definition
}

type ChatSession struct {
	chat *genai.Chat
}

// NewProvider connects to the Gemini API. defs may be nil, in which case
// sessions are created without function declarations.
func NewProvider(ctx context.Context, apiKey, model string, defs []tools.Definition) (*Provider, error) {
	genClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}

	return &Provider{
		client: genClient,
		model:  model,
		tools:  defs,
	}, nil
}

func (p *Provider) Name() string { return "gemini/" + p.model }

func (p *Provider) NewSession(ctx context.Context, systemPrompt string, pastMessages []models.ChatMessage) (llm.Session, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if decls := FunctionDeclarations(p.tools); len(decls) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	chat, err := p.client.Chats.Create(ctx, p.model, config, HistoryContents(pastMessages))
	if err != nil {
		return nil, llm.Transport("create chat", err)
	}

	return &ChatSession{chat: chat}, nil
}

func (s *ChatSession) SendMessageStream(ctx context.Context, userMessage string) iter.Seq2[llm.Chunk, error] {
	return stream("send message", s.chat.SendMessageStream(ctx, genai.Part{Text: userMessage}))
}

func (s *ChatSession) SendToolResponses(ctx context.Context, responses []llm.ToolResponse) iter.Seq2[llm.Chunk, error] {
	return stream("send tool responses", s.chat.SendMessageStream(ctx, FunctionResponseParts(responses)...))
}

func stream(op string, src iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[llm.Chunk, error] {
	return func(yield func(llm.Chunk, error) bool) {
		for res, err := range src {
			if err != nil {
				yield(llm.Chunk{}, llm.Transport(op, err))
				return
			}
			if !yield(ChunkFromResponse(res), nil) {
				return
			}
		}
	}
}

// ChunkFromResponse extracts text and function calls from one streamed
// response. Blocked or empty candidates produce an empty chunk.
func ChunkFromResponse(res *genai.GenerateContentResponse) llm.Chunk {
	var chunk llm.Chunk
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return chunk
	}
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" && !part.Thought {
			chunk.Text += part.Text
		}
		if fc := part.FunctionCall; fc != nil {
			chunk.ToolCalls = append(chunk.ToolCalls, llm.ToolCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
	}
	return chunk
}

func FunctionDeclarations(defs []tools.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, d := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		})
	}
	return decls
}

func FunctionResponseParts(responses []llm.ToolResponse) []genai.Part {
	parts := make([]genai.Part, 0, len(responses))
	for _, r := range responses {
		parts = append(parts, genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       r.ID,
				Name:     r.Name,
				Response: r.Result,
			},
		})
	}
	return parts
}

// HistoryContents converts stored messages into chat history. Empty
// placeholders are skipped.
func HistoryContents(messages []models.ChatMessage) []*genai.Content {
	history := []*genai.Content{}
	for _, msg := range llm.TrimHistory(messages) {
		role := genai.Role(genai.RoleUser)
		if msg.Role == models.RoleModel {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(msg.Content, role))
	}
	return history
}
