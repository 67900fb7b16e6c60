package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"personachat/internal/llm"
	"personachat/internal/models"
	"personachat/internal/tools"
)

func TestChunkFromResponse(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{Text: "thinking...", Thought: true},
					{Text: "Hel"},
					{FunctionCall: &genai.FunctionCall{ID: "c1", Name: tools.CurrentDateTime}},
				},
			},
		}},
	}

	chunk := ChunkFromResponse(res)
	assert.Equal(t, "Hel", chunk.Text)
	require.Len(t, chunk.ToolCalls, 1)
	assert.Equal(t, "c1", chunk.ToolCalls[0].ID)
	assert.Equal(t, tools.CurrentDateTime, chunk.ToolCalls[0].Name)
}

func TestChunkFromResponse_Empty(t *testing.T) {
	assert.Equal(t, llm.Chunk{}, ChunkFromResponse(nil))
	assert.Equal(t, llm.Chunk{}, ChunkFromResponse(&genai.GenerateContentResponse{}))
}

func TestFunctionResponseParts(t *testing.T) {
	parts := FunctionResponseParts([]llm.ToolResponse{
		{ID: "c1", Name: tools.CurrentDateTime, Result: map[string]any{"result": "now"}},
	})
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].FunctionResponse)
	assert.Equal(t, "c1", parts[0].FunctionResponse.ID)
	assert.Equal(t, tools.CurrentDateTime, parts[0].FunctionResponse.Name)
	assert.Equal(t, "now", parts[0].FunctionResponse.Response["result"])
}

func TestFunctionDeclarations(t *testing.T) {
	decls := FunctionDeclarations(tools.Definitions)
	require.Len(t, decls, 1)
	assert.Equal(t, tools.CurrentDateTime, decls[0].Name)
	assert.Empty(t, FunctionDeclarations(nil))
}

func TestHistoryContents(t *testing.T) {
	history := HistoryContents([]models.ChatMessage{
		{Role: models.RoleUser, Content: "namaste"},
		{Role: models.RoleModel, Content: "namaste beta"},
		{Role: models.RoleModel, Content: ""},
	})
	require.Len(t, history, 2)
	assert.Equal(t, "user", string(history[0].Role))
	assert.Equal(t, "model", string(history[1].Role))
	assert.Equal(t, "namaste beta", history[1].Parts[0].Text)
}
