package tools

import (
	"encoding/json"
	"fmt"
	"time"
)

const CurrentDateTime = "getCurrentDateTime"

// Definition describes a callable tool independently of any model SDK.
type Definition struct {
	Name        string
	Description string
}

var Definitions = []Definition{
	{
		Name:        CurrentDateTime,
		Description: "Get the current local date and time.",
	},
}

// Registry resolves tool calls. The zero value uses the wall clock.
type Registry struct {
	Now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{Now: time.Now}
}

func (r *Registry) Declarations() []Definition {
	return Definitions
}

// Execute runs the named tool. ok is false for names the registry does
// not recognize; such calls are dropped by the caller.
func (r *Registry) Execute(name string, args map[string]any) (result map[string]any, ok bool) {
	switch name {
	case CurrentDateTime:
		return map[string]any{"result": r.now().Format("1/2/2006, 3:04:05 PM")}, true
	default:
		return nil, false
	}
}

// ExecuteJSON is Execute for backends that carry arguments as raw JSON.
func (r *Registry) ExecuteJSON(name string, argsJSON string) (map[string]any, bool, error) {
	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return nil, false, fmt.Errorf("decode %s arguments: %w", name, err)
		}
	}
	res, ok := r.Execute(name, args)
	return res, ok, nil
}

func (r *Registry) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// IsKnownToolName reports whether name is resolvable by a Registry.
func IsKnownToolName(name string) bool {
	for _, d := range Definitions {
		if d.Name == name {
			return true
		}
	}
	return false
}

// GenerateToolSummary is the one-line description shown in the
// transcript while a reply is being produced.
func GenerateToolSummary(name string, result map[string]any) string {
	switch name {
	case CurrentDateTime:
		if v, ok := result["result"].(string); ok {
			return fmt.Sprintf("CLOCK %s", v)
		}
		return "CLOCK"
	default:
		return name
	}
}
