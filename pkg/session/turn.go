package session

import "slices"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolInvocation is one structured tool request emitted by the model.
type ToolInvocation struct {
	CorrelationID string
	ToolName      string
	RawArguments  string
}

// ToolResult is the textual outcome of exactly one ToolInvocation.
type ToolResult struct {
	CorrelationID string
	ToolName      string
	Output        string
}

// Turn is one entry of the conversation log. Invocations is only set on
// assistant turns that request tools; Result is only set on tool turns.
type Turn struct {
	Role        Role
	Content     string
	Invocations []ToolInvocation
	Result      *ToolResult
}

// UserTurn builds a user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: text}
}

// AssistantTurn builds an assistant turn carrying zero or more invocations.
func AssistantTurn(text string, invocations []ToolInvocation) Turn {
	return Turn{Role: RoleAssistant, Content: text, Invocations: slices.Clone(invocations)}
}

// ToolResultTurn builds a tool-result turn whose content mirrors the output.
func ToolResultTurn(result ToolResult) Turn {
	return Turn{Role: RoleTool, Content: result.Output, Result: &result}
}

// RequestsTools reports whether the turn is an assistant turn with invocations.
func (t Turn) RequestsTools() bool {
	return t.Role == RoleAssistant && len(t.Invocations) > 0
}

func (t Turn) clone() Turn {
	out := t
	out.Invocations = slices.Clone(t.Invocations)
	if t.Result != nil {
		r := *t.Result
		out.Result = &r
	}
	return out
}
