package agent

import "github.com/xuanfeiren/ai-agents/pkg/session"

// Hooks observe loop progress. Every field is optional.
type Hooks struct {
	BeforeModelCall func(round int)
	AfterModelCall  func(round int, err error)
	// OnAssistantText receives text that accompanies tool requests. The final
	// answer is returned in Outcome instead.
	OnAssistantText func(text string)
	OnToolCall      func(inv session.ToolInvocation)
	OnToolResult    func(inv session.ToolInvocation, output string)
}

func (h Hooks) beforeModelCall(round int) {
	if h.BeforeModelCall != nil {
		h.BeforeModelCall(round)
	}
}

func (h Hooks) afterModelCall(round int, err error) {
	if h.AfterModelCall != nil {
		h.AfterModelCall(round, err)
	}
}

func (h Hooks) assistantText(text string) {
	if h.OnAssistantText != nil && text != "" {
		h.OnAssistantText(text)
	}
}

func (h Hooks) toolCall(inv session.ToolInvocation) {
	if h.OnToolCall != nil {
		h.OnToolCall(inv)
	}
}

func (h Hooks) toolResult(inv session.ToolInvocation, output string) {
	if h.OnToolResult != nil {
		h.OnToolResult(inv, output)
	}
}
