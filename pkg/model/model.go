// Package model defines the synchronous model-call contract the agent loop
// depends on, plus an OpenAI-compatible implementation.
package model

import (
	"context"

	"github.com/xuanfeiren/ai-agents/pkg/session"
	"github.com/xuanfeiren/ai-agents/pkg/tools"
)

// Response is one normalized model reply.
type Response struct {
	Text        string
	Invocations []session.ToolInvocation
	// Terminal marks a final answer; invocations on a terminal response are
	// ignored by the loop.
	Terminal     bool
	FinishReason string
}

// Caller sends the system instruction, the full conversation and the tool
// catalog to a model and returns its reply.
type Caller interface {
	Call(ctx context.Context, system string, turns []session.Turn, defs []tools.Definition) (Response, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, system string, turns []session.Turn, defs []tools.Definition) (Response, error)

func (f CallerFunc) Call(ctx context.Context, system string, turns []session.Turn, defs []tools.Definition) (Response, error) {
	return f(ctx, system, turns, defs)
}
