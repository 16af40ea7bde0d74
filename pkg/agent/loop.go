// Package agent drives the tool-calling loop: one user instruction, then
// rounds of model call and tool dispatch until the model answers or the
// round budget runs out.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	loggerpkg "github.com/xuanfeiren/ai-agents/pkg/logger"
	"github.com/xuanfeiren/ai-agents/pkg/model"
	"github.com/xuanfeiren/ai-agents/pkg/prompt"
	"github.com/xuanfeiren/ai-agents/pkg/session"
	"github.com/xuanfeiren/ai-agents/pkg/tools"
)

const DefaultMaxRounds = 50

// ErrModelCall wraps every failure of the model-call collaborator.
var ErrModelCall = errors.New("model call failed")

// Executor runs tools by name. It must always return text.
type Executor interface {
	Execute(ctx context.Context, name, rawArgs string) string
	Definitions() []tools.Definition
}

// ToolCallRecord describes one dispatched invocation.
type ToolCallRecord struct {
	Round         int
	ToolName      string
	CorrelationID string
	IsError       bool
}

// Outcome summarizes one Handle call.
type Outcome struct {
	// Final is the model's closing text when Done is set. It may be empty.
	Final     string
	Done      bool
	Exhausted bool
	Rounds    int
	ToolCalls []ToolCallRecord
}

// AgentLoop holds agent runtime state.
type AgentLoop struct {
	session      *session.Session
	caller       model.Caller
	executor     Executor
	systemPrompt string
	maxRounds    int
	hooks        Hooks
	logger       loggerpkg.Logger
}

// New wires a loop over an existing session.
func New(sess *session.Session, caller model.Caller, executor Executor, opts ...AgentOption) (*AgentLoop, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if caller == nil {
		return nil, errors.New("model caller is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}

	deps := agentDeps{logger: loggerpkg.NopLogger{}, maxRounds: DefaultMaxRounds}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if deps.logger == nil {
		deps.logger = loggerpkg.NopLogger{}
	}

	defs := executor.Definitions()
	if deps.systemPrompt == "" {
		names := make([]string, 0, len(defs))
		for _, def := range defs {
			names = append(names, def.Name)
		}
		deps.systemPrompt = prompt.BuildSystemPrompt(names)
	}

	loggerpkg.Debug(deps.logger, "agent_loop init", map[string]any{
		"session":      sess.ID(),
		"working_root": sess.WorkingRoot(),
		"max_rounds":   deps.maxRounds,
		"tools":        len(defs),
		"prompt_bytes": len(deps.systemPrompt),
	})

	return &AgentLoop{
		session:      sess,
		caller:       caller,
		executor:     executor,
		systemPrompt: deps.systemPrompt,
		maxRounds:    deps.maxRounds,
		hooks:        deps.hooks,
		logger:       deps.logger,
	}, nil
}

// Session returns the session the loop appends to.
func (a *AgentLoop) Session() *session.Session {
	return a.session
}

// Reset clears the conversation. The system prompt is never stored, so
// nothing needs to be restored.
func (a *AgentLoop) Reset() {
	a.session.Reset()
	loggerpkg.Debug(a.logger, "conversation reset", map[string]any{"session": a.session.ID()})
}

// Handle processes one user instruction. A whitespace-only instruction is a
// no-op. The returned error wraps ErrModelCall when the model could not be
// reached; in that case nothing from the failed round is kept.
func (a *AgentLoop) Handle(ctx context.Context, userText string) (Outcome, error) {
	if strings.TrimSpace(userText) == "" {
		return Outcome{}, nil
	}
	conv := a.session.Conversation()
	if err := conv.Append(session.UserTurn(userText)); err != nil {
		return Outcome{}, err
	}

	defs := a.executor.Definitions()
	var out Outcome
	for round := 1; round <= a.maxRounds; round++ {
		out.Rounds = round

		resp, err := a.callModel(ctx, round, conv.Turns(), defs)
		if err != nil {
			return out, err
		}

		if resp.Terminal || len(resp.Invocations) == 0 {
			if err := conv.Append(session.AssistantTurn(resp.Text, nil)); err != nil {
				return out, err
			}
			out.Final = resp.Text
			out.Done = true
			return out, nil
		}

		invocations := normalizeInvocations(round, resp.Invocations)
		if err := conv.Append(session.AssistantTurn(resp.Text, invocations)); err != nil {
			return out, err
		}
		a.hooks.assistantText(resp.Text)

		records, err := a.dispatch(ctx, round, invocations)
		out.ToolCalls = append(out.ToolCalls, records...)
		if err != nil {
			return out, err
		}
	}

	out.Exhausted = true
	loggerpkg.Warn(a.logger, "round budget exhausted without a final answer", map[string]any{
		"session":    a.session.ID(),
		"max_rounds": a.maxRounds,
		"tool_calls": len(out.ToolCalls),
	})
	return out, nil
}

func (a *AgentLoop) callModel(ctx context.Context, round int, turns []session.Turn, defs []tools.Definition) (model.Response, error) {
	loggerpkg.Debug(a.logger, "model call", map[string]any{"round": round, "turns": len(turns)})
	a.hooks.beforeModelCall(round)

	var (
		resp model.Response
		err  error
	)
	if err = ctx.Err(); err == nil {
		resp, err = a.caller.Call(ctx, a.systemPrompt, turns, defs)
	}
	a.hooks.afterModelCall(round, err)
	if err != nil {
		loggerpkg.Error(a.logger, "model call failed", map[string]any{"round": round, "error": err.Error()})
		return model.Response{}, fmt.Errorf("%w: %w", ErrModelCall, err)
	}

	loggerpkg.Debug(a.logger, "model response", map[string]any{
		"round":         round,
		"finish_reason": resp.FinishReason,
		"invocations":   len(resp.Invocations),
		"terminal":      resp.Terminal,
	})
	return resp, nil
}

// dispatch runs every invocation in order and appends one result turn per
// invocation. Tools run detached from ctx cancellation so an interrupt can
// never leave a request unanswered.
func (a *AgentLoop) dispatch(ctx context.Context, round int, invocations []session.ToolInvocation) ([]ToolCallRecord, error) {
	toolCtx := context.WithoutCancel(ctx)
	conv := a.session.Conversation()
	records := make([]ToolCallRecord, 0, len(invocations))

	for _, inv := range invocations {
		a.hooks.toolCall(inv)
		output := a.executor.Execute(toolCtx, inv.ToolName, inv.RawArguments)

		result := session.ToolResult{
			CorrelationID: inv.CorrelationID,
			ToolName:      inv.ToolName,
			Output:        output,
		}
		if err := conv.Append(session.ToolResultTurn(result)); err != nil {
			return records, err
		}
		records = append(records, ToolCallRecord{
			Round:         round,
			ToolName:      inv.ToolName,
			CorrelationID: inv.CorrelationID,
			IsError:       strings.HasPrefix(output, "Error:"),
		})
		a.hooks.toolResult(inv, output)
	}
	return records, nil
}

// normalizeInvocations gives every invocation a unique correlation id so
// each one can be answered exactly once.
// Replacement ids never collide with any id the model supplied.
func normalizeInvocations(round int, in []session.ToolInvocation) []session.ToolInvocation {
	taken := make(map[string]struct{}, len(in))
	for _, inv := range in {
		if inv.CorrelationID != "" {
			taken[inv.CorrelationID] = struct{}{}
		}
	}

	out := make([]session.ToolInvocation, len(in))
	seen := make(map[string]struct{}, len(in))
	next := 0
	for i, inv := range in {
		if _, dup := seen[inv.CorrelationID]; inv.CorrelationID == "" || dup {
			for {
				id := fmt.Sprintf("call_r%d_%d", round, next)
				next++
				if _, used := taken[id]; !used {
					inv.CorrelationID = id
					taken[id] = struct{}{}
					break
				}
			}
		}
		seen[inv.CorrelationID] = struct{}{}
		out[i] = inv
	}
	return out
}
