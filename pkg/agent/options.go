package agent

import loggerpkg "github.com/xuanfeiren/ai-agents/pkg/logger"

// AgentOption configures optional runtime dependencies for AgentLoop.
type AgentOption func(*agentDeps)

type agentDeps struct {
	logger       loggerpkg.Logger
	hooks        Hooks
	maxRounds    int
	systemPrompt string
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) AgentOption {
	return func(d *agentDeps) {
		d.logger = l
	}
}

// WithHooks installs progress observers.
func WithHooks(h Hooks) AgentOption {
	return func(d *agentDeps) {
		d.hooks = h
	}
}

// WithMaxRounds caps model calls per user instruction. Values below one
// keep the default.
func WithMaxRounds(n int) AgentOption {
	return func(d *agentDeps) {
		if n > 0 {
			d.maxRounds = n
		}
	}
}

// WithSystemPrompt overrides the system instruction.
func WithSystemPrompt(p string) AgentOption {
	return func(d *agentDeps) {
		d.systemPrompt = p
	}
}
