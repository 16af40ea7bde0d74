package tools

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	loggerpkg "github.com/xuanfeiren/ai-agents/pkg/logger"
)

const (
	DefaultCommandTimeout   = 120 * time.Second
	DefaultSearchTimeout    = 30 * time.Second
	DefaultMaxSearchResults = 100
	DefaultMaxOutputBytes   = 1024 * 1024
	commandWaitDelay        = 2 * time.Second
)

// Context carries the settings shared by every tool invocation.
type Context struct {
	WorkingRoot      string
	CommandTimeout   time.Duration
	SearchTimeout    time.Duration
	MaxSearchResults int
	MaxOutputBytes   int
	// Confine rejects paths that resolve outside WorkingRoot.
	Confine bool
	Logger  loggerpkg.Logger
}

func (c Context) debug(msg string, obj any) {
	loggerpkg.Debug(c.Logger, msg, obj)
}

type handler func(e *Executor, ctx context.Context, raw string) (string, error)

var handlers = [kindCount]handler{
	KindReadFile:        (*Executor).readFile,
	KindWriteFile:       (*Executor).writeFile,
	KindCreateDirectory: (*Executor).createDirectory,
	KindListDirectory:   (*Executor).listDirectory,
	KindExecuteBash:     (*Executor).executeBash,
	KindSearchFiles:     (*Executor).searchFiles,
	KindGrepSearch:      (*Executor).grepSearch,
}

// Executor runs catalog tools against a working root.
type Executor struct {
	ctx Context
}

// New builds an executor, filling unset limits with defaults.
func New(ctx Context) *Executor {
	if ctx.Logger == nil {
		ctx.Logger = loggerpkg.NopLogger{}
	}
	if ctx.CommandTimeout <= 0 {
		ctx.CommandTimeout = DefaultCommandTimeout
	}
	if ctx.SearchTimeout <= 0 {
		ctx.SearchTimeout = DefaultSearchTimeout
	}
	if ctx.MaxSearchResults <= 0 {
		ctx.MaxSearchResults = DefaultMaxSearchResults
	}
	if ctx.MaxOutputBytes <= 0 {
		ctx.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return &Executor{ctx: ctx}
}

// Definitions returns the catalog the executor accepts.
func (e *Executor) Definitions() []Definition {
	return Catalog()
}

// Execute runs the named tool and always returns text. Failures come back as
// "Error: ..." so the model can react to them on the next round.
func (e *Executor) Execute(ctx context.Context, name, rawArgs string) (output string) {
	defer func() {
		if r := recover(); r != nil {
			loggerpkg.Error(e.ctx.Logger, "tool panicked", map[string]any{"tool": name, "panic": fmt.Sprint(r)})
			output = fmt.Sprintf("Error: tool '%s' failed: %v", name, r)
		}
	}()

	kind, ok := ParseKind(name)
	if !ok || handlers[kind] == nil {
		e.ctx.debug("unknown tool requested", map[string]any{"tool": name})
		return errorText(fmt.Errorf("%w '%s'", ErrUnknownTool, name))
	}

	e.ctx.debug("tool start", map[string]any{"tool": name, "arg_bytes": len(rawArgs)})
	start := time.Now()
	text, err := handlers[kind](e, ctx, rawArgs)
	if err != nil {
		text = errorText(err)
	}
	e.ctx.debug("tool done", map[string]any{
		"tool":        name,
		"error":       err != nil,
		"bytes":       len(text),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return truncateOutput(text, e.ctx.MaxOutputBytes)
}

func errorText(err error) string {
	return "Error: " + err.Error()
}

// truncateOutput caps s at max bytes on a rune boundary.
func truncateOutput(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s\n... (output truncated, %d more bytes)", s[:cut], len(s)-cut)
}

func (e *Executor) logMalformed(kind Kind, raw string) {
	loggerpkg.Warn(e.ctx.Logger, "malformed tool arguments, using defaults", map[string]any{
		"tool":      kind.String(),
		"arg_bytes": len(raw),
	})
}
