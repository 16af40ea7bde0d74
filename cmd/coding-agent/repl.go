package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xuanfeiren/ai-agents/pkg/agent"
	loggerpkg "github.com/xuanfeiren/ai-agents/pkg/logger"
)

const maxInputBytes = 1024 * 1024

// replCommand is the classification of one input line.
type replCommand int

const (
	commandPrompt replCommand = iota
	commandExit
	commandClear
	commandHelp
)

// parseCommand matches the interactive commands case-insensitively. Anything
// else, including unknown slash input, is a prompt for the model.
func parseCommand(input string) replCommand {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "bye", "/exit", "/quit", "/bye":
		return commandExit
	case "/clear", "/reset":
		return commandClear
	case "/help":
		return commandHelp
	default:
		return commandPrompt
	}
}

// replOptions configures REPL behavior.
type replOptions struct {
	In      io.Reader
	Out     io.Writer
	Display *display
	// Interrupts delivers Ctrl-C. A nil channel disables interrupt handling.
	Interrupts <-chan os.Signal
	Model      string
	Confine    bool
	Logger     loggerpkg.Logger
}

type repl struct {
	loop *agent.AgentLoop
	opts replOptions

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// runREPL reads instructions until an exit command or EOF.
func runREPL(ctx context.Context, loop *agent.AgentLoop, opts replOptions) error {
	if loop == nil {
		return fmt.Errorf("agent loop is required")
	}
	if opts.In == nil {
		return fmt.Errorf("input reader is required")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Display == nil {
		opts.Display = newDisplay(opts.Out, nil)
	}
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := &repl{loop: loop, opts: opts}
	done := make(chan struct{})
	defer close(done)
	if opts.Interrupts != nil {
		go r.forwardInterrupts(done)
	}

	loggerpkg.Debug(opts.Logger, "repl start", map[string]any{
		"session": loop.Session().ID(),
		"model":   opts.Model,
	})

	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 64*1024), maxInputBytes)
	r.printWelcome()

	for {
		_, _ = fmt.Fprint(opts.Out, promptColor.Sprint("❯ "))
		if !scanner.Scan() {
			r.opts.Display.note("\nGoodbye! 👋")
			break
		}

		input := scanner.Text()
		if strings.TrimSpace(input) == "" {
			continue
		}

		switch parseCommand(input) {
		case commandExit:
			r.opts.Display.note("\nGoodbye! 👋")
			return nil
		case commandClear:
			loop.Reset()
			r.opts.Display.note("Conversation cleared.\n")
		case commandHelp:
			r.printHelp()
		default:
			r.handle(ctx, input)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// handle runs one instruction with a context the interrupt forwarder can
// cancel.
func (r *repl) handle(parent context.Context, input string) {
	ctx, cancel := context.WithCancel(parent)
	r.setCancel(cancel)
	outcome, err := r.loop.Handle(ctx, input)
	interrupted := errors.Is(ctx.Err(), context.Canceled) && parent.Err() == nil
	r.setCancel(nil)
	cancel()
	r.opts.Display.stopStatus()

	switch {
	case err != nil && interrupted:
		r.opts.Display.note("[interrupted]\n")
	case err != nil:
		r.opts.Display.errorf("%v", err)
	case outcome.Exhausted:
		r.opts.Display.warn("Warning: reached maximum tool-call iterations.")
	case outcome.Done && strings.TrimSpace(outcome.Final) != "":
		r.opts.Display.response(outcome.Final)
	}
}

func (r *repl) setCancel(cancel context.CancelFunc) {
	r.cancelMu.Lock()
	r.cancel = cancel
	r.cancelMu.Unlock()
}

// forwardInterrupts cancels the running instruction on Ctrl-C, or prints a
// hint when the REPL is idle at the prompt.
func (r *repl) forwardInterrupts(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case _, ok := <-r.opts.Interrupts:
			if !ok {
				return
			}
			r.cancelMu.Lock()
			cancel := r.cancel
			r.cancelMu.Unlock()
			if cancel != nil {
				cancel()
				continue
			}
			r.opts.Display.note("\nInterrupted. Type 'exit' to quit.")
		}
	}
}

func (r *repl) printWelcome() {
	out := r.opts.Out
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, toolNameColor.Sprint("  🤖  Coding Agent"))
	_, _ = fmt.Fprintln(out, dimColor.Sprint("  type '/help' for commands  ·  'exit' to quit"))
	if r.opts.Model != "" {
		_, _ = fmt.Fprintf(out, "  %s  %s\n", dimColor.Sprint("Model  :"), toolNameColor.Sprint(r.opts.Model))
	}
	_, _ = fmt.Fprintf(out, "  %s  %s\n", dimColor.Sprint("Workdir:"), r.loop.Session().WorkingRoot())
	if r.opts.Confine {
		_, _ = fmt.Fprintf(out, "  %s  %s\n", dimColor.Sprint("Paths  :"), "confined to workdir")
	}
	_, _ = fmt.Fprintln(out)
}

func (r *repl) printHelp() {
	out := r.opts.Out
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /clear, /reset  - Clear conversation history")
	_, _ = fmt.Fprintln(out, "  /help           - Show this help")
	_, _ = fmt.Fprintln(out, "  exit, quit, bye - Exit the agent")
	_, _ = fmt.Fprintln(out)
}
