package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/xuanfeiren/ai-agents/pkg/agent"
	"github.com/xuanfeiren/ai-agents/pkg/session"
)

const (
	resultMaxLines   = 20
	resultMaxChars   = 1200
	commandPreviewAt = 90
)

var toolIcons = map[string]string{
	"read_file":        "📖",
	"write_file":       "✍️ ",
	"create_directory": "📁",
	"list_directory":   "📂",
	"execute_bash":     "⚡",
	"search_files":     "🔍",
	"grep_search":      "🔎",
}

var (
	toolNameColor = color.New(color.Bold)
	argColor      = color.New(color.FgCyan)
	commandColor  = color.New(color.FgYellow, color.Bold)
	dimColor      = color.New(color.Faint)
	warnColor     = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed, color.Bold)
	promptColor   = color.New(color.FgCyan, color.Bold)
	answerColor   = color.New(color.FgBlue)
)

// statusIndicator is shown while the model is thinking.
type statusIndicator interface {
	Start()
	Stop()
}

type nopIndicator struct{}

func (nopIndicator) Start() {}
func (nopIndicator) Stop()  {}

func newSpinner(w io.Writer) statusIndicator {
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(w),
		spinner.WithSuffix(" Thinking…"),
		spinner.WithColor("blue"),
	)
}

// display renders loop progress to the terminal.
type display struct {
	mu     sync.Mutex
	out    io.Writer
	status statusIndicator
	active bool
}

func newDisplay(out io.Writer, status statusIndicator) *display {
	if out == nil {
		out = io.Discard
	}
	if status == nil {
		status = nopIndicator{}
	}
	return &display{out: out, status: status}
}

func (d *display) hooks() agent.Hooks {
	return agent.Hooks{
		BeforeModelCall: func(int) { d.startStatus() },
		AfterModelCall:  func(int, error) { d.stopStatus() },
		OnAssistantText: d.thinking,
		OnToolCall:      d.toolCall,
		OnToolResult:    func(_ session.ToolInvocation, output string) { d.toolResult(output) },
	}
}

func (d *display) startStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		d.active = true
		d.status.Start()
	}
}

// stopStatus is safe to call when no indicator is running.
func (d *display) stopStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		d.active = false
		d.status.Stop()
	}
}

func (d *display) thinking(text string) {
	if text = strings.TrimSpace(text); text != "" {
		_, _ = fmt.Fprintf(d.out, "\n%s\n\n", dimColor.Sprint(text))
	}
}

func (d *display) toolCall(inv session.ToolInvocation) {
	icon, ok := toolIcons[inv.ToolName]
	if !ok {
		icon = "🔧"
	}
	_, _ = fmt.Fprintf(d.out, "  %s %s  %s\n", icon, toolNameColor.Sprint(inv.ToolName), describeCall(inv.ToolName, inv.RawArguments))
}

func (d *display) toolResult(output string) {
	shown, extra := clipResult(output)
	for _, line := range strings.Split(shown, "\n") {
		_, _ = fmt.Fprintf(d.out, "  %s\n", dimColor.Sprint(line))
	}
	if extra > 0 {
		_, _ = fmt.Fprintf(d.out, "  %s\n", dimColor.Sprintf("… (%d more lines)", extra))
	}
	_, _ = fmt.Fprintln(d.out)
}

func (d *display) response(text string) {
	_, _ = fmt.Fprintf(d.out, "\n%s\n\n", answerColor.Sprint(strings.TrimSpace(text)))
}

func (d *display) warn(text string) {
	_, _ = fmt.Fprintln(d.out, warnColor.Sprint(text))
}

func (d *display) errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, "\n%s %s\n\n", errorColor.Sprint("LLM error:"), fmt.Sprintf(format, args...))
}

func (d *display) note(text string) {
	_, _ = fmt.Fprintln(d.out, dimColor.Sprint(text))
}

// describeCall builds a one-line summary of a tool request. Arguments that
// do not parse are shown as if empty.
func describeCall(name, raw string) string {
	var args map[string]any
	_ = json.Unmarshal([]byte(raw), &args)
	str := func(key, def string) string {
		if v, ok := args[key].(string); ok && v != "" {
			return v
		}
		return def
	}

	switch name {
	case "read_file", "create_directory":
		return argColor.Sprint(str("path", ""))
	case "write_file":
		content := str("content", "")
		lines := 0
		if content != "" {
			lines = len(strings.Split(strings.TrimRight(content, "\n"), "\n"))
		}
		return fmt.Sprintf("%s %s", argColor.Sprint(str("path", "")), dimColor.Sprintf("(%d lines)", lines))
	case "list_directory":
		return argColor.Sprint(str("path", "."))
	case "execute_bash":
		return commandColor.Sprint(previewCommand(str("command", "")))
	case "search_files":
		return fmt.Sprintf("%s in %s", argColor.Sprint(str("pattern", "")), argColor.Sprint(str("directory", ".")))
	case "grep_search":
		return fmt.Sprintf("%s in %s", argColor.Sprint(str("pattern", "")), argColor.Sprint(str("path", ".")))
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, " ")
}

func previewCommand(cmd string) string {
	runes := []rune(cmd)
	if len(runes) <= commandPreviewAt {
		return cmd
	}
	return string(runes[:commandPreviewAt]) + "…"
}

// clipResult keeps the first lines of a tool result for display and reports
// how many lines were hidden.
func clipResult(result string) (string, int) {
	lines := strings.Split(result, "\n")
	extra := 0
	if len(lines) > resultMaxLines {
		extra = len(lines) - resultMaxLines
		lines = lines[:resultMaxLines]
	}
	shown := strings.Join(lines, "\n")
	if runes := []rune(shown); len(runes) > resultMaxChars {
		shown = string(runes[:resultMaxChars]) + "…"
	}
	return shown, extra
}
