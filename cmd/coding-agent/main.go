// Package main provides the coding-agent CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xuanfeiren/ai-agents/pkg/agent"
	configpkg "github.com/xuanfeiren/ai-agents/pkg/config"
	loggerpkg "github.com/xuanfeiren/ai-agents/pkg/logger"
	"github.com/xuanfeiren/ai-agents/pkg/model"
	"github.com/xuanfeiren/ai-agents/pkg/session"
	"github.com/xuanfeiren/ai-agents/pkg/tools"
)

// main is the program entry point.
func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	flags := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "coding-agent",
		Short: "Interactive coding assistant with file-system and shell tools",
		Long: `coding-agent starts an interactive session in which a language model can
read, write and search files and run shell commands inside a working directory.

Configuration is read from defaults, then an optional YAML file (--config or
CODING_AGENT_CONFIG), then the environment (OPENAI_API_KEY, OPENAI_BASE_URL,
OPENAI_MODEL), then flags. A .env file in the current directory is loaded first.

Examples:
  coding-agent
  coding-agent --model gpt-4o-mini
  coding-agent --cwd /path/to/project --confine`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := resolveConfig(cmd, flags, os.Getenv)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, in, out, errOut)
		},
	}
	bindFlags(cmd, flags)
	return cmd
}

// run wires the session, tools, model client and REPL for one process.
func run(ctx context.Context, cfg configpkg.Config, in io.Reader, out, errOut io.Writer) error {
	level, err := loggerpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	appLogger := loggerpkg.NewWriterLogger(errOut,
		loggerpkg.WithLevel(level),
		loggerpkg.WithColor(!color.NoColor),
	)

	sess, err := session.New(cfg.WorkingRoot)
	if err != nil {
		return err
	}
	executor := tools.New(tools.Context{
		WorkingRoot:      sess.WorkingRoot(),
		CommandTimeout:   cfg.CommandTimeout,
		SearchTimeout:    cfg.SearchTimeout,
		MaxSearchResults: cfg.MaxSearchResults,
		MaxOutputBytes:   cfg.MaxOutputBytes,
		Confine:          cfg.Confine,
		Logger:           appLogger,
	})
	caller, err := model.NewOpenAI(model.OpenAIConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Logger:    appLogger,
	})
	if err != nil {
		return err
	}

	disp := newDisplay(out, newSpinner(errOut))
	loop, err := agent.New(sess, caller, executor,
		agent.WithLogger(appLogger),
		agent.WithHooks(disp.hooks()),
		agent.WithMaxRounds(cfg.MaxRounds),
	)
	if err != nil {
		return err
	}

	loggerpkg.Info(appLogger, "session started", map[string]any{
		"session":      sess.ID(),
		"model":        caller.Model(),
		"working_root": sess.WorkingRoot(),
		"confine":      cfg.Confine,
	})

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	return runREPL(ctx, loop, replOptions{
		In:         in,
		Out:        out,
		Display:    disp,
		Interrupts: interrupts,
		Model:      caller.Model(),
		Confine:    cfg.Confine,
		Logger:     appLogger,
	})
}
