package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	configpkg "github.com/xuanfeiren/ai-agents/pkg/config"
)

const configEnvVar = "CODING_AGENT_CONFIG"

// cliFlags mirrors the command-line surface.
type cliFlags struct {
	model      string
	cwd        string
	maxRounds  int
	confine    bool
	verbose    bool
	configFile string
}

func bindFlags(cmd *cobra.Command, f *cliFlags) {
	defaults := configpkg.DefaultConfig()
	cmd.Flags().StringVar(&f.model, "model", defaults.Model, "Model identifier sent to the OpenAI-compatible endpoint")
	cmd.Flags().StringVar(&f.cwd, "cwd", defaults.WorkingRoot, "Working directory the tools operate in")
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", defaults.MaxRounds, "Maximum model calls per instruction")
	cmd.Flags().BoolVar(&f.confine, "confine", defaults.Confine, "Reject tool paths that resolve outside the working directory")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", defaults.Verbose, "Log model and tool activity to stderr")
	cmd.Flags().StringVar(&f.configFile, "config", "", "Path to a YAML config file (default: $"+configEnvVar+")")
}

// resolveConfig layers defaults, the config file, the environment and any
// flags the user set explicitly, then validates the result.
func resolveConfig(cmd *cobra.Command, f *cliFlags, getenv func(string) string) (configpkg.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := configpkg.DefaultConfig()

	path := strings.TrimSpace(f.configFile)
	if path == "" {
		path = strings.TrimSpace(getenv(configEnvVar))
	}
	if path != "" {
		loaded, err := configpkg.LoadFile(cfg, path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg = configpkg.ApplyEnv(cfg, getenv)

	changed := cmd.Flags().Changed
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("cwd") {
		cfg.WorkingRoot = f.cwd
	}
	if changed("max-rounds") {
		cfg.MaxRounds = f.maxRounds
	}
	if changed("confine") {
		cfg.Confine = f.confine
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg = configpkg.Normalize(cfg)
	root, err := configpkg.ResolveWorkingRoot(cfg.WorkingRoot)
	if err != nil {
		return cfg, err
	}
	cfg.WorkingRoot = root
	if err := configpkg.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
