package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// skippedDirs are never descended into by search_files. Any directory whose
// name starts with a dot is skipped as well.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"__pycache__":  {},
	".venv":        {},
	"venv":         {},
	"env":          {},
	"dist":         {},
	"build":        {},
}

var grepExcludedDirs = []string{".git", "node_modules", "__pycache__"}

// grepLine splits "file:line:" off the front of a grep -n -H line.
var grepLine = regexp.MustCompile(`^(.*?):(\d+):`)

func (e *Executor) searchFiles(_ context.Context, raw string) (string, error) {
	args, ok := decodeArgs[searchFilesArgs](raw)
	if !ok {
		e.logMalformed(KindSearchFiles, raw)
	}
	pattern, err := required("pattern", args.Pattern)
	if err != nil {
		return "", err
	}
	directory := optional(args.Directory, ".")
	full, err := e.ctx.resolvePath(directory)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("'%s' %w", directory, ErrNotExist)
	}
	if err != nil {
		return "", fmt.Errorf("searching files: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("'%s' %w", directory, ErrNotDirectory)
	}

	glob := translateGlob(pattern)
	if _, err := filepath.Match(glob, ""); err != nil {
		return "", fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	var matches []string
	err = filepath.WalkDir(full, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are skipped rather than failing the search.
			if d != nil && d.IsDir() && p != full {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != full && skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(glob, d.Name()); ok {
			matches = append(matches, e.relativeToRoot(p))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching files: %w", err)
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No files found matching '%s' in '%s'", pattern, directory), nil
	}
	sort.Strings(matches)
	e.ctx.debug("search_files", map[string]any{"pattern": pattern, "matches": len(matches)})
	return strings.Join(matches, "\n"), nil
}

func skipDir(name string) bool {
	if _, ok := skippedDirs[name]; ok {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// translateGlob maps shell-style negated classes onto filepath.Match syntax.
func translateGlob(pattern string) string {
	return strings.ReplaceAll(pattern, "[!", "[^")
}

func (e *Executor) relativeToRoot(p string) string {
	rel, err := filepath.Rel(e.ctx.WorkingRoot, p)
	if err != nil {
		return p
	}
	return rel
}

func (e *Executor) grepSearch(ctx context.Context, raw string) (string, error) {
	args, ok := decodeArgs[grepSearchArgs](raw)
	if !ok {
		e.logMalformed(KindGrepSearch, raw)
	}
	pattern, err := required("pattern", args.Pattern)
	if err != nil {
		return "", err
	}
	path := optional(args.Path, ".")
	full, err := e.ctx.resolvePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("'%s' %w", path, ErrNotExist)
	}

	argv := []string{"-n", "-H", "-I"}
	if args.recursive() {
		argv = append(argv, "-r")
		for _, dir := range grepExcludedDirs {
			argv = append(argv, "--exclude-dir="+dir)
		}
	}
	argv = append(argv, "-e", pattern, "--", full)

	execCtx, cancel := context.WithTimeout(ctx, e.ctx.SearchTimeout)
	defer cancel()
	cmd := exec.CommandContext(execCtx, "grep", argv...)
	cmd.Dir = e.ctx.WorkingRoot
	cmd.WaitDelay = commandWaitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("grep %w after %s", ErrTimeout, formatSeconds(e.ctx.SearchTimeout))
	}
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return "", fmt.Errorf("grep failed: %w", runErr)
		}
		exitCode = exitErr.ExitCode()
	}
	e.ctx.debug("grep_search", map[string]any{"pattern": pattern, "exit_code": exitCode, "bytes": stdout.Len()})

	out := strings.TrimRight(stdout.String(), "\n")
	switch {
	case exitCode == 1:
		return fmt.Sprintf("No matches found for '%s'", pattern), nil
	case exitCode != 0 && out == "":
		return "", fmt.Errorf("grep failed: %s", strings.TrimSpace(stderr.String()))
	case out == "":
		return fmt.Sprintf("No matches found for '%s'", pattern), nil
	}

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = e.relativizeGrepLine(line)
	}
	return capLines(lines, e.ctx.MaxSearchResults), nil
}

func (e *Executor) relativizeGrepLine(line string) string {
	m := grepLine.FindStringSubmatchIndex(line)
	if m == nil {
		return line
	}
	file := line[m[2]:m[3]]
	return e.relativeToRoot(file) + line[m[3]:]
}

// capLines joins at most max lines and notes how many were dropped.
func capLines(lines []string, max int) string {
	if max <= 0 || len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n... (%d more results)", len(lines)-max)
}
