package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

func (e *Executor) readFile(_ context.Context, raw string) (string, error) {
	args, ok := decodeArgs[readFileArgs](raw)
	if !ok {
		e.logMalformed(KindReadFile, raw)
	}
	path, err := required("path", args.Path)
	if err != nil {
		return "", err
	}
	full, err := e.ctx.resolvePath(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("'%s' %w", path, ErrNotExist)
	}
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("'%s' %w", path, ErrNotFile)
	}

	file, err := os.Open(full)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// One byte past the cap lets the executor mark the output as truncated.
	data, err := io.ReadAll(io.LimitReader(file, int64(e.ctx.MaxOutputBytes)+1))
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	e.ctx.debug("read_file", map[string]any{"path": full, "size": info.Size(), "read": len(data)})
	return decodeLossy(data), nil
}

// decodeLossy converts bytes to text, replacing invalid UTF-8 with U+FFFD.
func decodeLossy(data []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

func (e *Executor) writeFile(_ context.Context, raw string) (string, error) {
	args, ok := decodeArgs[writeFileArgs](raw)
	if !ok {
		e.logMalformed(KindWriteFile, raw)
	}
	path, err := required("path", args.Path)
	if err != nil {
		return "", err
	}
	content, err := required("content", args.Content)
	if err != nil {
		return "", err
	}
	full, err := e.ctx.resolvePath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	e.ctx.debug("write_file", map[string]any{"path": full, "bytes": len(content)})
	return fmt.Sprintf("Successfully wrote %d bytes to '%s'", len(content), path), nil
}

func (e *Executor) createDirectory(_ context.Context, raw string) (string, error) {
	args, ok := decodeArgs[createDirectoryArgs](raw)
	if !ok {
		e.logMalformed(KindCreateDirectory, raw)
	}
	path, err := required("path", args.Path)
	if err != nil {
		return "", err
	}
	full, err := e.ctx.resolvePath(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	return fmt.Sprintf("Successfully created directory '%s'", path), nil
}

func (e *Executor) listDirectory(_ context.Context, raw string) (string, error) {
	args, ok := decodeArgs[listDirectoryArgs](raw)
	if !ok {
		e.logMalformed(KindListDirectory, raw)
	}
	path := optional(args.Path, ".")
	full, err := e.ctx.resolvePath(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("'%s' %w", path, ErrNotExist)
	}
	if err != nil {
		return "", fmt.Errorf("listing directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("'%s' %w", path, ErrNotDirectory)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return "", fmt.Errorf("listing directory: %w", err)
	}

	type item struct {
		name  string
		isDir bool
		size  int64
	}
	items := make([]item, 0, len(entries))
	for _, entry := range entries {
		it := item{name: entry.Name()}
		// Stat follows symlinks so linked directories sort with directories.
		if st, err := os.Stat(filepath.Join(full, entry.Name())); err == nil {
			it.isDir = st.IsDir()
			it.size = st.Size()
		} else {
			it.isDir = entry.IsDir()
		}
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].isDir != items[j].isDir {
			return items[i].isDir
		}
		return items[i].name < items[j].name
	})

	if len(items) == 0 {
		return "(empty directory)", nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.isDir {
			lines = append(lines, fmt.Sprintf("📁 %s/", it.name))
			continue
		}
		lines = append(lines, fmt.Sprintf("📄 %s (%s)", it.name, humanSize(it.size)))
	}
	return strings.Join(lines, "\n"), nil
}

// humanSize renders a byte count as B, KB or MB with one decimal.
func humanSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%dB", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(size)/(1024*1024))
	}
}
