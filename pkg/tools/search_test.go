package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestSearchFilesSkipsIgnoredDirectories(t *testing.T) {
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{
		".git/config.txt":         "x",
		"node_modules/pkg/a.txt":  "x",
		".cache/b.txt":            "x",
		"notes.txt":               "x",
		"docs/guide.txt":          "x",
		"docs/guide.md":           "x",
		".hidden.txt":             "x",
		"build/output/report.txt": "x",
	})

	out, err := e.searchFiles(context.Background(), `{"pattern":"*.txt"}`)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		".hidden.txt",
		filepath.Join("docs", "guide.txt"),
		"notes.txt",
	}, "\n"), out)
}

func TestSearchFilesNoMatchAndErrors(t *testing.T) {
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{"src/main.go": "package main"})

	out, err := e.searchFiles(context.Background(), `{"pattern":"*.rs","directory":"src"}`)
	require.NoError(t, err)
	assert.Equal(t, "No files found matching '*.rs' in 'src'", out)

	_, err = e.searchFiles(context.Background(), `{"pattern":"*.go","directory":"nowhere"}`)
	require.ErrorIs(t, err, ErrNotExist)

	_, err = e.searchFiles(context.Background(), `{"pattern":"*.go","directory":"src/main.go"}`)
	require.ErrorIs(t, err, ErrNotDirectory)

	_, err = e.searchFiles(context.Background(), `{"pattern":"[a-"}`)
	require.Error(t, err)
}

func TestSearchFilesNegatedClass(t *testing.T) {
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{"a1.txt": "", "b1.txt": ""})

	out, err := e.searchFiles(context.Background(), `{"pattern":"[!a]1.txt"}`)
	require.NoError(t, err)
	assert.Equal(t, "b1.txt", out)
}

func requireGrep(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}
}

func TestGrepSearch(t *testing.T) {
	requireGrep(t)
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{
		"src/app.go":       "package main\nfunc handleRequest() {}\n",
		"src/util/util.go": "// handleRequest helper\n",
		".git/HEAD":        "handleRequest\n",
		"README.md":        "nothing here\n",
	})

	out, err := e.grepSearch(context.Background(), `{"pattern":"handleRequest"}`)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.ElementsMatch(t, []string{
		filepath.Join("src", "app.go") + ":2:func handleRequest() {}",
		filepath.Join("src", "util", "util.go") + ":1:// handleRequest helper",
	}, lines)
}

func TestGrepSearchNoMatchIsBenign(t *testing.T) {
	requireGrep(t)
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{"a.txt": "alpha\n"})

	out := e.Execute(context.Background(), "grep_search", `{"pattern":"omega"}`)
	assert.Equal(t, "No matches found for 'omega'", out)
}

func TestGrepSearchNonRecursiveFile(t *testing.T) {
	requireGrep(t)
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{"a.txt": "one\ntwo\none\n"})

	out, err := e.grepSearch(context.Background(), `{"pattern":"one","path":"a.txt","recursive":false}`)
	require.NoError(t, err)
	assert.Equal(t, "a.txt:1:one\na.txt:3:one", out)

	_, err = e.grepSearch(context.Background(), `{"pattern":"one","path":"missing"}`)
	require.ErrorIs(t, err, ErrNotExist)
}

func TestGrepSearchCapsResults(t *testing.T) {
	requireGrep(t)
	root := t.TempDir()
	e := New(Context{WorkingRoot: root, MaxSearchResults: 3})
	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "match %d\n", i)
	}
	writeTree(t, root, map[string]string{"m.txt": b.String()})

	out, err := e.grepSearch(context.Background(), `{"pattern":"match"}`)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "... (7 more results)", lines[3])
}

func TestCapLines(t *testing.T) {
	assert.Equal(t, "a\nb", capLines([]string{"a", "b"}, 5))
	assert.Equal(t, "a\n... (2 more results)", capLines([]string{"a", "b", "c"}, 1))
}

func TestSearchFilesNeverDescendsIntoGit(t *testing.T) {
	e, root := newTestExecutor(t)
	writeTree(t, root, map[string]string{
		".git/config": "[core]",
		"notes.txt":   "x",
	})

	out := e.Execute(context.Background(), "search_files", `{"pattern":"*.txt"}`)
	assert.Equal(t, "notes.txt", out)
}
