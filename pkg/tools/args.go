package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeArgs parses the raw JSON payload into dst. A payload that does not
// parse leaves dst zeroed so the tool reports its own missing-argument error.
func decodeArgs[T any](raw string) (T, bool) {
	var args T
	if strings.TrimSpace(raw) == "" {
		return args, true
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		var zero T
		return zero, false
	}
	return args, true
}

func required(name string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w '%s'", ErrMissingArgument, name)
	}
	return *v, nil
}

func optional(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

type readFileArgs struct {
	Path *string `json:"path"`
}

type writeFileArgs struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

type createDirectoryArgs struct {
	Path *string `json:"path"`
}

type listDirectoryArgs struct {
	Path *string `json:"path"`
}

type executeBashArgs struct {
	Command *string `json:"command"`
}

type searchFilesArgs struct {
	Pattern   *string `json:"pattern"`
	Directory *string `json:"directory"`
}

type grepSearchArgs struct {
	Pattern   *string `json:"pattern"`
	Path      *string `json:"path"`
	Recursive *bool   `json:"recursive"`
}

func (a grepSearchArgs) recursive() bool {
	if a.Recursive == nil {
		return true
	}
	return *a.Recursive
}
