package tools

import "errors"

// Sentinel errors surfaced to the model as "Error: ..." text.
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingArgument = errors.New("missing required argument")
	ErrNotExist        = errors.New("does not exist")
	ErrNotFile         = errors.New("is not a file")
	ErrNotDirectory    = errors.New("is not a directory")
	ErrOutsideRoot     = errors.New("path outside working directory")
	ErrTimeout         = errors.New("command timed out")
)
