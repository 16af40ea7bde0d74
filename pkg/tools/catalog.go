package tools

// Kind enumerates the closed set of operations the model may request.
type Kind int

const (
	KindReadFile Kind = iota
	KindWriteFile
	KindCreateDirectory
	KindListDirectory
	KindExecuteBash
	KindSearchFiles
	KindGrepSearch

	kindCount
)

var kindNames = [kindCount]string{
	KindReadFile:        "read_file",
	KindWriteFile:       "write_file",
	KindCreateDirectory: "create_directory",
	KindListDirectory:   "list_directory",
	KindExecuteBash:     "execute_bash",
	KindSearchFiles:     "search_files",
	KindGrepSearch:      "grep_search",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns every operation in catalog order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind is the single membership check for tool names.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Definition is the provider-neutral schema of one tool.
type Definition struct {
	Name        string
	Description string
	// Parameters is a JSON schema object.
	Parameters map[string]any
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var definitions = [kindCount]func() Definition{
	KindReadFile: func() Definition {
		return Definition{
			Name:        KindReadFile.String(),
			Description: "Read the contents of a file. Use to view existing source code, configs, or text files.",
			Parameters: objectSchema(map[string]any{
				"path": stringProp("Path to the file (relative to the working directory)"),
			}, "path"),
		}
	},
	KindWriteFile: func() Definition {
		return Definition{
			Name:        KindWriteFile.String(),
			Description: "Write (create or overwrite) a file with the given content. Parent directories are created automatically.",
			Parameters: objectSchema(map[string]any{
				"path":    stringProp("Destination file path (relative to the working directory)"),
				"content": stringProp("Full content to write to the file"),
			}, "path", "content"),
		}
	},
	KindCreateDirectory: func() Definition {
		return Definition{
			Name:        KindCreateDirectory.String(),
			Description: "Create a new directory, including any necessary parent directories.",
			Parameters: objectSchema(map[string]any{
				"path": stringProp("Directory path to create"),
			}, "path"),
		}
	},
	KindListDirectory: func() Definition {
		path := stringProp("Directory to list (default: working directory)")
		path["default"] = "."
		return Definition{
			Name:        KindListDirectory.String(),
			Description: "List the contents of a directory to understand project structure.",
			Parameters:  objectSchema(map[string]any{"path": path}),
		}
	},
	KindExecuteBash: func() Definition {
		return Definition{
			Name:        KindExecuteBash.String(),
			Description: "Execute a bash command and return stdout, stderr, and exit code. Use for running scripts, tests, installs, or git operations.",
			Parameters: objectSchema(map[string]any{
				"command": stringProp("The bash command to execute"),
			}, "command"),
		}
	},
	KindSearchFiles: func() Definition {
		dir := stringProp("Directory to search in (default: working directory)")
		dir["default"] = "."
		return Definition{
			Name:        KindSearchFiles.String(),
			Description: "Find files by name using a glob pattern (e.g. '*.py', 'test_*.js').",
			Parameters: objectSchema(map[string]any{
				"pattern":   stringProp("Glob pattern to match filenames"),
				"directory": dir,
			}, "pattern"),
		}
	},
	KindGrepSearch: func() Definition {
		path := stringProp("File or directory to search in (default: working directory)")
		path["default"] = "."
		return Definition{
			Name:        KindGrepSearch.String(),
			Description: "Search for a text pattern inside files. Supports regex. Use to find usages of functions, variables, or any text.",
			Parameters: objectSchema(map[string]any{
				"pattern": stringProp("Text or regex pattern to search for"),
				"path":    path,
				"recursive": map[string]any{
					"type":        "boolean",
					"description": "Search subdirectories recursively (default: true)",
					"default":     true,
				},
			}, "pattern"),
		}
	},
}

// Catalog returns the ordered tool definitions. Each call builds fresh maps
// so callers may not corrupt the shared schema.
func Catalog() []Definition {
	out := make([]Definition, 0, kindCount)
	for _, k := range Kinds() {
		out = append(out, definitions[k]())
	}
	return out
}
