package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	got := BuildSystemPrompt([]string{"read_file", " execute_bash\n", ""})

	assert.True(t, strings.HasPrefix(got, "You are an expert coding agent"))
	assert.True(t, strings.HasSuffix(got, "Tools available: read_file, execute_bash."), got)
	assert.Equal(t, got, BuildSystemPrompt([]string{"read_file", "execute_bash"}))
}

func TestBuildSystemPromptWithoutTools(t *testing.T) {
	got := BuildSystemPrompt(nil)
	assert.NotContains(t, got, "Tools available")
	assert.Contains(t, got, "verifying each step with execute_bash")
}
