package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "markdown fence",
			input:    "```markdown\n# Brief\n\nBody\n```",
			expected: "# Brief\n\nBody",
		},
		{
			name:     "json fence",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "bare fence",
			input:    "```\ntext\n```",
			expected: "text",
		},
		{
			name:     "no fence",
			input:    "  # Title\n",
			expected: "# Title",
		},
		{
			name:     "inner fences kept",
			input:    "Intro\n```go\ncode\n```",
			expected: "Intro\n```go\ncode\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripCodeFence(tt.input))
		})
	}
}
