package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeTableCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text", in: "Capture Gen Z demand", want: "Capture Gen Z demand"},
		{name: "pipe", in: "A | B", want: `A \| B`},
		{name: "newline", in: "line one\nline two", want: "line one line two"},
		{name: "crlf", in: "line one\r\nline two", want: "line one line two"},
		{name: "newline after space", in: "line one \nline two", want: "line one line two"},
		{name: "trailing newline", in: "done\n", want: "done"},
		{name: "unicode", in: "Zürich | Genève", want: `Zürich \| Genève`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeTableCell(tt.in))
		})
	}
}
