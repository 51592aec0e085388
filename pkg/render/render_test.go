package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains string
		excludes string
	}{
		{name: "heading", src: "# Hello", contains: `<h1 id="hello">Hello</h1>`},
		{name: "table", src: "| a | b |\n|---|---|\n| 1 | 2 |", contains: "<table>"},
		{name: "strikethrough", src: "~~old~~", contains: "<del>old</del>"},
		{name: "raw html dropped", src: "<script>alert(1)</script>", excludes: "<script>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Markdown(tt.src)
			require.NoError(t, err)
			if tt.contains != "" {
				assert.Contains(t, out, tt.contains)
			}
			if tt.excludes != "" {
				assert.NotContains(t, out, tt.excludes)
			}
		})
	}

	out, err := Markdown("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
