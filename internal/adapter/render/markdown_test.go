package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML_RendersTables(t *testing.T) {
	markdown := "# Weekly Report\n\n" +
		"| Priority | Total |\n" +
		"|---|---|\n" +
		"| High | 3 |\n"

	html, err := markdownToHTML(markdown)
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>High</td>")
}

func TestWrapDocument(t *testing.T) {
	html := wrapDocument("Weekly Report", "<p>body</p>", ".brand { color: red; }")

	assert.Contains(t, html, "<title>Weekly Report</title>")
	assert.Contains(t, html, "<p>body</p>")
	assert.Contains(t, html, "font-family: Arial")
	assert.Contains(t, html, ".brand { color: red; }")
}
