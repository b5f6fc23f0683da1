package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
	),
)

// markdownToHTML converts the report markdown to an HTML fragment
func markdownToHTML(markdown string) (string, error) {
	var buf strings.Builder
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return buf.String(), nil
}

const baseStyle = `
body {
    font-family: Arial, sans-serif;
    line-height: 1.6;
    margin: 40px;
}
table {
    border-collapse: collapse;
    width: 100%;
    margin: 20px 0;
}
th, td {
    border: 1px solid #ddd;
    padding: 8px;
    text-align: left;
}
th {
    background-color: #f5f5f5;
}
h1, h2, h3 {
    color: #333;
}
`

// wrapDocument builds the complete HTML document handed to the converter.
// extraCSS is appended after the base style so callers can override it.
func wrapDocument(title, body, extraCSS string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("    <meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", title)
	b.WriteString("    <style>")
	b.WriteString(baseStyle)
	b.WriteString(extraCSS)
	b.WriteString("</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
