package report

import "strings"

// htmlMarker is the root marker whose presence means content is already HTML.
const htmlMarker = "<html"

const wrapperHead = `<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; line-height: 1.6; }
        pre { background-color: #f4f4f4; padding: 10px; border-radius: 5px; white-space: pre-wrap; font-family: Menlo, Consolas, monospace; }
    </style>
</head>
<body>
<pre>`

const wrapperTail = `</pre>
</body>
</html>`

// IsHTML reports whether content contains an HTML root marker, ignoring case.
func IsHTML(content string) bool {
	return strings.Contains(strings.ToLower(content), htmlMarker)
}

// EnsureHTML returns content unchanged if it is already an HTML document,
// otherwise it wraps it verbatim in a minimal styled document suitable as an
// email body. The text is not escaped so it stays byte-identical inside <pre>.
func EnsureHTML(content string) string {
	if IsHTML(content) {
		return content
	}
	return wrapperHead + content + wrapperTail
}
