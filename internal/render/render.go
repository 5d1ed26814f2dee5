package render

import "strings"

// Markdown renders content for the terminal. Content already rendered with
// the same options comes from memory.
func Markdown(content string, opts Options) (string, error) {
	return replies.render(content, opts)
}

// Reply renders a bot reply for the terminal. Rendering failures fall back
// to the raw text; glamour's trailing newlines are trimmed.
func Reply(content string, opts Options) string {
	rendered, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
