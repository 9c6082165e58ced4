package insight

import (
	"html"
	"strings"
)

const placeholderItem = "Information not available"

// stripFences removes a Markdown code-fence wrapper, with or without a
// language tag, from an LLM response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop a language tag like "json" on the opening fence line.
		first := strings.TrimSpace(s[:idx])
		if first != "" && !strings.HasPrefix(first, "{") && !strings.HasPrefix(first, "[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// listFragment renders items as an unordered list. Empty input becomes a
// one-item placeholder fragment so templates never render an empty list.
func listFragment(items []string) string {
	if len(items) == 0 {
		items = []string{placeholderItem}
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
