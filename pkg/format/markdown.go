package format

import (
	"fmt"
	"net/url"
	"strings"
)

// Badge colors understood by shields.io.
const (
	BadgeColorSuccess  = "success"
	BadgeColorWarning  = "yellow"
	BadgeColorCritical = "critical"
)

// BadgeURL builds a shields.io static badge URL.
func BadgeURL(label string, message string, color string) string {
	escape := func(s string) string {
		// shields.io path segments use dashes as separators
		s = strings.ReplaceAll(s, "-", "--")
		s = strings.ReplaceAll(s, "_", "__")
		return url.PathEscape(s)
	}
	return fmt.Sprintf("https://img.shields.io/badge/%s-%s-%s?style=flat", escape(label), escape(message), color)
}

// Badge renders a markdown image for a shields.io static badge.
func Badge(label string, message string, color string) string {
	return fmt.Sprintf("![%s](%s)", label, BadgeURL(label, message, color))
}

// Collapse wraps a markdown document in collapsible markup. The first line of
// the document is treated as the title and stays visible; everything after it
// is folded behind the summary label. The wrapper adapts to the document
// instead of assuming a fixed line layout.
func Collapse(doc string, summaryLabel string) string {
	doc = strings.TrimRight(doc, "\n")
	title := doc
	body := ""
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		title, body = doc[:i], doc[i+1:]
	}

	var sb strings.Builder
	sb.WriteString(title + "\n")
	sb.WriteString("<details>\n")
	sb.WriteString("<summary>" + summaryLabel + "</summary>\n")
	sb.WriteString("\n")
	if body != "" {
		sb.WriteString(body + "\n")
	}
	sb.WriteString("\n</details>\n")
	return sb.String()
}
