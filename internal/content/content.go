// Package content renders post bodies and derives presentation metadata.
package content

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// wordsPerMinute is the assumed reading speed for the read-time label.
const wordsPerMinute = 200

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderHTML converts markdown post content to HTML. Raw HTML in the
// source is escaped by default, which is what we want for author-supplied
// content.
func RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// ReadTime estimates the read-time label for markdown content, e.g. "3 min read".
func ReadTime(source string) string {
	words := countWords(source)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// Excerpt derives a short plain-text excerpt from markdown content when the
// author did not supply one. Cuts at a word boundary.
func Excerpt(source string, maxLen int) string {
	plain := strings.Join(strings.Fields(stripMarkdown(source)), " ")
	if len(plain) <= maxLen {
		return plain
	}
	cut := plain[:maxLen]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

func countWords(s string) int {
	return len(strings.Fields(stripMarkdown(s)))
}

// stripMarkdown removes the most common markdown syntax so word counts and
// excerpts are not skewed by formatting characters. It is an estimate, not
// a parser.
func stripMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "#>-*+ \t")
		for _, r := range trimmed {
			switch r {
			case '*', '_', '`', '[', ']', '(', ')', '!':
				b.WriteRune(' ')
			default:
				if unicode.IsPrint(r) || r == '\t' {
					b.WriteRune(r)
				}
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}
