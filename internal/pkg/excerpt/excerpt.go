// Package excerpt derives a plain-text summary from markdown content, used
// when a post is created without an explicit excerpt.
package excerpt

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

const DefaultMaxRunes = 200

// FromMarkdown renders the markdown, strips markup and collapses whitespace,
// then truncates to maxRunes. maxRunes <= 0 uses DefaultMaxRunes.
func FromMarkdown(md string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}

	var buf bytes.Buffer
	text := md
	if err := goldmark.Convert([]byte(md), &buf); err == nil {
		text = extractText(buf.String())
	}

	text = collapseWhitespace(text)
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimRight(string(runes[:maxRunes]), " ") + "…"
}

func extractText(htmlStr string) string {
	var sb strings.Builder
	tok := html.NewTokenizer(strings.NewReader(htmlStr))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(tok.Text())
			sb.WriteByte(' ')
		}
	}
}

func collapseWhitespace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}
