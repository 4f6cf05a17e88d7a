package pkg

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ExcerptLength is the maximum number of runes in a listing excerpt.
const ExcerptLength = 200

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			// Raw HTML is passed through and cleaned by ugcPolicy afterwards.
			gmhtml.WithUnsafe(),
		),
	)

	ugcPolicy       = newUGCPolicy()
	stripTagsPolicy = bluemonday.StripTagsPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	return p
}

// RenderMarkdown converts post content to sanitized HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return ugcPolicy.Sanitize(buf.String()), nil
}

// SanitizeText removes every HTML tag from s and returns plain text.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripTagsPolicy.Sanitize(s)))
}

// Excerpt renders src, strips the markup and returns at most ExcerptLength
// runes of collapsed plain text. Truncated text ends with an ellipsis.
func Excerpt(src string) (string, error) {
	rendered, err := RenderMarkdown(src)
	if err != nil {
		return "", err
	}

	text := strings.Join(strings.Fields(SanitizeText(rendered)), " ")
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text, nil
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…", nil
}
