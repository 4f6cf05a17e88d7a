package pkg

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderMarkdown_Basic(t *testing.T) {
	out, err := RenderMarkdown("# Hello\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello</h1>") {
		t.Errorf("expected heading, got %q", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected strong text, got %q", out)
	}
}

func TestRenderMarkdown_StripsScripts(t *testing.T) {
	out, err := RenderMarkdown("hi\n\n<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(out, "<script") {
		t.Errorf("script tag survived: %q", out)
	}
	if strings.Contains(out, "javascript:") {
		t.Errorf("javascript URL survived: %q", out)
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText("<p>Tom &amp; <b>Jerry</b></p>")
	if got != "Tom & Jerry" {
		t.Errorf("SanitizeText = %q; want %q", got, "Tom & Jerry")
	}
}

func TestExcerpt_Short(t *testing.T) {
	got, err := Excerpt("# Title\n\nBody with *emphasis*.")
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if got != "Title Body with emphasis." {
		t.Errorf("Excerpt = %q", got)
	}
}

func TestExcerpt_TruncatesOnRunes(t *testing.T) {
	src := strings.Repeat("日本語 ", 100)

	got, err := Excerpt(src)
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n > ExcerptLength+1 {
		t.Errorf("excerpt has %d runes; want at most %d", n, ExcerptLength+1)
	}
	if !utf8.ValidString(got) {
		t.Error("excerpt is not valid UTF-8")
	}
}

func TestExcerpt_Empty(t *testing.T) {
	got, err := Excerpt("")
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if got != "" {
		t.Errorf("Excerpt(\"\") = %q; want empty", got)
	}
}
