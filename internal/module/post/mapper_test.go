package post

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/simp-lee/blogapi/internal/domain"
)

func TestToAuthoredPost_RequiresAuthor(t *testing.T) {
	_, err := toAuthoredPost(domain.Post{BaseModel: domain.BaseModel{ID: 3}})
	if !errors.Is(err, errAuthorNotLoaded) {
		t.Errorf("expected errAuthorNotLoaded, got %v", err)
	}

	got, err := toAuthoredPost(domain.Post{Title: "t", User: &domain.User{Name: "alice"}})
	if err != nil {
		t.Fatalf("toAuthoredPost: %v", err)
	}
	if got.AuthorName != "alice" {
		t.Errorf("AuthorName=%q; want alice", got.AuthorName)
	}
}

func TestToPublicPost_ExcerptIsPlainAndBounded(t *testing.T) {
	published := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := toPublicPost(domain.Post{
		Title:       "t",
		Content:     "## Intro\n\n" + strings.Repeat("word ", 100),
		PublishedAt: &published,
	})
	if err != nil {
		t.Fatalf("toPublicPost: %v", err)
	}
	if strings.ContainsAny(got.Excerpt, "<>#") {
		t.Errorf("excerpt contains markup: %q", got.Excerpt)
	}
	if !strings.HasPrefix(got.Excerpt, "Intro word") {
		t.Errorf("excerpt = %q", got.Excerpt)
	}
	if !strings.HasSuffix(got.Excerpt, "…") {
		t.Errorf("long excerpt should end with an ellipsis: %q", got.Excerpt)
	}
	if got.PublishedAt != &published {
		t.Error("PublishedAt pointer should be carried through")
	}
}

func TestToPostView_CarriesOptionalFields(t *testing.T) {
	at := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	got := toPostView(domain.Post{Title: "t", Draft: true, PublishAt: &at})
	if !got.Draft || got.PublishAt == nil || got.PublishedAt != nil {
		t.Errorf("view = %+v", got)
	}
}
