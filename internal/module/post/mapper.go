package post

import (
	"fmt"

	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/pkg"
)

func toPostView(p domain.Post) domain.PostView {
	return domain.PostView{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		UserID:      p.UserID,
		Draft:       p.Draft,
		PublishedAt: p.PublishedAt,
		PublishAt:   p.PublishAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPublicPost(p domain.Post) (domain.PublicPost, error) {
	excerpt, err := pkg.Excerpt(p.Content)
	if err != nil {
		return domain.PublicPost{}, fmt.Errorf("post %d excerpt: %w", p.ID, err)
	}
	return domain.PublicPost{
		ID:          p.ID,
		Title:       p.Title,
		Excerpt:     excerpt,
		UserID:      p.UserID,
		PublishedAt: p.PublishedAt,
	}, nil
}

func toAuthoredPost(p domain.Post) (domain.AuthoredPost, error) {
	name, err := authorName(p)
	if err != nil {
		return domain.AuthoredPost{}, err
	}
	return domain.AuthoredPost{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		UserID:      p.UserID,
		AuthorName:  name,
		PublishedAt: p.PublishedAt,
	}, nil
}

func toPostDetail(p domain.Post) (domain.PostDetail, error) {
	name, err := authorName(p)
	if err != nil {
		return domain.PostDetail{}, err
	}
	html, err := pkg.RenderMarkdown(p.Content)
	if err != nil {
		return domain.PostDetail{}, fmt.Errorf("post %d render: %w", p.ID, err)
	}
	return domain.PostDetail{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: html,
		UserID:      p.UserID,
		AuthorName:  name,
		PublishedAt: p.PublishedAt,
	}, nil
}

func authorName(p domain.Post) (string, error) {
	if p.User == nil {
		return "", fmt.Errorf("post %d: %w", p.ID, errAuthorNotLoaded)
	}
	return p.User.Name, nil
}
