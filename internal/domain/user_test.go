package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserJSON_NeverExposesPasswordHash(t *testing.T) {
	u := User{
		BaseModel:    BaseModel{ID: 3},
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$examplehash",
	}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	body := string(raw)

	for _, leak := range []string{"PasswordHash", "password", "$2a$10$examplehash"} {
		if strings.Contains(body, leak) {
			t.Errorf("user json leaks %q: %s", leak, body)
		}
	}
	for _, want := range []string{`"id":3`, `"name":"Alice"`, `"createdAt"`} {
		if !strings.Contains(body, want) {
			t.Errorf("user json missing %s: %s", want, body)
		}
	}
}

func TestUserJSON_PasswordHashNotAssignableFromInput(t *testing.T) {
	var u User
	input := `{"name":"Mallory","PasswordHash":"injected","passwordHash":"injected"}`
	if err := json.Unmarshal([]byte(input), &u); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("PasswordHash = %q, want empty", u.PasswordHash)
	}
	if u.Name != "Mallory" {
		t.Fatalf("Name = %q, want Mallory", u.Name)
	}
}

func TestPostJSON_OmitsPreloadedAuthor(t *testing.T) {
	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := Post{
		BaseModel:   BaseModel{ID: 9},
		Title:       "Hello",
		UserID:      3,
		User:        &User{Name: "Alice", Email: "alice@example.com"},
		PublishedAt: &published,
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal post: %v", err)
	}
	body := string(raw)

	if strings.Contains(body, "alice@example.com") {
		t.Errorf("post json leaks author email: %s", body)
	}
	for _, want := range []string{`"userId":3`, `"draft":false`, `"publishedAt":"2025-06-01T12:00:00Z"`, `"publishAt":null`} {
		if !strings.Contains(body, want) {
			t.Errorf("post json missing %s: %s", want, body)
		}
	}
}
