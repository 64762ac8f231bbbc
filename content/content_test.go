package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const samplePost = `---
title: Wiring up credential login
date: 2024-03-01
tags: [go, auth]
summary: A walk through the login flow.
---

# Intro

Body text.
`

func TestParse(t *testing.T) {
	p, err := Parse("posts/credential-login.md", []byte(samplePost))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Title != "Wiring up credential login" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Date != "2024-03-01" {
		t.Errorf("Date = %q, want 2024-03-01", p.Date)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "go" || p.Tags[1] != "auth" {
		t.Errorf("Tags = %v", p.Tags)
	}
	if p.Slug != "credential-login" {
		t.Errorf("Slug = %q, want slug derived from file name", p.Slug)
	}
	if p.Content != "# Intro\n\nBody text." {
		t.Errorf("Content = %q", p.Content)
	}
	if p.Draft {
		t.Error("Draft should default to false")
	}
}

func TestParseExplicitSlugAndDraft(t *testing.T) {
	p, err := Parse("x.md", []byte("---\ntitle: T\ndate: 2024-01-01\nslug: custom\ndraft: true\n---\nbody"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Slug != "custom" || !p.Draft {
		t.Errorf("Slug = %q, Draft = %v", p.Slug, p.Draft)
	}
}

func TestParseDashesInsideFrontmatterAndBody(t *testing.T) {
	input := "---\r\ntitle: a --- b\r\ndate: 2024-01-01\r\n---\r\nintro\n\n---\n\noutro"
	p, err := Parse("dashes.md", []byte(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Title != "a --- b" {
		t.Errorf("Title = %q, want %q", p.Title, "a --- b")
	}
	if p.Content != "intro\n\n---\n\noutro" {
		t.Errorf("Content = %q, horizontal rule should stay in the body", p.Content)
	}
}

func TestParseDelimiterMustBeWholeLine(t *testing.T) {
	_, err := Parse("x.md", []byte("---\ntitle: x\n--- not a delimiter\n"))
	if !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("err = %v, want ErrNoFrontmatter", err)
	}
	if _, err := Parse("y.md", []byte("----\ntitle: y\n---\n")); !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("opening line must be exactly ---, got err %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no frontmatter", "just text"},
		{"unterminated", "---\ntitle: x\n"},
		{"missing title", "---\ndate: 2024-01-01\n---\nbody"},
		{"bad date", "---\ntitle: x\ndate: March 1st\n---\nbody"},
		{"bad yaml", "---\ntitle: [unclosed\n---\nbody"},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.name+".md", []byte(tt.input)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	_, err := Parse("plain.md", []byte("just text"))
	if !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("err = %v, want ErrNoFrontmatter", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b-second.md":      "---\ntitle: Second\ndate: 2024-02-01\n---\nb",
		"a-first.md":       "---\ntitle: First\ndate: 2024-01-01\n---\na",
		"notes.txt":        "ignored",
		"nested/c-deep.MD": "---\ntitle: Deep\ndate: 2024-03-01\n---\nc",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("LoadDir returned %d posts, want 3", len(posts))
	}
	want := []string{"a-first", "b-second", "c-deep"}
	for i, slug := range want {
		if posts[i].Slug != slug {
			t.Errorf("posts[%d].Slug = %q, want %q", i, posts[i].Slug, slug)
		}
	}
}

func TestLoadDirStopsOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.md"), []byte("no frontmatter"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); !errors.Is(err, ErrNoFrontmatter) {
		t.Errorf("err = %v, want ErrNoFrontmatter", err)
	}
}
