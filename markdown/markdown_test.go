package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		input    string
		contains string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"`code`", "<code>code</code>"},
		{"# Title", `<h1 id="title">Title</h1>`},
		{"[link](https://example.com)", `<a href="https://example.com">link</a>`},
		{"- one\n- two", "<li>one</li>"},
		{"~~gone~~", "<del>gone</del>"},
		{"| a | b |\n|---|---|\n| 1 | 2 |", "<table>"},
	}
	for _, tt := range tests {
		got, err := ToHTML(tt.input)
		if err != nil {
			t.Fatalf("ToHTML(%q): %v", tt.input, err)
		}
		if !strings.Contains(got, tt.contains) {
			t.Errorf("ToHTML(%q) = %q, want it to contain %q", tt.input, got, tt.contains)
		}
	}
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	got, err := ToHTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html was not dropped: %q", got)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Component("plain *text*").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "<p>plain <em>text</em></p>\n" {
		t.Errorf("Component rendered %q", got)
	}
}
