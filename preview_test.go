package mdtransform

import (
	"context"
	"strings"
	"testing"
)

func TestPreviewRendererBasics(t *testing.T) {
	r := newPreviewRenderer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "heading and emphasis",
			input: "# Title\n\n*soft*",
			want:  []string{"<h1", "Title", "<em>soft</em>"},
		},
		{
			name:  "gfm table",
			input: "| a | b |\n|---|---|\n| 1 | 2 |",
			want:  []string{"<table>", "<td>1</td>"},
		},
		{
			name:  "fenced code highlighted",
			input: "```go\nfunc main() {}\n```",
			want:  []string{"<pre", "main"},
		},
		{
			name:  "strikethrough",
			input: "~~gone~~",
			want:  []string{"<del>gone</del>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(context.Background(), "doc", tt.input)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestPreviewRendererTitleEscaped(t *testing.T) {
	r := newPreviewRenderer()

	got, err := r.Render(context.Background(), "<script>", "body")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(got, "<title><script></title>") {
		t.Error("Render() did not escape the title")
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Render() title not escaped:\n%s", got)
	}
}

func TestPreviewRendererCanceled(t *testing.T) {
	r := newPreviewRenderer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, "doc", "# x"); err == nil {
		t.Error("Render() with canceled context succeeded")
	}
}
