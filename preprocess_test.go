package mdtransform

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestForHTML(t *testing.T) {
	p := Preprocessor{}

	got := p.ForHTML("intro\n# Heading\nbody", "My Doc")

	if !strings.HasPrefix(got, "% My Doc\n\n") {
		t.Errorf("ForHTML() missing title block:\n%s", got)
	}
	if !strings.Contains(got, "intro\n\n\n# Heading\n\nbody") {
		t.Errorf("ForHTML() heading not isolated:\n%s", got)
	}
}

func TestForHTMLNormalizesCRLF(t *testing.T) {
	p := Preprocessor{}

	got := p.ForHTML("a\r\n## B\r\nc", "T")
	if strings.Contains(got, "\r") {
		t.Errorf("ForHTML() kept carriage returns:\n%q", got)
	}
	if !strings.Contains(got, "## B") {
		t.Errorf("ForHTML() lost heading:\n%s", got)
	}
}

func TestForDOCX(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "image isolated",
			input: "text\n![alt](img.png)\nmore",
			want:  "text\n\n![alt](img.png)\n\nmore\n",
		},
		{
			name:  "list item isolated",
			input: "text\n- item\nmore",
			want:  "text\n\n- item\n\nmore\n",
		},
		{
			name:  "already blank separated",
			input: "text\n\n![alt](img.png)\n",
			want:  "text\n\n![alt](img.png)\n\n\n",
		},
		{
			name:  "plain text unchanged",
			input: "one\ntwo\n",
			want:  "one\ntwo\n\n",
		},
	}

	p := Preprocessor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ForDOCX(tt.input); got != tt.want {
				t.Errorf("ForDOCX() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForPDFProlog(t *testing.T) {
	p := Preprocessor{SourceDir: t.TempDir()}

	got, err := p.ForPDF("body text", PDFProlog{
		Title:     "Report",
		Version:   "版本号:1.0",
		Date:      "2024-06-15",
		Statement: "Internal only",
	})
	if err != nil {
		t.Fatalf("ForPDF() error: %v", err)
	}

	wantOrder := []string{
		"\\coverpage{Report}{版本号:1.0}{2024-06-15}{}",
		"\\newpage",
		"\\statementpage{Internal only}",
		"\\tableofcontents",
		"body text",
	}
	pos := -1
	for _, marker := range wantOrder {
		idx := strings.Index(got, marker)
		if idx < 0 {
			t.Fatalf("ForPDF() output missing %q:\n%s", marker, got)
		}
		if idx < pos {
			t.Errorf("ForPDF() %q out of order:\n%s", marker, got)
		}
		pos = idx
	}
}

func TestForPDFNoStatement(t *testing.T) {
	p := Preprocessor{SourceDir: t.TempDir()}

	got, err := p.ForPDF("body", PDFProlog{Title: "T", Version: "v", Date: "d"})
	if err != nil {
		t.Fatalf("ForPDF() error: %v", err)
	}
	if strings.Contains(got, "\\statementpage") {
		t.Errorf("ForPDF() emitted statement page for empty statement:\n%s", got)
	}
}

func TestForPDFEscapesFields(t *testing.T) {
	p := Preprocessor{SourceDir: t.TempDir()}

	got, err := p.ForPDF("body", PDFProlog{
		Title:   "Q&A 100%",
		Version: "v_1",
		Date:    "d",
	})
	if err != nil {
		t.Fatalf("ForPDF() error: %v", err)
	}
	if !strings.Contains(got, "Q\\&A 100\\%") {
		t.Errorf("ForPDF() did not escape title:\n%s", got)
	}
	if !strings.Contains(got, "v\\_1") {
		t.Errorf("ForPDF() did not escape version:\n%s", got)
	}
}

func TestForPDFImageReservation(t *testing.T) {
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "images"))
	writeTestPNG(t, filepath.Join(dir, "images", "chart.png"), 100, 200)

	p := Preprocessor{SourceDir: dir}

	got, err := p.ForPDF("before\n![chart](./images/chart.png)\nafter", PDFProlog{
		Title: "T", Version: "v", Date: "d",
	})
	if err != nil {
		t.Fatalf("ForPDF() error: %v", err)
	}

	// 200px at the default 72 DPI is 200pt, plus the caption margin.
	if !strings.Contains(got, "\\needspace{210pt}") {
		t.Errorf("ForPDF() missing reservation:\n%s", got)
	}

	resolved := filepath.ToSlash(filepath.Join(dir, "images", "chart.png"))
	if !strings.Contains(got, "![chart]("+resolved+")") {
		t.Errorf("ForPDF() did not rewrite image path:\n%s", got)
	}
}

func TestForPDFMissingImage(t *testing.T) {
	p := Preprocessor{SourceDir: t.TempDir()}

	_, err := p.ForPDF("![gone](missing.png)", PDFProlog{Title: "T", Version: "v", Date: "d"})
	if !errors.Is(err, ErrImageMeasure) {
		t.Errorf("ForPDF() error = %v, want ErrImageMeasure", err)
	}
}

func TestForPDFBody(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "chart.png"), 100, 200)

	p := Preprocessor{SourceDir: dir}

	got, err := p.ForPDFBody("intro\n# Heading\n![chart](chart.png)\nafter")
	if err != nil {
		t.Fatalf("ForPDFBody() error: %v", err)
	}

	for _, directive := range []string{"\\coverpage", "\\statementpage", "\\tableofcontents", "\\newpage"} {
		if strings.Contains(got, directive) {
			t.Errorf("ForPDFBody() emitted %s:\n%s", directive, got)
		}
	}
	if !strings.HasPrefix(got, "intro\n") {
		t.Errorf("ForPDFBody() output does not start with the body:\n%s", got)
	}
	if !strings.Contains(got, "\\needspace{210pt}") {
		t.Errorf("ForPDFBody() missing reservation:\n%s", got)
	}
	if !strings.Contains(got, "\n\n# Heading\n\n") {
		t.Errorf("ForPDFBody() heading not isolated:\n%s", got)
	}
}

func TestForPDFMissingImageBody(t *testing.T) {
	p := Preprocessor{SourceDir: t.TempDir()}

	_, err := p.ForPDFBody("![gone](missing.png)")
	if !errors.Is(err, ErrImageMeasure) {
		t.Errorf("ForPDFBody() error = %v, want ErrImageMeasure", err)
	}
}

func TestForPDFHeadingIsolation(t *testing.T) {
	p := Preprocessor{SourceDir: t.TempDir()}

	got, err := p.ForPDF("text\n## Section\nmore", PDFProlog{Title: "T", Version: "v", Date: "d"})
	if err != nil {
		t.Fatalf("ForPDF() error: %v", err)
	}
	if !strings.Contains(got, "text\n\n\n## Section\n\nmore") {
		t.Errorf("ForPDF() heading not isolated:\n%s", got)
	}
}
