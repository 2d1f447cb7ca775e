package mdtransform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/LoserCoderLi/markdown-transform/internal/fileutil"
	"github.com/LoserCoderLi/markdown-transform/internal/imgmeta"
)

// needspaceMarginPt is added to each measured image height so the reserved
// block absorbs the image's caption spacing.
const needspaceMarginPt = 10

// Preprocessor rewrites raw Markdown into an engine-ready intermediate
// form. The one invariant every mode upholds: a heading or image reference
// that the mode handles is isolated by blank lines on both sides in the
// output, because the engine's block parser silently misrenders adjacent
// block constructs.
//
// Image references are additionally resolved against the session source
// directory and, in PDF mode, preceded by a vertical-space reservation
// sized from the image so the engine never splits it across a page break.
type Preprocessor struct {
	// SourceDir is the session's asset root. Relative image paths resolve
	// against it.
	SourceDir string
}

// PDFProlog is the front matter injected ahead of the body in PDF mode.
type PDFProlog struct {
	Title     string
	Version   string // already labeled (版本号:...)
	Date      string
	LogoPath  string // empty renders the cover without a logo
	Statement string // empty omits the statement page
}

// ForPDF rewrites content for the PDF pipeline: cover, optional statement,
// and TOC directives up front (each page-broken), heading isolation, and
// per-image \needspace reservations. Text fields are escaped before being
// spliced into engine-native markup.
func (p Preprocessor) ForPDF(content string, prolog PDFProlog) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "\\coverpage{%s}{%s}{%s}{%s}\n\n",
		latexEscape(prolog.Title), latexEscape(prolog.Version),
		latexEscape(prolog.Date), latexPathSanitize(prolog.LogoPath))
	b.WriteString("\\newpage\n\n")

	if prolog.Statement != "" {
		fmt.Fprintf(&b, "\\statementpage{%s}\n\n", latexEscape(prolog.Statement))
		b.WriteString("\\newpage\n\n")
	}

	b.WriteString("\\tableofcontents\n\n")
	b.WriteString("\\newpage\n\n")

	if err := p.writeBody(&b, content, true); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ForPDFBody rewrites content for the bare PDF pipeline: heading
// isolation and \needspace reservations only. The bare preamble defines
// no cover or statement macros, so no front matter is emitted.
func (p Preprocessor) ForPDFBody(content string) (string, error) {
	var b strings.Builder
	if err := p.writeBody(&b, content, true); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ForHTML rewrites content for the HTML pipeline: a title block plus
// heading isolation only. Images need no layout control in a scrolling
// medium.
func (p Preprocessor) ForHTML(content, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%% %s\n\n", title)

	previous := ""
	for _, line := range splitLines(content) {
		if isHeading(line) {
			writeIsolatedHeading(&b, line, previous)
		} else {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		previous = line
	}
	return b.String()
}

// ForDOCX rewrites content for the DOCX pipeline: blank-line isolation for
// image references and list items only. The engine's reference-doc styling
// handles everything else.
func (p Preprocessor) ForDOCX(content string) string {
	var b strings.Builder
	previous := ""
	for _, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		switch {
		case isImageRef(line):
			if strings.TrimSpace(previous) != "" {
				b.WriteByte('\n')
			}
			b.WriteString(trimmed)
			b.WriteString("\n\n")
		case strings.HasPrefix(trimmed, "-"):
			if strings.TrimSpace(previous) != "" {
				b.WriteByte('\n')
			}
			b.WriteString(trimmed)
			b.WriteString("\n\n")
		default:
			b.WriteString(line)
			b.WriteByte('\n')
		}
		previous = line
	}
	return b.String()
}

// writeBody emits the normalized body: isolated headings, and (when
// reserveImages is set) resolved image references preceded by \needspace
// reservations.
func (p Preprocessor) writeBody(b *strings.Builder, content string, reserveImages bool) error {
	previous := ""
	for _, line := range splitLines(content) {
		switch {
		case isHeading(line):
			writeIsolatedHeading(b, line, previous)
		case reserveImages && isImageRef(line):
			if err := p.writeReservedImage(b, line, previous); err != nil {
				return err
			}
		default:
			b.WriteString(line)
			b.WriteByte('\n')
		}
		previous = line
	}
	return nil
}

// writeReservedImage resolves the image reference, measures it, and emits
// the reservation directive followed by the rewritten reference. A missing
// or unreadable image fails the whole conversion: a placeholder would
// silently drop required content from the artifact.
func (p Preprocessor) writeReservedImage(b *strings.Builder, line, previous string) error {
	trimmed := strings.TrimSpace(line)
	declared, rest, ok := imagePath(trimmed)
	if !ok {
		b.WriteString(line)
		b.WriteByte('\n')
		return nil
	}

	resolved := p.resolveImagePath(declared)
	if !fileutil.FileExists(resolved) {
		return fmt.Errorf("%w: %q resolved to %q", ErrImageMeasure, declared, resolved)
	}
	size, err := imgmeta.Measure(resolved)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrImageMeasure, declared, err)
	}

	if strings.TrimSpace(previous) != "" {
		b.WriteByte('\n')
	}
	fmt.Fprintf(b, "\\needspace{%.0fpt}\n", size.HeightPoints()+needspaceMarginPt)
	b.WriteString(rewriteImageRef(trimmed, resolved, rest))
	b.WriteString("\n\n")
	return nil
}

// resolveImagePath roots a declared image path at the session source
// directory. A leading "./" points at the session-relative assets layout;
// any other relative path is likewise rooted at the session directory.
func (p Preprocessor) resolveImagePath(declared string) string {
	if filepath.IsAbs(declared) {
		return declared
	}
	declared = strings.TrimPrefix(declared, "./")
	return filepath.Join(p.SourceDir, filepath.FromSlash(declared))
}

// splitLines splits on \n after normalizing CRLF, preserving blank lines.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// isHeading reports whether the line opens an ATX heading.
func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// isImageRef reports whether the line is a Markdown image reference.
func isImageRef(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "![") && strings.Contains(trimmed, "](")
}

// writeIsolatedHeading emits the heading trimmed and blank-line isolated.
func writeIsolatedHeading(b *strings.Builder, line, previous string) {
	if strings.TrimSpace(previous) != "" {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(line))
	b.WriteString("\n\n")
}

// imagePath extracts the target between "](" and ")" of an image
// reference. rest is everything after the closing parenthesis.
func imagePath(line string) (path, rest string, ok bool) {
	start := strings.Index(line, "](")
	if start < 0 {
		return "", "", false
	}
	start += 2
	end := strings.Index(line[start:], ")")
	if end < 0 {
		return "", "", false
	}
	return line[start : start+end], line[start+end+1:], true
}

// rewriteImageRef replaces the declared target with the resolved path.
// Backslashes are normalized so the engine sees forward slashes on every
// platform.
func rewriteImageRef(line, resolved, rest string) string {
	prefix := line[:strings.Index(line, "](")+2]
	return prefix + filepath.ToSlash(resolved) + ")" + rest
}
