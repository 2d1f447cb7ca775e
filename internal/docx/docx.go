// Package docx writes and composes WordprocessingML packages. It covers
// exactly what the conversion pipeline needs from a document composer:
// building the reference template Pandoc styles its body against, and
// splicing a cover page, a table-of-contents field, running headers and
// footers, and a first-page logo into Pandoc's intermediate output.
//
// Dynamic content (page numbers, the TOC) is written as Word field codes,
// never pre-computed values, so artifacts stay correct when a consuming
// application re-evaluates fields.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// OOXML part names used across the package.
const (
	partContentTypes = "[Content_Types].xml"
	partPackageRels  = "_rels/.rels"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partStyles       = "word/styles.xml"
	partHeader       = "word/header1.xml"
	partFirstHeader  = "word/header2.xml"
	partFooter       = "word/footer1.xml"
)

// Right tab stop position for split headers, in twips (6.5" at 1440/inch).
const headerTabTwips = 9360

// xmlEscape escapes text destined for XML character data or attributes.
func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// pkg is an in-memory OOXML package: part name to part bytes.
type pkg map[string][]byte

// readPkg loads a .docx file into memory.
func readPkg(path string) (pkg, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	defer r.Close()

	p := make(pkg, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening part %q: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("reading part %q: %w", f.Name, err)
		}
		_ = rc.Close()
		p[f.Name] = buf.Bytes()
	}
	return p, nil
}

// write serializes the package to path. Part order is not significant to
// consumers, but [Content_Types].xml is emitted first by convention.
func (p pkg) write(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating package: %w", err)
	}
	zw := zip.NewWriter(out)

	names := make([]string, 0, len(p))
	if _, ok := p[partContentTypes]; ok {
		names = append(names, partContentTypes)
	}
	for name := range p {
		if name != partContentTypes {
			names = append(names, name)
		}
	}

	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			_ = out.Close()
			return fmt.Errorf("creating part %q: %w", name, err)
		}
		if _, err := w.Write(p[name]); err != nil {
			_ = out.Close()
			return fmt.Errorf("writing part %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finalizing package: %w", err)
	}
	return out.Close()
}

// paragraph builds a w:p with optional properties and runs.
type paragraph struct {
	props string // raw w:pPr children (alignment etc.)
	runs  []run
}

type run struct {
	props string // raw w:rPr children (size, bold)
	body  string // raw run content (w:t, fields, breaks, drawings)
}

func (p paragraph) xml() string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if p.props != "" {
		b.WriteString("<w:pPr>" + p.props + "</w:pPr>")
	}
	for _, r := range p.runs {
		b.WriteString("<w:r>")
		if r.props != "" {
			b.WriteString("<w:rPr>" + r.props + "</w:rPr>")
		}
		b.WriteString(r.body)
		b.WriteString("</w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

// textRun wraps escaped text in a w:t with space preservation.
func textRun(props, text string) run {
	return run{props: props, body: `<w:t xml:space="preserve">` + xmlEscape(text) + `</w:t>`}
}

// sizedProps renders run properties for a half-point font size with
// optional bold. Word measures w:sz in half-points.
func sizedProps(points int, bold bool) string {
	var b strings.Builder
	if bold {
		b.WriteString("<w:b/>")
	}
	fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, points*2, points*2)
	return b.String()
}

const centered = `<w:jc w:val="center"/>`

// pageBreakPara is a paragraph holding a single explicit page break.
func pageBreakPara() paragraph {
	return paragraph{runs: []run{{body: `<w:br w:type="page"/>`}}}
}

// fieldRuns renders a Word field code as begin/instr/separate/end runs.
// withSeparate controls whether an empty cached result is included (the
// TOC field carries one, the PAGE field does not).
func fieldRuns(instr string, withSeparate bool) []run {
	runs := []run{
		{body: `<w:fldChar w:fldCharType="begin"/>`},
		{body: `<w:instrText xml:space="preserve">` + xmlEscape(instr) + `</w:instrText>`},
	}
	if withSeparate {
		runs = append(runs, run{body: `<w:fldChar w:fldCharType="separate"/>`})
	}
	runs = append(runs, run{body: `<w:fldChar w:fldCharType="end"/>`})
	return runs
}

// TOCFieldInstr is the table-of-contents field code: headings 1-3,
// hyperlinked, hiding tab leaders in web view, using applied paragraph
// outline levels.
const TOCFieldInstr = `TOC \o "1-3" \h \z \u`

// PageFieldInstr is the running page number field code.
const PageFieldInstr = `PAGE   \* MERGEFORMAT`

// headerXML renders a header part: left text, right tab stop, right text.
func headerXML(left, right string) []byte {
	p := paragraph{
		props: fmt.Sprintf(`<w:tabs><w:tab w:val="right" w:pos="%d"/></w:tabs>`, headerTabTwips),
		runs: []run{
			textRun("", left),
			{body: `<w:tab/>`},
			textRun("", right),
		},
	}
	return []byte(xmlHeaderPart("w:hdr", p.xml()))
}

// footerXML renders a centered footer part carrying "Page " plus a PAGE
// field code.
func footerXML() []byte {
	p := paragraph{
		props: centered,
		runs:  append([]run{textRun("", "Page ")}, fieldRuns(PageFieldInstr, false)...),
	}
	return []byte(xmlHeaderPart("w:ftr", p.xml()))
}

const wNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

// xmlHeaderPart wraps body content in a root element with the standard
// WordprocessingML namespaces.
func xmlHeaderPart(root, body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		"<" + root + " " + wNamespaces + ">" + body + "</" + root + ">"
}
