package docx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// Sentinel errors for composition.
var (
	ErrMalformedDocument = errors.New("docx: intermediate document has no recognizable body")
)

// ComposeOptions carries everything the final artifact needs beyond the
// engine-produced body.
type ComposeOptions struct {
	Title     string
	Version   string
	Date      string
	Statement string // empty omits the statement block

	LeftHeader  string
	RightHeader string

	LogoPath string // optional; shown once, in the first-page header
}

// Compose assembles the final artifact at outputPath from the engine's
// intermediate body document: a cover page, a table-of-contents field, the
// body, running headers/footers on every section, and (when a logo is
// supplied) a distinct first-page header carrying the logo so it appears
// exactly once.
func Compose(intermediatePath, outputPath string, opts ComposeOptions) error {
	p, err := readPkg(intermediatePath)
	if err != nil {
		return err
	}

	if err := p.prependFrontMatter(opts); err != nil {
		return err
	}
	if err := p.applyHeadersFooters(opts); err != nil {
		return err
	}
	return p.write(outputPath)
}

// prependFrontMatter inserts the cover page, optional statement page, and
// TOC field at the start of the document body.
func (p pkg) prependFrontMatter(opts ComposeOptions) error {
	doc, ok := p[partDocument]
	if !ok {
		return ErrMalformedDocument
	}
	idx := bytes.Index(doc, []byte("<w:body>"))
	if idx < 0 {
		return ErrMalformedDocument
	}
	insertAt := idx + len("<w:body>")

	var front strings.Builder
	writeCoverXML(&front, opts)
	writeTOCXML(&front)

	var out bytes.Buffer
	out.Grow(len(doc) + front.Len())
	out.Write(doc[:insertAt])
	out.WriteString(front.String())
	out.Write(doc[insertAt:])
	p[partDocument] = out.Bytes()
	return nil
}

// writeCoverXML emits the cover paragraphs: centered bold title, version
// label, date, then (when present) a page-broken statement block.
func writeCoverXML(b *strings.Builder, opts ComposeOptions) {
	title := paragraph{props: centered, runs: []run{textRun(sizedProps(24, true), opts.Title)}}
	version := paragraph{props: centered, runs: []run{textRun(sizedProps(18, false), opts.Version)}}
	date := paragraph{props: centered, runs: []run{textRun(sizedProps(18, false), opts.Date)}}

	b.WriteString(title.xml())
	b.WriteString(paragraph{}.xml()) // spacer
	b.WriteString(version.xml())
	b.WriteString(paragraph{}.xml())
	b.WriteString(date.xml())

	if opts.Statement != "" {
		b.WriteString(pageBreakPara().xml())
		heading := paragraph{props: centered, runs: []run{textRun(sizedProps(14, false), "声明")}}
		body := paragraph{props: centered, runs: []run{textRun(sizedProps(12, false), opts.Statement)}}
		b.WriteString(heading.xml())
		b.WriteString(body.xml())
	}
}

// writeTOCXML emits the table-of-contents placeholder field followed by a
// page break. The field is evaluated by whatever opens the document.
func writeTOCXML(b *strings.Builder) {
	toc := paragraph{runs: fieldRuns(TOCFieldInstr, true)}
	b.WriteString(toc.xml())
	b.WriteString(pageBreakPara().xml())
}

// headerRefPattern strips any header/footer references the intermediate
// document may already carry before ours are installed.
var headerRefPattern = regexp.MustCompile(`<w:(headerReference|footerReference)\b[^>]*/>`)

// applyHeadersFooters installs the running header and page-number footer on
// every section of the document and, when a logo is supplied, a distinct
// first-page header containing it.
func (p pkg) applyHeadersFooters(opts ComposeOptions) error {
	doc, ok := p[partDocument]
	if !ok {
		return ErrMalformedDocument
	}

	p[partHeader] = headerXML(opts.LeftHeader, opts.RightHeader)
	p[partFooter] = footerXML()

	refs := `<w:headerReference w:type="default" r:id="rIdHdrRun"/>` +
		`<w:footerReference w:type="default" r:id="rIdFtrRun"/>`

	withLogo := opts.LogoPath != ""
	if withLogo {
		if err := p.addFirstPageHeader(opts); err != nil {
			return err
		}
		refs += `<w:headerReference w:type="first" r:id="rIdHdrFirst"/><w:titlePg/>`
	}

	doc = headerRefPattern.ReplaceAll(doc, nil)

	// Install the references at the open of every sectPr. Both the inline
	// (<w:sectPr>) and self-closing forms appear in engine output.
	doc = bytes.ReplaceAll(doc, []byte("<w:sectPr>"), []byte("<w:sectPr>"+refs))
	doc = replaceAttributedSectPr(doc, refs)
	p[partDocument] = doc

	p.addRelationship("rIdHdrRun", "header", "header1.xml")
	p.addRelationship("rIdFtrRun", "footer", "footer1.xml")
	p.addContentTypeOverride("/word/header1.xml", "header")
	p.addContentTypeOverride("/word/footer1.xml", "footer")
	if withLogo {
		p.addRelationship("rIdHdrFirst", "header", "header2.xml")
		p.addContentTypeOverride("/word/header2.xml", "header")
	}
	return nil
}

// replaceAttributedSectPr handles sectPr open tags that carry attributes
// (e.g. revision ids), inserting refs after the closing '>'.
func replaceAttributedSectPr(doc []byte, refs string) []byte {
	pattern := regexp.MustCompile(`<w:sectPr\s[^>/]*>`)
	return pattern.ReplaceAllFunc(doc, func(m []byte) []byte {
		return append(m, refs...)
	})
}

// addFirstPageHeader builds header2.xml with the logo image on the left
// and the right-header text on the right, plus its media and relationships.
func (p pkg) addFirstPageHeader(opts ComposeOptions) error {
	data, err := os.ReadFile(opts.LogoPath)
	if err != nil {
		return fmt.Errorf("reading logo: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding logo %q: %w", opts.LogoPath, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.LogoPath)), ".")
	if ext == "" {
		ext = "png"
	}
	mediaName := "word/media/logo_header." + ext
	p[mediaName] = data
	p.addDefaultContentType(ext)

	// One inch wide, height preserving aspect ratio, in EMUs.
	const emuPerInch = 914400
	cx := int64(emuPerInch)
	cy := cx
	if cfg.Width > 0 {
		cy = cx * int64(cfg.Height) / int64(cfg.Width)
	}

	left := paragraph{runs: []run{{body: drawingXML("rIdHdrLogo", cx, cy)}}}
	right := paragraph{
		props: `<w:jc w:val="right"/>`,
		runs:  []run{textRun(sizedProps(12, false), opts.RightHeader)},
	}
	p[partFirstHeader] = []byte(xmlHeaderPart("w:hdr", left.xml()+right.xml()))

	relsName := "word/_rels/header2.xml.rels"
	p[relsName] = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rIdHdrLogo" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/logo_header.` + ext + `"/>
</Relationships>`)
	return nil
}

// drawingXML renders an inline picture anchored to the run, sized in EMUs.
func drawingXML(relID string, cx, cy int64) string {
	return fmt.Sprintf(`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="1" name="logo"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="1" name="logo"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, relID, cx, cy)
}

const relTypePrefix = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

// addRelationship appends a relationship to word/_rels/document.xml.rels,
// creating the part when the intermediate document lacks one.
func (p pkg) addRelationship(id, kind, target string) {
	rels, ok := p[partDocumentRels]
	if !ok {
		rels = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`)
	}
	if bytes.Contains(rels, []byte(`Id="`+id+`"`)) {
		return
	}
	entry := fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relTypePrefix, kind, target)
	rels = bytes.Replace(rels, []byte("</Relationships>"), []byte(entry+"</Relationships>"), 1)
	p[partDocumentRels] = rels
}

// addContentTypeOverride registers a part's content type.
func (p pkg) addContentTypeOverride(partName, kind string) {
	ct, ok := p[partContentTypes]
	if !ok || bytes.Contains(ct, []byte(`PartName="`+partName+`"`)) {
		return
	}
	entry := fmt.Sprintf(`<Override PartName="%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.%s+xml"/>`, partName, kind)
	p[partContentTypes] = bytes.Replace(ct, []byte("</Types>"), []byte(entry+"</Types>"), 1)
}

// addDefaultContentType registers a media extension default.
func (p pkg) addDefaultContentType(ext string) {
	ct, ok := p[partContentTypes]
	if !ok || bytes.Contains(ct, []byte(`Extension="`+ext+`"`)) {
		return
	}
	mime := "image/" + ext
	if ext == "jpg" {
		mime = "image/jpeg"
	}
	entry := fmt.Sprintf(`<Default Extension="%s" ContentType="%s"/>`, ext, mime)
	p[partContentTypes] = bytes.Replace(ct, []byte("</Types>"), []byte(entry+"</Types>"), 1)
}
