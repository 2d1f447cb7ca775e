package mdtransform

import (
	"path/filepath"

	"github.com/LoserCoderLi/markdown-transform/internal/docx"
)

// ReferenceTemplateFile is the name of the reference document written into
// a session's template directory for DOCX conversions.
const ReferenceTemplateFile = "template_with_headers.docx"

// WriteDOCXTemplate writes a reference document carrying the requested
// running header and a centered page-number footer. The engine copies its
// styles and section settings into the converted body. Returns the written
// path.
func WriteDOCXTemplate(dir, leftHeader, rightHeader string) (string, error) {
	path := filepath.Join(dir, ReferenceTemplateFile)
	err := docx.WriteReferenceTemplate(path, docx.HeaderFooter{
		LeftHeader:  leftHeader,
		RightHeader: rightHeader,
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
