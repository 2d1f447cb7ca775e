package mdtransform

import (
	"fmt"
	"time"

	"github.com/LoserCoderLi/markdown-transform/internal/dateutil"
)

// Output format constants.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatDOCX = "docx"
)

// IsValidFormat reports whether f names a supported output format.
func IsValidFormat(f string) bool {
	switch f {
	case FormatPDF, FormatHTML, FormatDOCX:
		return true
	}
	return false
}

// Default presentation parameter values, applied for every omitted field.
const (
	DefaultTitle       = "Document Title"
	DefaultVersion     = "1.0"
	DefaultLeftHeader  = "Left Header"
	DefaultRightHeader = "Right Header"
	DefaultCoverFooter = "Cover Footer"
)

// Field length limits. Presentation parameters are spliced into generated
// templates, so bounding them caps template size.
const (
	MaxTitleLength     = 200
	MaxVersionLength   = 50
	MaxStatementLength = 2000
	MaxHeaderLength    = 100
	MaxDateLength      = 30
)

// ConvertParams is the presentation parameter bundle supplied per convert
// request. It is never persisted beyond the request.
type ConvertParams struct {
	Title       string // cover page title
	Version     string // version label, rendered as 版本号:<Version>
	Statement   string // free-text statement; empty omits the statement page
	LeftHeader  string // running header, left side
	RightHeader string // running header, right side
	CoverFooter string // cover page footer text
	Date        string // empty or "auto" = today; supports "auto:FORMAT"
	UseTemplate bool   // PDF only: styled header/footer preamble vs bare styling
}

// Validate checks field lengths. Zero values are always valid (defaults
// apply for omitted fields).
func (p ConvertParams) Validate() error {
	checks := []struct {
		name  string
		value string
		max   int
	}{
		{"title", p.Title, MaxTitleLength},
		{"version", p.Version, MaxVersionLength},
		{"statement", p.Statement, MaxStatementLength},
		{"left_header", p.LeftHeader, MaxHeaderLength},
		{"right_header", p.RightHeader, MaxHeaderLength},
		{"cover_footer", p.CoverFooter, MaxHeaderLength},
		{"date", p.Date, MaxDateLength},
	}
	for _, c := range checks {
		if len(c.value) > c.max {
			return fmt.Errorf("%w: %s (%d > %d)", ErrFieldTooLong, c.name, len(c.value), c.max)
		}
	}
	return nil
}

// withDefaults fills omitted fields and resolves the date relative to now.
func (p ConvertParams) withDefaults(now time.Time) (ConvertParams, error) {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Version == "" {
		p.Version = DefaultVersion
	}
	if p.LeftHeader == "" {
		p.LeftHeader = DefaultLeftHeader
	}
	if p.RightHeader == "" {
		p.RightHeader = DefaultRightHeader
	}
	if p.CoverFooter == "" {
		p.CoverFooter = DefaultCoverFooter
	}
	if p.Date == "" {
		p.Date = "auto"
	}
	resolved, err := dateutil.Resolve(p.Date, now)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	p.Date = resolved
	return p, nil
}

// versionLabel renders the version string the way the cover page shows it.
func versionLabel(version string) string {
	return "版本号:" + version
}
