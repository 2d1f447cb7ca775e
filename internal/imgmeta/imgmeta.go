// Package imgmeta measures raster images for layout reservation: pixel
// dimensions via the standard image decoders, physical resolution from
// format metadata (PNG pHYs, JPEG JFIF density), falling back to 72 DPI.
package imgmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DefaultDPI is assumed when the file carries no resolution metadata,
// matching common raster tooling defaults (1 px = 1 pt at 72 DPI).
const DefaultDPI = 72

const metersPerInch = 0.0254

// Size holds the measured pixel dimensions and vertical resolution.
type Size struct {
	WidthPx  int
	HeightPx int
	DPI      float64
}

// HeightPoints returns the image height converted to typographic points
// (1 pt = 1/72 inch) at the image's declared resolution.
func (s Size) HeightPoints() float64 {
	return float64(s.HeightPx) * 72 / s.DPI
}

// Measure reads the image header at path and returns its size. The pixel
// dimensions come from image.DecodeConfig; the DPI from format metadata
// when present.
func Measure(path string) (Size, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Size{}, fmt.Errorf("reading image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, fmt.Errorf("decoding image %q: %w", path, err)
	}

	return Size{
		WidthPx:  cfg.Width,
		HeightPx: cfg.Height,
		DPI:      sniffDPI(data),
	}, nil
}

// sniffDPI extracts the vertical resolution from PNG or JPEG metadata.
func sniffDPI(data []byte) float64 {
	if dpi, ok := pngDPI(data); ok {
		return dpi
	}
	if dpi, ok := jpegDPI(data); ok {
		return dpi
	}
	return DefaultDPI
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// pngDPI scans the chunk stream for a pHYs chunk with per-meter units.
func pngDPI(data []byte) (float64, bool) {
	if !bytes.HasPrefix(data, pngSignature) {
		return 0, false
	}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		body := pos + 8
		if body+length > len(data) {
			return 0, false
		}
		if typ == "pHYs" && length == 9 {
			yPerMeter := binary.BigEndian.Uint32(data[body+4 : body+8])
			unit := data[body+8]
			if unit == 1 && yPerMeter > 0 {
				return float64(yPerMeter) * metersPerInch, true
			}
			return 0, false
		}
		if typ == "IDAT" || typ == "IEND" {
			// pHYs must precede image data.
			return 0, false
		}
		pos = body + length + 4 // skip CRC
	}
	return 0, false
}

// jpegDPI reads the density fields of the leading JFIF APP0 segment.
func jpegDPI(data []byte) (float64, bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, false
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0, false
		}
		marker := data[pos+1]
		if marker == 0xDA { // start of scan, no metadata past here
			return 0, false
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if marker == 0xE0 && segLen >= 14 && pos+4+segLen-2 <= len(data) {
			seg := data[pos+4 : pos+2+segLen]
			if bytes.HasPrefix(seg, []byte("JFIF\x00")) {
				units := seg[7]
				yDensity := binary.BigEndian.Uint16(seg[10:12])
				switch {
				case units == 1 && yDensity > 0: // dots per inch
					return float64(yDensity), true
				case units == 2 && yDensity > 0: // dots per cm
					return float64(yDensity) * 2.54, true
				}
			}
			return 0, false
		}
		pos += 2 + segLen
	}
	return 0, false
}
