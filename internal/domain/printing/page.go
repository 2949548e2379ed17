package printing

import (
	"strings"

	"github.com/billydoc/backend/internal/domain/shared"
)

// ErrInvalidPaperSize is returned for an unknown paper size name
var ErrInvalidPaperSize = shared.NewDomainError("INVALID_PAPER_SIZE", "Paper size must be one of A4, A5, LETTER")

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"     // 210mm x 297mm
	PaperSizeA5     PaperSize = "A5"     // 148mm x 210mm
	PaperSizeLetter PaperSize = "LETTER" // 216mm x 279mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeLetter:
		return true
	}
	return false
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA5:
		return 148, 210
	case PaperSizeLetter:
		return 216, 279
	default:
		return 210, 297
	}
}

// ParsePaperSize resolves a case-insensitive paper size name; "" means A4
func ParsePaperSize(s string) (PaperSize, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PaperSizeA4, nil
	}
	p := PaperSize(s)
	if !p.IsValid() {
		return "", ErrInvalidPaperSize
	}
	return p, nil
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// IsValid checks if the Orientation is a valid value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// String returns the string representation of Orientation
func (o Orientation) String() string {
	return string(o)
}

// PageSetup is the full page configuration handed to a renderer
type PageSetup struct {
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
}

// DefaultPageSetup returns A4 portrait with default margins
func DefaultPageSetup() PageSetup {
	return PageSetup{
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     DefaultMargins(),
	}
}

// SizeMM returns the page width and height in millimeters after orientation
func (p PageSetup) SizeMM() (width, height int) {
	width, height = p.PaperSize.Dimensions()
	if p.Orientation == OrientationLandscape {
		return height, width
	}
	return width, height
}
