package pdf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfgen/backend/internal/domain/shared"
)

// PaperFormat identifies a named paper size
type PaperFormat string

// Supported paper formats
const (
	FormatA3      PaperFormat = "A3"
	FormatA4      PaperFormat = "A4"
	FormatA5      PaperFormat = "A5"
	FormatLetter  PaperFormat = "Letter"
	FormatLegal   PaperFormat = "Legal"
	FormatTabloid PaperFormat = "Tabloid"
)

// paperDimensions maps a format to its width and height in inches
// (Chrome's PrintToPDF expects inches)
var paperDimensions = map[PaperFormat][2]float64{
	FormatA3:      {11.69, 16.54},
	FormatA4:      {8.27, 11.69},
	FormatA5:      {5.83, 8.27},
	FormatLetter:  {8.5, 11},
	FormatLegal:   {8.5, 14},
	FormatTabloid: {11, 17},
}

// IsValid returns true if the format is a supported paper size
func (f PaperFormat) IsValid() bool {
	_, ok := paperDimensions[f]
	return ok
}

// Dimensions returns the paper width and height in inches
func (f PaperFormat) Dimensions() (width, height float64) {
	d := paperDimensions[f]
	return d[0], d[1]
}

// ParsePaperFormat parses a case-insensitive format name
func ParsePaperFormat(s string) (PaperFormat, error) {
	for format := range paperDimensions {
		if strings.EqualFold(string(format), s) {
			return format, nil
		}
	}
	return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unsupported paper format: %q", s))
}

// Length is a physical page length expressed as a CSS-style string,
// e.g. "1cm", "10mm", "0.5in" or "12px". A bare number is pixels.
type Length string

// lengthUnits maps a unit suffix to its size in inches
var lengthUnits = []struct {
	suffix string
	inches float64
}{
	{"cm", 1.0 / 2.54},
	{"mm", 1.0 / 25.4},
	{"in", 1.0},
	{"pt", 1.0 / 72.0},
	{"px", 1.0 / 96.0},
}

// Inches converts the length to inches. Invalid or negative lengths
// return an error.
func (l Length) Inches() (float64, error) {
	s := strings.TrimSpace(string(l))
	if s == "" {
		return 0, shared.NewDomainError("INVALID_INPUT", "Empty length value")
	}

	unit := 1.0 / 96.0 // bare numbers are pixels
	num := s
	for _, u := range lengthUnits {
		if strings.HasSuffix(s, u.suffix) {
			unit = u.inches
			num = strings.TrimSuffix(s, u.suffix)
			break
		}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid length value: %q", s))
	}
	if value < 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Length cannot be negative: %q", s))
	}

	return value * unit, nil
}

// Validate checks that the length parses
func (l Length) Validate() error {
	_, err := l.Inches()
	return err
}

// Margins represents the four page margins
type Margins struct {
	Top    Length `json:"top"`
	Bottom Length `json:"bottom"`
	Left   Length `json:"left"`
	Right  Length `json:"right"`
}

// Validate checks that all four margins parse
func (m Margins) Validate() error {
	for _, l := range []Length{m.Top, m.Bottom, m.Left, m.Right} {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Scale limits enforced by Chrome's PrintToPDF
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// Options holds the page-format options for one render. Immutable per
// request; defaults come from configuration and may be overridden per call.
type Options struct {
	Format          PaperFormat
	PrintBackground bool
	Scale           float64
	Margins         Margins
	Landscape       bool
}

// Validate checks the options against the renderer's accepted ranges
func (o Options) Validate() error {
	if !o.Format.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unsupported paper format: %q", o.Format))
	}
	if o.Scale < MinScale || o.Scale > MaxScale {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Scale must be between %v and %v", MinScale, MaxScale))
	}
	return o.Margins.Validate()
}
