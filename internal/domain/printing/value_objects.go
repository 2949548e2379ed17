package printing

import "github.com/billydoc/backend/internal/domain/shared"

const (
	defaultMarginMM = 15
	maxMarginMM     = 100
)

// ErrInvalidMargins is returned for negative margins or margins over 100mm
var ErrInvalidMargins = shared.NewDomainError("INVALID_MARGINS", "Margins must be between 0 and 100mm")

// Margins are page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// NewMargins validates and returns margins
func NewMargins(top, right, bottom, left int) (Margins, error) {
	for _, mm := range [...]int{top, right, bottom, left} {
		if mm < 0 || mm > maxMarginMM {
			return Margins{}, ErrInvalidMargins
		}
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// UniformMargins uses mm on every side
func UniformMargins(mm int) (Margins, error) {
	return NewMargins(mm, mm, mm, mm)
}

// DefaultMargins returns 15mm on every side
func DefaultMargins() Margins {
	return Margins{Top: defaultMarginMM, Right: defaultMarginMM, Bottom: defaultMarginMM, Left: defaultMarginMM}
}

// IsZero reports whether no margin is set
func (m Margins) IsZero() bool {
	return m == Margins{}
}
