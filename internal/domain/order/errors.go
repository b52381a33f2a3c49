package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Validation errors returned by Builder.Build. Each identifies exactly one
// failed rule.
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidDiscount = errors.New("invalid discount: must be 0..100 or absent")
	ErrBlankID         = errors.New("id must not be blank")
	ErrNoLines         = errors.New("order must have at least one line")
)

// ErrInvalidLine is matched by every *InvalidLineError returned from
// ValidateLines.
var ErrInvalidLine = errors.New("invalid order line")

// ErrDiscountConflict is returned by Service.Quote when a request carries
// both an explicit discount and a coupon code.
var ErrDiscountConflict = errors.New("discount percent and coupon code are mutually exclusive")

// InvalidLineError identifies a line whose Problem is not empty.
type InvalidLineError struct {
	Index  int
	SKU    string
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("line %d (sku %q): %s", e.Index, e.SKU, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidLine).
func (e *InvalidLineError) Unwrap() error { return ErrInvalidLine }

// IsInvalidArgument reports whether err is a caller-fixable validation
// failure from Build or ValidateLines.
func IsInvalidArgument(err error) bool {
	for _, target := range []error{
		ErrInvalidEmail,
		ErrInvalidDiscount,
		ErrBlankID,
		ErrNoLines,
		ErrInvalidLine,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
