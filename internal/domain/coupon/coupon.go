package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is not found or
	// the order does not satisfy the coupon's minimum item requirement.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon is outside its valid time window.
	ErrCouponExpired = errors.New("coupon expired")
)

// Rule maps a coupon code to a whole-number discount percentage and its
// eligibility constraints.
type Rule struct {
	Code        string
	Percent     int
	MinItems    int
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

// Validate checks that the rule itself is well formed.
func (r Rule) Validate() error {
	if r.Code == "" {
		return errors.New("coupon code is empty")
	}
	if r.Percent < 0 || r.Percent > 100 {
		return errors.Errorf("coupon %s: percent %d out of range 0..100", r.Code, r.Percent)
	}
	if r.MinItems < 0 {
		return errors.Errorf("coupon %s: negative min items", r.Code)
	}
	if r.ValidFrom != nil && r.ValidUntil != nil && r.ValidUntil.Before(*r.ValidFrom) {
		return errors.Errorf("coupon %s: valid_until before valid_from", r.Code)
	}
	return nil
}

// Repository provides lookup of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}
