package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/kart-orders/internal/domain/coupon"
)

// QuoteRequest holds the input for pricing an order.
type QuoteRequest struct {
	// ID is optional; a random UUID is used when blank.
	ID              string
	CustomerEmail   string
	Lines           []OrderLine
	DiscountPercent OptInt
	CouponCode      string
	Expedited       bool
	Notes           OptString
}

// Service builds priced orders from requests, resolving coupon codes into
// discount percentages.
type Service struct {
	coupons coupon.Validator
	newID   func() string
}

// NewService creates an order Service. coupons may be nil, in which case any
// coupon code is rejected as invalid.
func NewService(coupons coupon.Validator) *Service {
	return &Service{
		coupons: coupons,
		newID:   func() string { return uuid.New().String() },
	}
}

// Quote validates the request and returns the resulting Order. On top of
// the Build checks, every line must report no Problem (*InvalidLineError).
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Order, error) {
	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = s.newID()
	}

	discount := req.DiscountPercent
	if req.CouponCode != "" {
		if discount.IsSet() {
			return nil, ErrDiscountConflict
		}
		pct, err := s.resolveCoupon(ctx, req.CouponCode, req.Lines)
		if err != nil {
			return nil, errors.Wrap(err, "validate coupon")
		}
		discount = NewOptInt(pct)
	}

	o, err := NewBuilder(id, req.CustomerEmail).
		AddLines(req.Lines...).
		DiscountPercent(discount).
		Expedited(req.Expedited).
		Notes(req.Notes).
		Build()
	if err != nil {
		return nil, err
	}
	if err := ValidateLines(req.Lines); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) resolveCoupon(ctx context.Context, code string, lines []OrderLine) (int, error) {
	if s.coupons == nil {
		return 0, coupon.ErrInvalidCoupon
	}
	var items int
	for _, l := range lines {
		items += l.Quantity()
	}
	rule, err := s.coupons.Validate(ctx, code, items)
	if err != nil {
		return 0, err
	}
	return rule.Percent, nil
}
