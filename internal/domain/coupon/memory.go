package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is a read-only Repository loaded once from
// configuration. Lookups are case-insensitive. It is safe for concurrent use.
type MemoryRepository struct {
	rules map[string]Rule
}

// NewMemoryRepository validates the rules and indexes them by code.
func NewMemoryRepository(rules ...Rule) (*MemoryRepository, error) {
	m := make(map[string]Rule, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToUpper(r.Code)
		if _, ok := m[key]; ok {
			return nil, errors.Errorf("duplicate coupon code %q", r.Code)
		}
		m[key] = r
	}
	return &MemoryRepository{rules: m}, nil
}

// FindByCode returns a copy of the rule for code, or ErrInvalidCoupon.
func (r *MemoryRepository) FindByCode(_ context.Context, code string) (*Rule, error) {
	rule, ok := r.rules[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return &rule, nil
}

// Len returns the number of loaded rules.
func (r *MemoryRepository) Len() int { return len(r.rules) }
