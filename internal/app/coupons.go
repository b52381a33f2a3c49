package app

import (
	"os"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/xenking/kart-orders/internal/domain/coupon"
)

type couponsFile struct {
	Coupons []couponEntry `yaml:"coupons"`
}

type couponEntry struct {
	Code        string     `yaml:"code"`
	Percent     int        `yaml:"percent"`
	MinItems    int        `yaml:"min_items"`
	Description string     `yaml:"description"`
	ValidFrom   *time.Time `yaml:"valid_from"`
	ValidUntil  *time.Time `yaml:"valid_until"`
}

// LoadCoupons reads coupon rules from a YAML file. An empty path yields an
// empty repository, which rejects every code.
func LoadCoupons(path string) (*coupon.MemoryRepository, error) {
	if path == "" {
		return coupon.NewMemoryRepository()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read coupons file %s", path)
	}

	var f couponsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "decode coupons file %s", path)
	}

	rules := make([]coupon.Rule, len(f.Coupons))
	for i, c := range f.Coupons {
		rules[i] = coupon.Rule{
			Code:        c.Code,
			Percent:     c.Percent,
			MinItems:    c.MinItems,
			Description: c.Description,
			ValidFrom:   c.ValidFrom,
			ValidUntil:  c.ValidUntil,
		}
	}

	repo, err := coupon.NewMemoryRepository(rules...)
	if err != nil {
		return nil, errors.Wrapf(err, "load coupons from %s", path)
	}
	return repo, nil
}
