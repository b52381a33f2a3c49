// Package imports reads orders from CSV files.
package imports

import (
	"context"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-orders/internal/domain/order"
)

const (
	bloomCapacity = 100_000
	bloomFPR      = 0.001
)

// Result is the outcome of an import.
type Result struct {
	Orders   []*order.Order
	Problems []Problem
}

// Importer turns CSV files into validated orders. Rows and orders that
// cannot be used are skipped and reported as problems; only I/O failures
// abort an import.
type Importer struct {
	lg *zap.Logger
}

// NewImporter creates an Importer that logs problems to lg.
func NewImporter(lg *zap.Logger) *Importer {
	return &Importer{lg: lg}
}

// Import parses the files concurrently and merges them in argument order.
// An order id seen in an earlier file is reported as a duplicate.
func (im *Importer) Import(ctx context.Context, paths ...string) (*Result, error) {
	parsed := make([]*fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			res, err := parseFile(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "parse file %d", i+1)
			}
			parsed[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{}
	seen := newIDSet(bloomCapacity)
	for i, res := range parsed {
		out.Problems = append(out.Problems, res.problems...)
		for _, grp := range res.groups {
			if seen.contains(grp.id) {
				out.Problems = append(out.Problems, Problem{
					File: paths[i], Row: grp.row, OrderID: grp.id, Reason: "duplicate order id",
				})
				continue
			}
			o, err := grp.build()
			if err != nil {
				out.Problems = append(out.Problems, Problem{
					File: paths[i], Row: grp.row, OrderID: grp.id, Reason: err.Error(),
				})
				continue
			}
			seen.add(grp.id)
			out.Orders = append(out.Orders, o)
		}
	}

	for i := range out.Problems {
		p := &out.Problems[i]
		im.lg.Warn("Skipped",
			zap.String("file", p.File),
			zap.Int("row", p.Row),
			zap.String("order_id", p.OrderID),
			zap.String("reason", p.Reason),
		)
	}
	im.lg.Info("Import finished",
		zap.Int("files", len(paths)),
		zap.Int("orders", len(out.Orders)),
		zap.Int("problems", len(out.Problems)),
	)

	return out, nil
}

// idSet screens ids with a bloom filter and confirms hits exactly, so the
// exact map is only consulted for probable duplicates.
type idSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

func newIDSet(capacity uint) *idSet {
	return &idSet{
		filter: bloom.NewWithEstimates(capacity, bloomFPR),
		exact:  make(map[string]struct{}),
	}
}

func (s *idSet) add(id string) {
	s.filter.AddString(id)
	s.exact[id] = struct{}{}
}

func (s *idSet) contains(id string) bool {
	if !s.filter.TestString(id) {
		return false
	}
	_, ok := s.exact[id]
	return ok
}
