package order

import "iter"

// Order is a validated customer order. It has no mutators: it is created by
// Builder.Build and is safe for concurrent readers.
//
// Isolation is both structural and copy-based. OrderLine has no mutators,
// and the line slice is copied when the Order is built and again on every
// Lines call, so no caller ever holds the backing array.
type Order struct {
	id              string
	customerEmail   string
	lines           []OrderLine
	discountPercent OptInt
	expedited       bool
	notes           OptString
}

// ID returns the order identifier.
func (o *Order) ID() string { return o.id }

// CustomerEmail returns the customer email.
func (o *Order) CustomerEmail() string { return o.customerEmail }

// DiscountPercent returns the discount, unset when the order has none.
func (o *Order) DiscountPercent() OptInt { return o.discountPercent }

// Expedited reports whether the order ships expedited.
func (o *Order) Expedited() bool { return o.expedited }

// Notes returns the free-text notes, unset when none were given.
func (o *Order) Notes() OptString { return o.notes }

// Lines returns a fresh copy of the lines in insertion order.
func (o *Order) Lines() []OrderLine {
	return copyLines(o.lines)
}

// All iterates the lines in insertion order without copying the slice.
func (o *Order) All() iter.Seq2[int, OrderLine] {
	return func(yield func(int, OrderLine) bool) {
		for i, l := range o.lines {
			if !yield(i, l) {
				return
			}
		}
	}
}

// LineCount returns the number of lines.
func (o *Order) LineCount() int { return len(o.lines) }

func copyLines(src []OrderLine) []OrderLine {
	dst := make([]OrderLine, len(src))
	copy(dst, src)
	return dst
}
