package order

import "strings"

// Builder accumulates the parts of an Order. Its methods only record values;
// every rule is checked once, in Build. A Builder is not safe for concurrent
// use.
type Builder struct {
	id              string
	customerEmail   string
	lines           []OrderLine
	discountPercent OptInt
	expedited       bool
	notes           OptString
}

// NewBuilder starts an order with its required id and customer email.
func NewBuilder(id, customerEmail string) *Builder {
	return &Builder{
		id:            id,
		customerEmail: customerEmail,
	}
}

// AddLine appends a line.
func (b *Builder) AddLine(line OrderLine) *Builder {
	b.lines = append(b.lines, line)
	return b
}

// AddLines appends lines in order. Calling it with no lines is a no-op.
func (b *Builder) AddLines(lines ...OrderLine) *Builder {
	b.lines = append(b.lines, lines...)
	return b
}

// DiscountPercent sets the discount, replacing any previous value. An unset
// OptInt clears it.
func (b *Builder) DiscountPercent(pct OptInt) *Builder {
	b.discountPercent = pct
	return b
}

// Expedited sets the expedited flag.
func (b *Builder) Expedited(expedited bool) *Builder {
	b.expedited = expedited
	return b
}

// Notes sets free-text notes, replacing any previous value.
func (b *Builder) Notes(notes OptString) *Builder {
	b.notes = notes
	return b
}

// Build validates the accumulated state and returns the Order. Checks run in
// a fixed order and the first failure is returned:
//
//  1. customer email shape (ErrInvalidEmail)
//  2. discount range (ErrInvalidDiscount)
//  3. non-blank id (ErrBlankID)
//  4. at least one line (ErrNoLines)
//
// Line contents are not checked; an order of any non-empty lines builds.
// The Order receives its own copy of the lines.
func (b *Builder) Build() (*Order, error) {
	if !validEmail(b.customerEmail) {
		return nil, ErrInvalidEmail
	}
	if !validDiscount(b.discountPercent) {
		return nil, ErrInvalidDiscount
	}
	if strings.TrimSpace(b.id) == "" {
		return nil, ErrBlankID
	}
	if len(b.lines) == 0 {
		return nil, ErrNoLines
	}
	return &Order{
		id:              b.id,
		customerEmail:   b.customerEmail,
		lines:           copyLines(b.lines),
		discountPercent: b.discountPercent,
		expedited:       b.expedited,
		notes:           b.notes,
	}, nil
}
