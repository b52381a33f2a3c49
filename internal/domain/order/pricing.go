package order

// TotalBeforeDiscount returns the sum of quantity * unit price over all
// lines, in cents.
func (o *Order) TotalBeforeDiscount() int64 {
	var sum int64
	for _, l := range o.lines {
		sum += l.TotalCents()
	}
	return sum
}

// DiscountAmount returns the discount in cents, or 0 when the order has no
// discount. The amount is (base * percent) / 100 with integer division, so
// fractions of a cent are dropped, never rounded.
func (o *Order) DiscountAmount() int64 {
	pct, ok := o.discountPercent.Get()
	if !ok {
		return 0
	}
	return discountCents(o.TotalBeforeDiscount(), pct)
}

// TotalAfterDiscount returns TotalBeforeDiscount minus DiscountAmount.
func (o *Order) TotalAfterDiscount() int64 {
	base := o.TotalBeforeDiscount()
	pct, ok := o.discountPercent.Get()
	if !ok {
		return base
	}
	return base - discountCents(base, pct)
}

// discountCents multiplies before dividing; the order matters for totals
// that are not a multiple of 100.
func discountCents(base int64, pct int) int64 {
	return base * int64(pct) / 100
}
