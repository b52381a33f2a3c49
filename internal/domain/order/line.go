package order

// OrderLine is a single line item: a SKU, a quantity and a unit price in
// minor currency units (cents). It is an immutable value; copies share
// nothing.
type OrderLine struct {
	sku            string
	quantity       int
	unitPriceCents int64
}

// NewOrderLine returns a line with the given fields. It does not validate;
// see Problem.
func NewOrderLine(sku string, quantity int, unitPriceCents int64) OrderLine {
	return OrderLine{
		sku:            sku,
		quantity:       quantity,
		unitPriceCents: unitPriceCents,
	}
}

// SKU returns the stock keeping unit identifier.
func (l OrderLine) SKU() string { return l.sku }

// Quantity returns the number of units ordered.
func (l OrderLine) Quantity() int { return l.quantity }

// UnitPriceCents returns the price of one unit in cents.
func (l OrderLine) UnitPriceCents() int64 { return l.unitPriceCents }

// Problem returns why the line cannot be sold as entered, or "" when it has
// a SKU, a positive quantity and a non-negative unit price. Builder.Build
// accepts any line; input boundaries use Problem to reject bad input.
func (l OrderLine) Problem() string {
	switch {
	case l.sku == "":
		return "sku must not be empty"
	case l.quantity <= 0:
		return "quantity must be greater than 0"
	case l.unitPriceCents < 0:
		return "unit price must not be negative"
	default:
		return ""
	}
}

// TotalCents returns quantity * unit price.
func (l OrderLine) TotalCents() int64 {
	return int64(l.quantity) * l.unitPriceCents
}
