package report

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-orders/internal/domain/order"
)

var _ Writer = JSONWriter{}

// JSONWriter encodes documents as JSON files.
type JSONWriter struct {
	// Indent sets the indentation width; zero writes compact JSON.
	Indent int
}

// Write encodes doc to <dir>/<baseName>.json, creating dir if needed.
func (w JSONWriter) Write(_ context.Context, doc *Document, dir, baseName string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create dir %s", dir)
	}

	var e jx.Encoder
	if w.Indent > 0 {
		e.SetIdent(w.Indent)
	}
	EncodeDocument(&e, doc)

	path := filepath.Join(dir, baseName+".json")
	if err := os.WriteFile(path, e.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// EncodeDocument writes the JSON representation of doc to e.
func EncodeDocument(e *jx.Encoder, doc *Document) {
	var lines int
	var total int64

	e.ObjStart()
	e.FieldStart("generated_at")
	e.Str(doc.GeneratedAt.Format(time.RFC3339))

	e.FieldStart("orders")
	e.ArrStart()
	for _, o := range doc.Orders {
		encodeOrder(e, o)
		lines += o.LineCount()
		total += o.TotalAfterDiscount()
	}
	e.ArrEnd()

	e.FieldStart("summary")
	e.ObjStart()
	e.FieldStart("orders")
	e.Int(len(doc.Orders))
	e.FieldStart("lines")
	e.Int(lines)
	e.FieldStart("total_after_discount_cents")
	e.Int64(total)
	e.FieldStart("total_after_discount")
	e.Str(FormatCents(total))
	e.ObjEnd()

	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID())
	e.FieldStart("customer_email")
	e.Str(o.CustomerEmail())
	e.FieldStart("expedited")
	e.Bool(o.Expedited())

	e.FieldStart("notes")
	if notes, ok := o.Notes().Get(); ok {
		e.Str(notes)
	} else {
		e.Null()
	}
	e.FieldStart("discount_percent")
	if pct, ok := o.DiscountPercent().Get(); ok {
		e.Int(pct)
	} else {
		e.Null()
	}

	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range o.All() {
		e.ObjStart()
		e.FieldStart("sku")
		e.Str(l.SKU())
		e.FieldStart("quantity")
		e.Int(l.Quantity())
		e.FieldStart("unit_price_cents")
		e.Int64(l.UnitPriceCents())
		e.FieldStart("total_cents")
		e.Int64(l.TotalCents())
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("total_before_discount_cents")
	e.Int64(o.TotalBeforeDiscount())
	e.FieldStart("discount_cents")
	e.Int64(o.DiscountAmount())
	e.FieldStart("total_after_discount_cents")
	e.Int64(o.TotalAfterDiscount())
	e.FieldStart("total_after_discount")
	e.Str(FormatCents(o.TotalAfterDiscount()))
	e.ObjEnd()
}

// FormatCents renders an amount in cents as a fixed two-decimal string,
// e.g. 675 -> "6.75".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
