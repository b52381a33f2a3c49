package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-orders/internal/domain/order"
)

var errTrailingData = errors.New("unexpected data after request object")

// decodeQuoteRequest reads a quote request object. Unknown fields are
// ignored; null is accepted for every optional field. Anything but
// whitespace after the object is an error.
func decodeQuoteRequest(d *jx.Decoder) (order.QuoteRequest, error) {
	var req order.QuoteRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if d.Next() == jx.Null {
			return d.Null()
		}
		var err error
		switch key {
		case "id":
			req.ID, err = d.Str()
		case "customerEmail":
			req.CustomerEmail, err = d.Str()
		case "couponCode":
			req.CouponCode, err = d.Str()
		case "expedited":
			req.Expedited, err = d.Bool()
		case "discountPercent":
			var v int
			v, err = d.Int()
			req.DiscountPercent = order.NewOptInt(v)
		case "notes":
			var v string
			v, err = d.Str()
			req.Notes = order.NewOptString(v)
		case "lines":
			err = d.Arr(func(d *jx.Decoder) error {
				l, err := decodeLine(d)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, l)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return req, err
	}
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return req, errTrailingData
	}
	return req, nil
}

func decodeLine(d *jx.Decoder) (order.OrderLine, error) {
	var (
		sku      string
		quantity int
		price    int64
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "sku":
			sku, err = d.Str()
		case "quantity":
			quantity, err = d.Int()
		case "unitPriceCents":
			price, err = d.Int64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "line field %q", key)
		}
		return nil
	})
	return order.NewOrderLine(sku, quantity, price), err
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID())
	e.FieldStart("customerEmail")
	e.Str(o.CustomerEmail())

	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range o.All() {
		e.ObjStart()
		e.FieldStart("sku")
		e.Str(l.SKU())
		e.FieldStart("quantity")
		e.Int(l.Quantity())
		e.FieldStart("unitPriceCents")
		e.Int64(l.UnitPriceCents())
		e.FieldStart("totalCents")
		e.Int64(l.TotalCents())
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("discountPercent")
	if pct, ok := o.DiscountPercent().Get(); ok {
		e.Int(pct)
	} else {
		e.Null()
	}
	e.FieldStart("expedited")
	e.Bool(o.Expedited())
	e.FieldStart("notes")
	if notes, ok := o.Notes().Get(); ok {
		e.Str(notes)
	} else {
		e.Null()
	}

	e.FieldStart("totalBeforeDiscount")
	e.Int64(o.TotalBeforeDiscount())
	e.FieldStart("discount")
	e.Int64(o.DiscountAmount())
	e.FieldStart("totalAfterDiscount")
	e.Int64(o.TotalAfterDiscount())
	e.ObjEnd()
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	writeJSON(w, status, &e)
}
