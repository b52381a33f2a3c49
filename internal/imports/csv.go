package imports

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/kart-orders/internal/domain/order"
)

// Column layout:
//
//	order_id,customer_email,sku,quantity,unit_price_cents[,discount_percent[,expedited[,notes]]]
const (
	colOrderID = iota
	colEmail
	colSKU
	colQuantity
	colUnitPrice
	colDiscount
	colExpedited
	colNotes

	minColumns = colUnitPrice + 1
)

// group collects the rows of one order within a file.
type group struct {
	id       string
	email    string
	row      int // first row, for problem reporting
	lines    []order.OrderLine
	discount order.OptInt
	expedite bool
	notes    order.OptString
}

// fileResult holds the groups and row problems of one file.
type fileResult struct {
	groups   []*group
	problems []Problem
}

// parseFile reads a CSV file (gzip-compressed when the name ends in .gz)
// and groups its rows by order id in first-appearance order.
func parseFile(ctx context.Context, path string) (*fileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return parse(ctx, path, r)
}

func parse(ctx context.Context, name string, r io.Reader) (*fileResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	res := &fileResult{}
	byID := make(map[string]*group)

	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.problems = append(res.problems, Problem{File: name, Row: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return nil, errors.Wrapf(err, "read %s", name)
		}

		if first && isHeader(cols) {
			continue
		}
		// A quoted field may span lines; report the line the record starts on.
		rowNum, _ := cr.FieldPos(colOrderID)

		p := func(id, reason string) {
			res.problems = append(res.problems, Problem{File: name, Row: rowNum, OrderID: id, Reason: reason})
		}

		if len(cols) < minColumns {
			p("", "not enough columns")
			continue
		}
		id := strings.TrimSpace(cols[colOrderID])
		email := strings.TrimSpace(cols[colEmail])
		if id == "" || email == "" {
			p(id, "missing id or email")
			continue
		}
		if !strings.Contains(email, "@") {
			p(id, "invalid email "+strconv.Quote(email))
			continue
		}
		line, err := parseLine(cols)
		if err != nil {
			p(id, err.Error())
			continue
		}
		a, err := parseAttrs(cols)
		if err != nil {
			p(id, err.Error())
			continue
		}

		g, ok := byID[id]
		if !ok {
			g = &group{id: id, email: email, row: rowNum}
			byID[id] = g
			res.groups = append(res.groups, g)
		}
		g.add(line, a)
	}

	return res, nil
}

func isHeader(cols []string) bool {
	return len(cols) > 1 &&
		strings.EqualFold(strings.TrimSpace(cols[colOrderID]), "order_id") &&
		strings.EqualFold(strings.TrimSpace(cols[colEmail]), "customer_email")
}

func parseLine(cols []string) (order.OrderLine, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(cols[colQuantity]))
	if err != nil {
		return order.OrderLine{}, errors.Errorf("bad quantity %q", cols[colQuantity])
	}
	price, err := strconv.ParseInt(strings.TrimSpace(cols[colUnitPrice]), 10, 64)
	if err != nil {
		return order.OrderLine{}, errors.Errorf("bad unit price %q", cols[colUnitPrice])
	}
	line := order.NewOrderLine(strings.TrimSpace(cols[colSKU]), qty, price)
	if reason := line.Problem(); reason != "" {
		return order.OrderLine{}, errors.New(reason)
	}
	return line, nil
}

// attrs are the optional order-level columns of one row.
type attrs struct {
	discount  order.OptInt
	expedited bool
	notes     order.OptString
}

func parseAttrs(cols []string) (attrs, error) {
	var a attrs
	if v := optional(cols, colDiscount); v != "" {
		pct, err := strconv.Atoi(v)
		if err != nil {
			return a, errors.Errorf("bad discount percent %q", v)
		}
		a.discount = order.NewOptInt(pct)
	}
	if v := optional(cols, colExpedited); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return a, errors.Errorf("bad expedited flag %q", v)
		}
		a.expedited = b
	}
	if v := optional(cols, colNotes); v != "" {
		a.notes = order.NewOptString(v)
	}
	return a, nil
}

// add appends the row's line. Order-level attributes keep the first value
// seen; expedited is set if any row sets it.
func (g *group) add(line order.OrderLine, a attrs) {
	g.lines = append(g.lines, line)
	if !g.discount.IsSet() {
		g.discount = a.discount
	}
	if !g.notes.IsSet() {
		g.notes = a.notes
	}
	g.expedite = g.expedite || a.expedited
}

func optional(cols []string, idx int) string {
	if idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}

func (g *group) build() (*order.Order, error) {
	return order.NewBuilder(g.id, g.email).
		AddLines(g.lines...).
		DiscountPercent(g.discount).
		Expedited(g.expedite).
		Notes(g.notes).
		Build()
}
