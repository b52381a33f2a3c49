package imports

import "fmt"

// Problem describes a row or order that was skipped during an import. Row is
// the 1-based line on which the offending record starts.
type Problem struct {
	File    string
	Row     int
	OrderID string
	Reason  string
}

func (p *Problem) Error() string {
	if p.OrderID != "" {
		return fmt.Sprintf("%s: row %d: order %s: %s", p.File, p.Row, p.OrderID, p.Reason)
	}
	return fmt.Sprintf("%s: row %d: %s", p.File, p.Row, p.Reason)
}
