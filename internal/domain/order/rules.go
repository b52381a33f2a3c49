package order

import "strings"

// validEmail performs a minimal shape check: non-blank, exactly one '@',
// with something on both sides. It is not RFC 5322 validation.
func validEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(email, "@")
	return local != "" && domain != ""
}

// validDiscount reports whether an optional discount is acceptable. Absent
// is always valid.
func validDiscount(pct OptInt) bool {
	v, ok := pct.Get()
	if !ok {
		return true
	}
	return v >= 0 && v <= 100
}

// ValidateLines returns an *InvalidLineError for the first line that
// reports a Problem, or nil.
func ValidateLines(lines []OrderLine) error {
	for i, l := range lines {
		if reason := l.Problem(); reason != "" {
			return &InvalidLineError{Index: i, SKU: l.sku, Reason: reason}
		}
	}
	return nil
}
