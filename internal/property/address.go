// Package property researches a property address: market data from a
// PropertyDataProvider, transaction financials and model-written insights.
package property

import (
	"strings"
	"unicode"
)

// Address is a postal property address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// String joins the non-empty parts with ", ".
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.State, a.Zip} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// IsZero reports whether the address has no street.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street) == ""
}

// ParseAddress splits a one-line address such as
// "123 Main St, Springfield, IL 62704" into its parts.
// Anything it cannot place stays in Street.
func ParseAddress(s string) Address {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return Address{}
	}

	addr := Address{Street: parts[0]}
	rest := parts[1:]
	if len(rest) == 0 {
		return addr
	}

	// The last part may be "IL 62704", "IL" or "62704".
	last := strings.Fields(rest[len(rest)-1])
	if n := len(last); n > 0 && isZip(last[n-1]) {
		addr.Zip = last[n-1]
		last = last[:n-1]
	}
	if n := len(last); n > 0 && isStateCode(last[n-1]) {
		addr.State = strings.ToUpper(last[n-1])
		last = last[:n-1]
	}

	if len(last) > 0 {
		rest[len(rest)-1] = strings.Join(last, " ")
	} else {
		rest = rest[:len(rest)-1]
	}
	if len(rest) > 0 {
		addr.City = strings.Join(rest, ", ")
	}
	return addr
}

func isZip(s string) bool {
	digits := strings.Split(s, "-")
	if len(digits[0]) != 5 || len(digits) > 2 {
		return false
	}
	for _, d := range digits {
		for _, r := range d {
			if !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

func isStateCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
