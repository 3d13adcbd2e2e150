package property

import (
	"errors"
	"strings"
)

// ErrNoAddress is returned when extracted fields carry no property address.
var ErrNoAddress = errors.New("no property address in document")

// RequestFromFields builds a research request from extracted settlement or
// purchase agreement fields.
func RequestFromFields(fields map[string]any) (ResearchRequest, error) {
	address, _ := fields["property_address"].(string)
	addr := ParseAddress(address)
	if addr.IsZero() {
		return ResearchRequest{}, ErrNoAddress
	}

	req := ResearchRequest{Address: addr}
	req.SalePrice = number(fields, "sale_price")
	if req.SalePrice == 0 {
		req.SalePrice = number(fields, "purchase_price")
	}
	req.CommissionAmount = number(fields, "commission_amount")
	if date, ok := fields["closing_date"].(string); ok {
		req.ClosingDate = strings.TrimSpace(date)
	}
	return req, nil
}

func number(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
