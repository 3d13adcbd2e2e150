package property

// Value change directions.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
	DirectionStable   = "stable"
	DirectionUnknown  = "unknown"
)

// ValueChange compares a transaction price with the current estimate.
type ValueChange struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Direction  string  `json:"direction"`
}

// Financials summarises the money side of a transaction.
type Financials struct {
	TransactionPrice   float64     `json:"transaction_price"`
	CurrentMarketValue float64     `json:"current_market_value"`
	ValueChange        ValueChange `json:"value_change"`
	CommissionPaid     float64     `json:"commission_paid"`
	PricePerSqft       float64     `json:"price_per_sqft"`
}

// ComputeValueChange returns the change from salePrice to currentValue.
// The direction is unknown when either value is missing.
func ComputeValueChange(salePrice, currentValue float64) ValueChange {
	if salePrice <= 0 || currentValue <= 0 {
		return ValueChange{Direction: DirectionUnknown}
	}

	amount := currentValue - salePrice
	direction := DirectionStable
	switch {
	case amount > 0:
		direction = DirectionIncrease
	case amount < 0:
		direction = DirectionDecrease
	}

	return ValueChange{
		Amount:     round(amount, 2),
		Percentage: round(amount/salePrice*100, 2),
		Direction:  direction,
	}
}

// PricePerSqft returns salePrice divided by squareFootage, or 0 when either is missing.
func PricePerSqft(salePrice, squareFootage float64) float64 {
	if salePrice <= 0 || squareFootage <= 0 {
		return 0
	}
	return round(salePrice/squareFootage, 2)
}

// ComputeFinancials combines a request with the provider's estimate.
// The request's square footage wins over the report's.
func ComputeFinancials(req ResearchRequest, report *Report) Financials {
	current := float64(report.Market.EstimatedValue)
	sqft := req.SquareFootage
	if sqft <= 0 {
		sqft = float64(report.Market.SquareFootage)
	}

	return Financials{
		TransactionPrice:   req.SalePrice,
		CurrentMarketValue: current,
		ValueChange:        ComputeValueChange(req.SalePrice, current),
		CommissionPaid:     req.CommissionAmount,
		PricePerSqft:       PricePerSqft(req.SalePrice, sqft),
	}
}
