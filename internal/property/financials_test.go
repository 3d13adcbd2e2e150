package property

import "testing"

func TestComputeValueChange(t *testing.T) {
	tests := []struct {
		name    string
		sale    float64
		current float64
		want    ValueChange
	}{
		{name: "increase", sale: 300000, current: 350000, want: ValueChange{Amount: 50000, Percentage: 16.67, Direction: DirectionIncrease}},
		{name: "decrease", sale: 400000, current: 390000, want: ValueChange{Amount: -10000, Percentage: -2.5, Direction: DirectionDecrease}},
		{name: "stable", sale: 250000, current: 250000, want: ValueChange{Direction: DirectionStable}},
		{name: "missing sale price", sale: 0, current: 250000, want: ValueChange{Direction: DirectionUnknown}},
		{name: "missing estimate", sale: 250000, current: 0, want: ValueChange{Direction: DirectionUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeValueChange(tt.sale, tt.current); got != tt.want {
				t.Errorf("ComputeValueChange(%v, %v) = %+v, want %+v", tt.sale, tt.current, got, tt.want)
			}
		})
	}
}

func TestPricePerSqft(t *testing.T) {
	if got := PricePerSqft(350000, 1750); got != 200 {
		t.Errorf("PricePerSqft() = %v, want 200", got)
	}
	if got := PricePerSqft(100000, 3000); got != 33.33 {
		t.Errorf("PricePerSqft() = %v, want 33.33", got)
	}
	if got := PricePerSqft(350000, 0); got != 0 {
		t.Errorf("PricePerSqft() without area = %v, want 0", got)
	}
}

func TestComputeFinancials(t *testing.T) {
	report := &Report{Market: MarketData{EstimatedValue: 330000, SquareFootage: 1500}}

	got := ComputeFinancials(ResearchRequest{SalePrice: 300000, CommissionAmount: 18000}, report)
	if got.CurrentMarketValue != 330000 || got.CommissionPaid != 18000 || got.TransactionPrice != 300000 {
		t.Errorf("ComputeFinancials() = %+v", got)
	}
	if got.PricePerSqft != 200 {
		t.Errorf("PricePerSqft = %v, want 200 from the report area", got.PricePerSqft)
	}
	if got.ValueChange.Direction != DirectionIncrease || got.ValueChange.Percentage != 10 {
		t.Errorf("ValueChange = %+v", got.ValueChange)
	}

	got = ComputeFinancials(ResearchRequest{SalePrice: 300000, SquareFootage: 2000}, report)
	if got.PricePerSqft != 150 {
		t.Errorf("PricePerSqft = %v, want 150 from the request area", got.PricePerSqft)
	}
}
