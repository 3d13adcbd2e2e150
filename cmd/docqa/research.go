package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"realty-assistant/internal/property"
)

func researchCmd() *cobra.Command {
	var req property.ResearchRequest
	var reportOnly bool

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Research a property address with simulated market data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider := property.NewSimulatedProvider()

			var result any
			if reportOnly {
				report, err := provider.Lookup(ctx, req.Address)
				if err != nil {
					return err
				}
				result = struct {
					Report     *property.Report    `json:"report"`
					Financials property.Financials `json:"financials"`
				}{report, property.ComputeFinancials(req, report)}
			} else {
				model, err := newModel()
				if err != nil {
					return err
				}
				research, err := property.NewResearcher(provider, model).Research(ctx, req)
				if err != nil {
					return err
				}
				result = research
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Address.Street, "street", "", "street address (required)")
	f.StringVar(&req.Address.City, "city", "", "city")
	f.StringVar(&req.Address.State, "state", "", "two-letter state code")
	f.StringVar(&req.Address.Zip, "zip", "", "ZIP code")
	f.Float64Var(&req.SalePrice, "sale-price", 0, "transaction sale price")
	f.StringVar(&req.ClosingDate, "closing-date", "", "closing date (YYYY-MM-DD)")
	f.Float64Var(&req.CommissionAmount, "commission", 0, "commission paid")
	f.Float64Var(&req.SquareFootage, "sqft", 0, "living area in square feet")
	f.BoolVar(&reportOnly, "report-only", false, "skip model insights and print the report and financials")
	_ = cmd.MarkFlagRequired("street")
	return cmd
}
