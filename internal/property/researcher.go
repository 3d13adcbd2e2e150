package property

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/service"
)

const (
	insightsMaxTokens   = 6000
	insightsTemperature = 0.1
)

// ResearchRequest describes the property and, optionally, a transaction on it.
type ResearchRequest struct {
	Address          Address `json:"address"`
	SalePrice        float64 `json:"sale_price,omitempty"`
	ClosingDate      string  `json:"closing_date,omitempty"`
	CommissionAmount float64 `json:"commission_amount,omitempty"`
	SquareFootage    float64 `json:"square_footage,omitempty"`
}

// Research is the combined result of a lookup, the financials and the model's insights.
type Research struct {
	Request     ResearchRequest `json:"request"`
	Report      *Report         `json:"report"`
	Financials  Financials      `json:"financials"`
	Insights    Insights        `json:"insights"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Insights is the model's analysis of a property and transaction.
type Insights struct {
	Summary          InsightSummary     `json:"insights"`
	Investment       InvestmentAnalysis `json:"investment_analysis"`
	MarketComparison MarketComparison   `json:"market_comparison"`
	Risk             RiskAssessment     `json:"risk_assessment"`
	Recommendations  []string           `json:"recommendations"`
}

type InsightSummary struct {
	MarketPosition      string `json:"market_position"`
	ValueAssessment     string `json:"value_assessment"`
	TransactionAnalysis string `json:"transaction_analysis"`
}

type InvestmentAnalysis struct {
	ROIPotential        string `json:"roi_potential"`
	AppreciationOutlook string `json:"appreciation_outlook"`
	RentalPotential     string `json:"rental_potential"`
	// InvestmentGrade is a letter from A to F, optionally with + or -.
	InvestmentGrade string `json:"investment_grade"`
}

type MarketComparison struct {
	VsNeighborhoodAverage string `json:"vs_neighborhood_average"`
	VsComparableSales     string `json:"vs_comparable_sales"`
	MarketTiming          string `json:"market_timing"`
}

type RiskAssessment struct {
	MarketRisks   []string `json:"market_risks"`
	PropertyRisks []string `json:"property_risks"`
	// OverallLevel is Low, Medium or High.
	OverallLevel   string   `json:"overall_risk_level"`
	RiskMitigation []string `json:"risk_mitigation"`
}

// Researcher runs property research.
type Researcher struct {
	provider PropertyDataProvider
	model    llm.ChatModel
	now      func() time.Time
}

// NewResearcher creates a Researcher.
func NewResearcher(provider PropertyDataProvider, model llm.ChatModel) *Researcher {
	return &Researcher{provider: provider, model: model, now: time.Now}
}

// Research looks up the address, computes financials and asks the model for insights.
// Insights that do not parse or validate wrap llm.ErrMalformedResponse.
func (r *Researcher) Research(ctx context.Context, req ResearchRequest) (*Research, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Address.IsZero() {
		return nil, &service.ValidationError{Field: "address.street", Message: "cannot be empty"}
	}
	if req.SalePrice < 0 || req.CommissionAmount < 0 || req.SquareFootage < 0 {
		return nil, &service.ValidationError{Field: "sale_price", Message: "amounts must not be negative"}
	}

	report, err := r.provider.Lookup(ctx, req.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to look up property: %w", err)
	}
	financials := ComputeFinancials(req, report)

	logger.InfoContext(ctx, "property data retrieved",
		"address", report.Address,
		"source", report.Source,
		"estimated_value", report.Market.EstimatedValue,
		"value_direction", financials.ValueChange.Direction,
	)

	raw, err := r.model.ChatWithMessages(ctx, []llm.Message{
		{Role: "user", Content: insightsPrompt(req, report)},
	}, llm.ChatParams{
		MaxTokens:   insightsMaxTokens,
		Temperature: insightsTemperature,
	})
	if err != nil {
		return nil, service.External(err, "failed to generate property insights")
	}

	insights, err := parseInsights(raw)
	if err != nil {
		logger.WarnContext(ctx, "model returned unusable insights", "error", err)
		return nil, service.External(err, "failed to parse property insights")
	}

	return &Research{
		Request:     req,
		Report:      report,
		Financials:  financials,
		Insights:    insights,
		GeneratedAt: r.now().UTC(),
	}, nil
}

func parseInsights(raw string) (Insights, error) {
	var ins Insights
	if err := llm.ParseJSONObject(raw, &ins); err != nil {
		return Insights{}, err
	}

	grade := strings.ToUpper(strings.TrimSpace(ins.Investment.InvestmentGrade))
	if !validGrade(grade) {
		return Insights{}, fmt.Errorf("%w: investment_grade %q is not A-F", llm.ErrMalformedResponse, ins.Investment.InvestmentGrade)
	}
	ins.Investment.InvestmentGrade = grade

	level, ok := normalizeRiskLevel(ins.Risk.OverallLevel)
	if !ok {
		return Insights{}, fmt.Errorf("%w: overall_risk_level %q is not Low, Medium or High", llm.ErrMalformedResponse, ins.Risk.OverallLevel)
	}
	ins.Risk.OverallLevel = level

	if ins.Recommendations == nil {
		ins.Recommendations = []string{}
	}
	if ins.Risk.MarketRisks == nil {
		ins.Risk.MarketRisks = []string{}
	}
	if ins.Risk.PropertyRisks == nil {
		ins.Risk.PropertyRisks = []string{}
	}
	if ins.Risk.RiskMitigation == nil {
		ins.Risk.RiskMitigation = []string{}
	}
	return ins, nil
}

func validGrade(g string) bool {
	if len(g) == 0 || len(g) > 2 {
		return false
	}
	if g[0] < 'A' || g[0] > 'F' || g[0] == 'E' {
		return false
	}
	return len(g) == 1 || g[1] == '+' || g[1] == '-'
}

func normalizeRiskLevel(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return "Low", true
	case "medium":
		return "Medium", true
	case "high":
		return "High", true
	}
	return "", false
}

func insightsPrompt(req ResearchRequest, report *Report) string {
	na := func(v float64) string {
		if v <= 0 {
			return "N/A"
		}
		return "$" + strconv.FormatFloat(v, 'f', -1, 64)
	}
	closing := req.ClosingDate
	if closing == "" {
		closing = "N/A"
	}
	m := report.Market
	n := report.Neighborhood

	return fmt.Sprintf(`Analyze the following property transaction and market data to provide comprehensive insights:

TRANSACTION DATA:
- Property Address: %s
- Sale Price: %s
- Closing Date: %s
- Commission: %s

MARKET DATA:
- Estimated Current Value: $%d
- Property Type: %s
- Days on Market: %d
- Market Trends: 6 months %s, 1 year %s, inventory %s, market %s

NEIGHBORHOOD DATA:
- Walkability Score: %d
- Transit Score: %d
- Demographics: median age %d, median income $%d, %s density, %s

Please provide a comprehensive analysis in JSON format with the following structure:
{
    "insights": {
        "market_position": "Analysis of how this property compares to the market",
        "value_assessment": "Assessment of the property value and pricing",
        "transaction_analysis": "Analysis of the transaction details"
    },
    "investment_analysis": {
        "roi_potential": "Return on investment potential",
        "appreciation_outlook": "Property appreciation outlook",
        "rental_potential": "Rental income potential if applicable",
        "investment_grade": "A-F grade for investment potential"
    },
    "market_comparison": {
        "vs_neighborhood_average": "How this compares to neighborhood average",
        "vs_comparable_sales": "Comparison to recent comparable sales",
        "market_timing": "Assessment of market timing for this transaction"
    },
    "risk_assessment": {
        "market_risks": ["List of market-related risks"],
        "property_risks": ["List of property-specific risks"],
        "overall_risk_level": "Low/Medium/High",
        "risk_mitigation": ["Suggestions for risk mitigation"]
    },
    "recommendations": [
        "Specific actionable recommendations for buyers, sellers, or investors"
    ]
}

Base your analysis on the provided data and real estate market principles.`,
		report.Address, na(req.SalePrice), closing, na(req.CommissionAmount),
		m.EstimatedValue, m.PropertyType, m.DaysOnMarket,
		m.Trends.PriceTrend6Months, m.Trends.PriceTrend1Year, m.Trends.InventoryLevel, m.Trends.Temperature,
		n.WalkScore, n.TransitScore,
		n.Demographics.MedianAge, n.Demographics.MedianIncome, n.Demographics.PopulationDensity, n.Demographics.EducationLevel,
	)
}
