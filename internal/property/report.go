package property

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_data_provider.go -package=mocks realty-assistant/internal/property PropertyDataProvider

import (
	"context"
	"time"
)

// PropertyDataProvider looks up market, neighborhood and history data for an address.
type PropertyDataProvider interface {
	Lookup(ctx context.Context, addr Address) (*Report, error)
}

// Report is everything a provider knows about one property.
type Report struct {
	Address      string          `json:"address"`
	Source       string          `json:"source"`
	RetrievedAt  time.Time       `json:"retrieved_at"`
	Market       MarketData      `json:"market"`
	Neighborhood Neighborhood    `json:"neighborhood"`
	History      PropertyHistory `json:"history"`
	Comparables  []Comparable    `json:"comparables"`
	Schools      Schools         `json:"schools"`
	Crime        CrimeStats      `json:"crime"`
}

// MarketData is the current market view of the property.
type MarketData struct {
	EstimatedValue int          `json:"estimated_value"`
	SquareFootage  int          `json:"square_footage"`
	PropertyType   string       `json:"property_type"`
	DaysOnMarket   int          `json:"days_on_market"`
	PriceHistory   []PriceEvent `json:"price_history"`
	Trends         MarketTrends `json:"trends"`
}

type PriceEvent struct {
	Date  string `json:"date"`
	Price int    `json:"price"`
	Event string `json:"event"`
}

type MarketTrends struct {
	PriceTrend6Months string `json:"price_trend_6_months"`
	PriceTrend1Year   string `json:"price_trend_1_year"`
	InventoryLevel    string `json:"inventory_level"`
	Temperature       string `json:"market_temperature"`
}

// Neighborhood describes the area around the property.
type Neighborhood struct {
	WalkScore    int          `json:"walkability_score"`
	TransitScore int          `json:"transit_score"`
	BikeScore    int          `json:"bike_score"`
	Amenities    []string     `json:"nearby_amenities"`
	Demographics Demographics `json:"demographics"`
	CostOfLiving CostOfLiving `json:"cost_of_living"`
}

type Demographics struct {
	MedianAge         int    `json:"median_age"`
	MedianIncome      int    `json:"median_income"`
	PopulationDensity string `json:"population_density"`
	EducationLevel    string `json:"education_level"`
}

// CostOfLiving indexes are relative to a national average of 100.
type CostOfLiving struct {
	Overall        int `json:"overall_index"`
	Housing        int `json:"housing_index"`
	Utilities      int `json:"utilities_index"`
	Transportation int `json:"transportation_index"`
}

// PropertyHistory is the recorded past of the property.
type PropertyHistory struct {
	PreviousSales []Sale      `json:"previous_sales"`
	TaxHistory    []TaxRecord `json:"tax_history"`
	Ownership     []Ownership `json:"ownership_history"`
	Permits       []Permit    `json:"permits_and_renovations"`
}

type Sale struct {
	Date  string `json:"date"`
	Price int    `json:"price"`
	Type  string `json:"type"`
}

type TaxRecord struct {
	Year          int `json:"year"`
	AssessedValue int `json:"assessed_value"`
	TaxAmount     int `json:"tax_amount"`
}

type Ownership struct {
	Owner    string `json:"owner"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

type Permit struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// Comparable is a recent nearby sale.
type Comparable struct {
	Address       string  `json:"address"`
	SalePrice     int     `json:"sale_price"`
	SaleDate      string  `json:"sale_date"`
	SquareFootage int     `json:"square_footage"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     int     `json:"bathrooms"`
	DistanceMiles float64 `json:"distance_miles"`
}

type Schools struct {
	Elementary     []School `json:"elementary_schools"`
	Middle         []School `json:"middle_schools"`
	High           []School `json:"high_schools"`
	District       string   `json:"school_district"`
	DistrictRating int      `json:"district_rating"`
}

type School struct {
	Name                string  `json:"name"`
	Rating              int     `json:"rating"`
	DistanceMiles       float64 `json:"distance_miles"`
	Enrollment          int     `json:"enrollment"`
	StudentTeacherRatio int     `json:"student_teacher_ratio"`
}

// CrimeStats rates are incidents per 1000 residents.
type CrimeStats struct {
	OverallRate     float64    `json:"overall_crime_rate"`
	ViolentRate     float64    `json:"violent_crime_rate"`
	PropertyRate    float64    `json:"property_crime_rate"`
	SafetyScore     int        `json:"safety_score"`
	RecentIncidents []Incident `json:"recent_incidents"`
}

type Incident struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Distance string `json:"distance"`
}
