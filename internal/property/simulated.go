package property

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"realty-assistant/internal/service"
)

// SimulatedSource names the data source of SimulatedProvider reports.
const SimulatedSource = "simulated"

const (
	minEstimatedValue = 200000
	valueSpread       = 500000
)

var (
	propertyTypes   = []string{"Single Family", "Condo", "Townhouse", "Multi-Family"}
	schoolDistricts = []string{"Metro School District", "City Public Schools", "County School System"}
	amenities       = []string{
		"Grocery Store (0.3 miles)",
		"Coffee Shop (0.1 miles)",
		"Park (0.5 miles)",
		"Restaurant (0.2 miles)",
		"Gas Station (0.4 miles)",
		"Pharmacy (0.6 miles)",
	}
	incidents = []Incident{
		{Date: "2024-07-10", Type: "Theft", Distance: "0.2 miles"},
		{Date: "2024-07-05", Type: "Vandalism", Distance: "0.4 miles"},
		{Date: "2024-06-28", Type: "Burglary", Distance: "0.6 miles"},
	}
)

// SimulatedProvider returns plausible data derived from a hash of the address.
// The same address always yields the same report apart from RetrievedAt.
type SimulatedProvider struct {
	now func() time.Time
}

// NewSimulatedProvider creates a SimulatedProvider.
func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{now: time.Now}
}

// Lookup builds the report for addr.
func (p *SimulatedProvider) Lookup(ctx context.Context, addr Address) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, &service.ValidationError{Field: "street", Message: "cannot be empty"}
	}

	full := addr.String()
	seed := addressSeed(full)
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	value := EstimatedValue(full)

	return &Report{
		Address:     full,
		Source:      SimulatedSource,
		RetrievedAt: p.now().UTC(),
		Market: MarketData{
			EstimatedValue: value,
			SquareFootage:  1200 + rng.IntN(2001),
			PropertyType:   propertyTypes[rng.IntN(len(propertyTypes))],
			DaysOnMarket:   between(rng, 15, 90),
			PriceHistory: []PriceEvent{
				{Date: "2023-01-01", Price: 450000, Event: "Listed"},
				{Date: "2023-02-15", Price: 435000, Event: "Price Reduction"},
				{Date: "2023-03-10", Price: 440000, Event: "Sold"},
			},
			Trends: MarketTrends{
				PriceTrend6Months: "+2.5%",
				PriceTrend1Year:   "+5.2%",
				InventoryLevel:    "Low",
				Temperature:       "Hot",
			},
		},
		Neighborhood: Neighborhood{
			WalkScore:    between(rng, 20, 100),
			TransitScore: between(rng, 10, 90),
			BikeScore:    between(rng, 15, 85),
			Amenities:    sample(rng, amenities, between(rng, 3, len(amenities))),
			Demographics: Demographics{
				MedianAge:         35,
				MedianIncome:      75000,
				PopulationDensity: "Medium",
				EducationLevel:    "College Educated",
			},
			CostOfLiving: CostOfLiving{Overall: 105, Housing: 120, Utilities: 95, Transportation: 100},
		},
		History: PropertyHistory{
			PreviousSales: []Sale{
				{Date: "2020-05-15", Price: 380000, Type: "Sale"},
				{Date: "2015-08-22", Price: 320000, Type: "Sale"},
				{Date: "2010-03-10", Price: 275000, Type: "Sale"},
			},
			TaxHistory: []TaxRecord{
				{Year: 2023, AssessedValue: 420000, TaxAmount: 8400},
				{Year: 2022, AssessedValue: 410000, TaxAmount: 8200},
				{Year: 2021, AssessedValue: 395000, TaxAmount: 7900},
			},
			Ownership: []Ownership{
				{Owner: "Current Owner", FromDate: "2020-05-15", ToDate: "Present"},
				{Owner: "Previous Owner", FromDate: "2015-08-22", ToDate: "2020-05-15"},
			},
			Permits: []Permit{
				{Date: "2022-03-15", Type: "Kitchen Renovation", Value: 25000},
				{Date: "2021-07-10", Type: "Roof Replacement", Value: 15000},
				{Date: "2019-09-05", Type: "HVAC Installation", Value: 8000},
			},
		},
		Comparables: comparables(full, value),
		Schools: Schools{
			Elementary:     schools(rng, "Elementary"),
			Middle:         schools(rng, "Middle"),
			High:           schools(rng, "High"),
			District:       schoolDistricts[rng.IntN(len(schoolDistricts))],
			DistrictRating: between(rng, 1, 10),
		},
		Crime: crimeStats(rng),
	}, nil
}

// EstimatedValue is the simulated market value of an address, in [200000, 700000).
func EstimatedValue(fullAddress string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalizeAddress(fullAddress)))
	return minEstimatedValue + int(h.Sum32()%valueSpread)
}

func addressSeed(fullAddress string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(normalizeAddress(fullAddress)))
	return h.Sum64()
}

func normalizeAddress(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func comparables(full string, value int) []Comparable {
	out := make([]Comparable, 0, 3)
	for i := range 3 {
		out = append(out, Comparable{
			Address:       fmt.Sprintf("Similar Property %d near %s", i+1, full),
			SalePrice:     value + i*10000 - 10000,
			SaleDate:      fmt.Sprintf("2024-%02d-15", 6+i),
			SquareFootage: 1800 + i*200,
			Bedrooms:      3 + i%2,
			Bathrooms:     2 + i%2,
			DistanceMiles: round(0.3+float64(i)*0.2, 1),
		})
	}
	return out
}

func schools(rng *rand.Rand, level string) []School {
	out := make([]School, 0, 2)
	for i := range 2 {
		out = append(out, School{
			Name:                fmt.Sprintf("%s School %d", level, i+1),
			Rating:              between(rng, 1, 10),
			DistanceMiles:       round(0.5+float64(i)*0.3, 1),
			Enrollment:          300 + i*200,
			StudentTeacherRatio: 15 + i,
		})
	}
	return out
}

func crimeStats(rng *rand.Rand) CrimeStats {
	overall := round(5+rng.Float64()*20, 1)
	return CrimeStats{
		OverallRate:     overall,
		ViolentRate:     round(overall*0.3, 1),
		PropertyRate:    round(overall*0.7, 1),
		SafetyScore:     between(rng, 1, 100),
		RecentIncidents: sample(rng, incidents, between(rng, 1, len(incidents))),
	}
}

// between returns a value in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// sample returns k distinct items of src in their original order.
func sample[T any](rng *rand.Rand, src []T, k int) []T {
	picked := rng.Perm(len(src))[:k]
	keep := make(map[int]bool, k)
	for _, i := range picked {
		keep[i] = true
	}
	out := make([]T, 0, k)
	for i, item := range src {
		if keep[i] {
			out = append(out, item)
		}
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
