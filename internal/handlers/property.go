package handlers

import (
	"net/http"

	"realty-assistant/internal/property"
)

// PropertyHandler serves property research by address.
type PropertyHandler struct {
	researcher Researcher
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(researcher Researcher) *PropertyHandler {
	return &PropertyHandler{researcher: researcher}
}

// PropertyResearchRequest represents the HTTP request payload for property research.
// Address is a one-line address used when Street is empty.
//
// swagger:model PropertyResearchRequest
type PropertyResearchRequest struct {
	Address string `json:"address,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`

	SalePrice        float64 `json:"sale_price,omitempty"`
	ClosingDate      string  `json:"closing_date,omitempty"`
	CommissionAmount float64 `json:"commission_amount,omitempty"`
	SquareFootage    float64 `json:"square_footage,omitempty"`
}

func (p PropertyResearchRequest) toResearchRequest() property.ResearchRequest {
	addr := property.Address{Street: p.Street, City: p.City, State: p.State, Zip: p.Zip}
	if addr.IsZero() {
		addr = property.ParseAddress(p.Address)
	}
	return property.ResearchRequest{
		Address:          addr,
		SalePrice:        p.SalePrice,
		ClosingDate:      p.ClosingDate,
		CommissionAmount: p.CommissionAmount,
		SquareFootage:    p.SquareFootage,
	}
}

// ServeHTTP handles HTTP requests for property research.
//
// swagger:route POST /api/v1/property/research researchProperty
//
// # Research a property
//
// Looks up market, neighborhood, school and crime data for the address,
// computes the transaction financials and asks the model for insights.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/PropertyResearchRequest"
//
// responses:
//
//	'200':
//	  description: Report, financials and insights
//	'400':
//	  description: Missing street or negative amounts
//	'502':
//	  description: Model unavailable or returned unusable output
func (h *PropertyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PropertyResearchRequest
	if !decodeJSON(ctx, w, r, &req) {
		return
	}

	research, err := h.researcher.Research(ctx, req.toResearchRequest())
	if err != nil {
		handleServiceError(ctx, w, err, "property research")
		return
	}
	writeJSON(w, http.StatusOK, research)
}
