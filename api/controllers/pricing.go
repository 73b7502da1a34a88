package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/tillpoint/api/responses"
	"github.com/angelmondragon/tillpoint/api/validators"
	"github.com/angelmondragon/tillpoint/internal/promos"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
	"github.com/angelmondragon/tillpoint/pkg/logger"
)

// quoteLineRequest keeps ids as raw strings so one malformed id cannot reject
// the whole cart.
type quoteLineRequest struct {
	ProductID      string          `json:"product_id"`
	CategoryID     string          `json:"category_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	AvailableStock int             `json:"available_stock"`
}

// quoteRequest carries the cart snapshot. Per-line problems come back as
// issues on the quote rather than as a request error.
type quoteRequest struct {
	Lines []quoteLineRequest `json:"lines" validate:"required"`
}

func (q quoteRequest) toLines() []promos.CartLine {
	lines := make([]promos.CartLine, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, promos.CartLine{
			ProductID:      parseLineID(l.ProductID),
			CategoryID:     parseLineID(l.CategoryID),
			UnitPrice:      l.UnitPrice,
			Quantity:       l.Quantity,
			AvailableStock: l.AvailableStock,
		})
	}
	return lines
}

// parseLineID maps a missing or malformed id to uuid.Nil, which the evaluator
// reports as an issue on that line.
func parseLineID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// PricingQuote prices a cart snapshot against the tenant's active promotions.
func PricingQuote(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		tenantID, err := tenantIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), promos.QuoteInput{
			TenantID: tenantID,
			Lines:    body.toLines(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
