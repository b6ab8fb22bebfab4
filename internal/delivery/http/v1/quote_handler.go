package v1

import (
	"net/http"

	"shiprate-backend/internal/domain"
	"shiprate-backend/internal/pricing"
	"shiprate-backend/internal/usecase"
	"shiprate-backend/pkg/utils"
)

type QuoteHandler struct {
	quoteUC *usecase.QuoteUsecase
}

func NewQuoteHandler(uc *usecase.QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{quoteUC: uc}
}

// Compare handles GET /api/v1/rates/compare.
func (h *QuoteHandler) Compare(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r)
	q := domain.QuoteQuery{
		Weight:           p.weight(),
		Destination:      p.destination(),
		CountryCode:      p.country(),
		MonthlyVolume:    p.volume(),
		At:               p.at(),
		CarrierIDs:       p.carrierIDs(),
		ServiceNames:     p.serviceNames(),
		MinMarginPercent: p.minMargin(),
	}
	if err := p.err(); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	quotes, err := h.quoteUC.Compare(r.Context(), q)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, len(quotes), quotes)
}

// Advice handles GET /api/v1/rates/advice.
func (h *QuoteHandler) Advice(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r)
	q := pricing.AdviceQuery{
		Weight:        p.weight(),
		Destination:   p.destination(),
		MonthlyVolume: p.volume(),
		At:            p.at(),
	}
	if err := p.err(); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	advice, err := h.quoteUC.Advise(r.Context(), q)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, len(advice), advice)
}

// ServiceQuote handles GET /api/v1/services/{id}/quote.
func (h *QuoteHandler) ServiceQuote(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	p := newQueryParams(r)
	q := domain.QuoteQuery{
		Weight:        p.weight(),
		Destination:   p.destination(),
		CountryCode:   p.country(),
		MonthlyVolume: p.volume(),
		At:            p.at(),
	}
	if err := p.err(); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	quote, err := h.quoteUC.QuoteService(r.Context(), serviceID, q)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteSuccess(w, quote)
}

// WeightRanges handles GET /api/v1/services/{id}/weight-ranges.
func (h *QuoteHandler) WeightRanges(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	p := newQueryParams(r)
	q := pricing.BandQuery{
		Destination:   p.destination(),
		CountryCode:   p.country(),
		MonthlyVolume: p.volume(),
		At:            p.at(),
	}
	if err := p.err(); err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	bands, err := h.quoteUC.WeightBands(r.Context(), serviceID, q)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, len(bands), bands)
}

// Tiers handles GET /api/v1/services/{id}/tiers.
func (h *QuoteHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathID(r, "id")
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}

	tiers, err := h.quoteUC.ServiceTiers(r.Context(), serviceID)
	if err != nil {
		utils.WriteDomainError(w, r, err)
		return
	}
	utils.WriteList(w, len(tiers), tiers)
}
