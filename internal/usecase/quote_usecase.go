package usecase

import (
	"context"
	"time"

	"shiprate-backend/internal/domain"
	"shiprate-backend/internal/pricing"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/metrics"

	"github.com/google/uuid"
)

// QuoteUsecase resolves prices against the current catalog snapshot.
type QuoteUsecase struct {
	snapshot *CatalogSnapshot
	resolver *pricing.Resolver
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewQuoteUsecase(snapshot *CatalogSnapshot, resolver *pricing.Resolver, m *metrics.Metrics) *QuoteUsecase {
	return &QuoteUsecase{
		snapshot: snapshot,
		resolver: resolver,
		metrics:  m,
		now:      time.Now,
	}
}

// Compare lists every quote for the query. A zero At means now.
func (u *QuoteUsecase) Compare(ctx context.Context, q domain.QuoteQuery) ([]domain.PriceQuote, error) {
	start := time.Now()
	if q.At.IsZero() {
		q.At = u.now()
	}

	var quotes []domain.PriceQuote
	cat, err := u.snapshot.Get(ctx)
	if err == nil {
		quotes, err = u.resolver.Quote(cat, q)
	}

	u.observe(ctx, "compare", q.Weight, q.Destination, len(quotes), start, err)
	if err == nil {
		u.metrics.QuotesReturned.Observe(float64(len(quotes)))
	}
	return quotes, err
}

// QuoteService prices one service.
func (u *QuoteUsecase) QuoteService(ctx context.Context, serviceID uuid.UUID, q domain.QuoteQuery) (*domain.PriceQuote, error) {
	start := time.Now()
	if q.At.IsZero() {
		q.At = u.now()
	}

	var quote *domain.PriceQuote
	cat, err := u.snapshot.Get(ctx)
	if err == nil {
		quote, err = u.resolver.QuoteService(cat, serviceID, q)
	}

	results := 0
	if quote != nil {
		results = 1
	}
	u.observe(ctx, "service_quote", q.Weight, q.Destination, results, start, err)
	return quote, err
}

// WeightBands lists the band picker rows of a service.
func (u *QuoteUsecase) WeightBands(ctx context.Context, serviceID uuid.UUID, q pricing.BandQuery) ([]domain.WeightBand, error) {
	start := time.Now()
	if q.At.IsZero() {
		q.At = u.now()
	}

	var bands []domain.WeightBand
	cat, err := u.snapshot.Get(ctx)
	if err == nil {
		bands, err = u.resolver.WeightBands(cat, serviceID, q)
	}

	u.observe(ctx, "weight_bands", 0, q.Destination, len(bands), start, err)
	return bands, err
}

// ServiceTiers returns the raw tiers of a service ordered by weight.
func (u *QuoteUsecase) ServiceTiers(ctx context.Context, serviceID uuid.UUID) ([]domain.PriceTier, error) {
	cat, err := u.snapshot.Get(ctx)
	if err != nil {
		return nil, err
	}
	return u.resolver.WeightTiersForService(cat, serviceID)
}

// Advise derives rule-based advisories for the query.
func (u *QuoteUsecase) Advise(ctx context.Context, q pricing.AdviceQuery) ([]domain.Advisory, error) {
	start := time.Now()
	if q.At.IsZero() {
		q.At = u.now()
	}

	var advice []domain.Advisory
	cat, err := u.snapshot.Get(ctx)
	if err == nil {
		advice, err = u.resolver.Advise(cat, q)
	}

	u.observe(ctx, "advice", q.Weight, q.Destination, len(advice), start, err)
	return advice, err
}

func (u *QuoteUsecase) observe(ctx context.Context, op string, weight float64, dest domain.DestinationClass, results int, start time.Time, err error) {
	elapsed := time.Since(start)
	u.metrics.QuotesTotal.WithLabelValues(op, outcome(err)).Inc()
	u.metrics.QuoteDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	logger.Quote(logger.WithContext(ctx), op, weight, string(dest), results, elapsed, err)
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindValidationFailed:
		return metrics.OutcomeInvalid
	case domain.KindNotFound:
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
