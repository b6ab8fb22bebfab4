// Package pricing resolves shipping quotes from a catalog snapshot.
//
// The resolver is a pure function of its inputs: it reads the catalog, never
// mutates it, performs no I/O and takes the evaluation instant from the query.
// A single Resolver may be shared by any number of goroutines.
package pricing

import (
	"math"
	"sort"
	"time"

	"shiprate-backend/internal/domain"

	"github.com/google/uuid"
)

// Options tune the resolver.
type Options struct {
	// ClampDiscount caps the stacked discount at 100%. Off by default: stacking
	// is additive and may exceed 100% for extreme catalogs.
	ClampDiscount bool

	// MarginWarningPercent is the threshold below which Advise reports a
	// margin warning.
	MarginWarningPercent float64
}

const DefaultMarginWarningPercent = 15.0

type Resolver struct {
	opts Options
}

func NewResolver(opts Options) *Resolver {
	if opts.MarginWarningPercent == 0 {
		opts.MarginWarningPercent = DefaultMarginWarningPercent
	}
	return &Resolver{opts: opts}
}

// Quote prices every active service of every active carrier that serves the
// query's destination and has a tier for its weight, sorted by final price.
func (r *Resolver) Quote(catalog *domain.Catalog, q domain.QuoteQuery) ([]domain.PriceQuote, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	carriers, err := selectCarriers(catalog, q.CarrierIDs)
	if err != nil {
		return nil, err
	}

	country := domain.NormalizeCountryCode(q.CountryCode)
	quotes := make([]domain.PriceQuote, 0)
	for _, carrier := range carriers {
		if !carrier.IsActive {
			continue
		}
		for i := range carrier.Services {
			service := &carrier.Services[i]
			if !service.IsActive || !service.Serves(q.Destination) {
				continue
			}
			if len(q.ServiceNames) > 0 && !containsFold(q.ServiceNames, service.Name) {
				continue
			}
			tier, ok := MatchTier(service.Tiers, q.Weight, q.Destination, country)
			if !ok {
				continue
			}
			quote := r.price(carrier, service, tier, q.Weight, q.Destination, country, q.MonthlyVolume, q.At)
			if q.MinMarginPercent != nil && quote.ActualMarginPercent < *q.MinMarginPercent {
				continue
			}
			quotes = append(quotes, quote)
		}
	}

	SortQuotes(quotes)
	return quotes, nil
}

// QuoteService prices a single service. Unlike Quote, a missing service, an
// inactive service or carrier, or a missing tier is reported as a NotFound error.
func (r *Resolver) QuoteService(catalog *domain.Catalog, serviceID uuid.UUID, q domain.QuoteQuery) (*domain.PriceQuote, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	carrier, service, ok := catalog.FindService(serviceID)
	if !ok {
		return nil, domain.NotFound(domain.ErrServiceNotFound, serviceID.String())
	}
	if !carrier.IsActive || !service.IsActive {
		return nil, domain.NotFound(domain.ErrRateNotFound, service.Code+" is inactive")
	}
	if !service.Serves(q.Destination) {
		return nil, domain.NotFound(domain.ErrRateNotFound, string(q.Destination))
	}

	country := domain.NormalizeCountryCode(q.CountryCode)
	tier, ok := MatchTier(service.Tiers, q.Weight, q.Destination, country)
	if !ok {
		return nil, domain.NotFound(domain.ErrRateNotFound, formatWeight(q.Weight)+" kg")
	}
	quote := r.price(carrier, service, tier, q.Weight, q.Destination, country, q.MonthlyVolume, q.At)
	return &quote, nil
}

// WeightTiersForService returns a copy of the service's tiers sorted by
// weightMin, then destination and country.
func (r *Resolver) WeightTiersForService(catalog *domain.Catalog, serviceID uuid.UUID) ([]domain.PriceTier, error) {
	_, service, ok := catalog.FindService(serviceID)
	if !ok {
		return nil, domain.NotFound(domain.ErrServiceNotFound, serviceID.String())
	}
	tiers := make([]domain.PriceTier, len(service.Tiers))
	copy(tiers, service.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].WeightMin != tiers[j].WeightMin {
			return tiers[i].WeightMin < tiers[j].WeightMin
		}
		if tiers[i].Destination != tiers[j].Destination {
			return tiers[i].Destination < tiers[j].Destination
		}
		return tiers[i].CountryCode < tiers[j].CountryCode
	})
	return tiers, nil
}

// price runs the surcharge, discount and margin arithmetic for one matched tier.
func (r *Resolver) price(carrier *domain.Carrier, service *domain.Service, tier domain.PriceTier,
	weight float64, dest domain.DestinationClass, country string, volume *int, at time.Time) domain.PriceQuote {

	totalBase := tier.RetailPrice * (1 + carrier.FuelSurchargePercent/100)

	volumeDiscount := 0.0
	if volume != nil {
		if v, ok := BestVolumeDiscount(carrier.VolumeDiscounts, *volume, service.Code); ok {
			volumeDiscount = v.DiscountPercent
		}
	}

	promoDiscount := 0.0
	promoName := ""
	if p, ok := BestPromotion(carrier.Promotions, at, service.Code); ok {
		promoDiscount = p.DiscountPercent
		promoName = p.Name
	}

	totalDiscount := volumeDiscount + promoDiscount
	if r.opts.ClampDiscount && totalDiscount > 100 {
		totalDiscount = 100
	}

	finalPrice := totalBase * (1 - totalDiscount/100)

	return domain.PriceQuote{
		CarrierID:       carrier.ID,
		CarrierName:     carrier.Name,
		CarrierLogo:     carrier.LogoURL,
		ServiceID:       service.ID,
		ServiceCode:     service.Code,
		ServiceName:     service.Name,
		DeliveryTimeMin: service.DeliveryTimeMin,
		DeliveryTimeMax: service.DeliveryTimeMax,
		Weight:          weight,
		Destination:     dest,
		CountryCode:     country,

		TierID:        tier.ID,
		WeightMin:     tier.WeightMin,
		WeightMax:     tier.WeightMax,
		RetailPrice:   tier.RetailPrice,
		PurchasePrice: tier.PurchasePrice,

		FuelSurchargePercent:     carrier.FuelSurchargePercent,
		FuelSurchargeAmount:      totalBase - tier.RetailPrice,
		TotalBasePrice:           totalBase,
		VolumeDiscountPercent:    volumeDiscount,
		PromotionDiscountPercent: promoDiscount,
		PromotionName:            promoName,
		TotalDiscountPercent:     totalDiscount,
		FinalPrice:               finalPrice,
		ActualMargin:             finalPrice - tier.PurchasePrice,
		ActualMarginPercent:      MarginPercent(finalPrice, tier.PurchasePrice),
	}
}

// MarginPercent is (final - purchase) / final * 100, or 0 when final is 0.
func MarginPercent(finalPrice, purchasePrice float64) float64 {
	if finalPrice == 0 {
		return 0
	}
	return (finalPrice - purchasePrice) / finalPrice * 100
}

// SortQuotes orders quotes by final price, then carrier name, then service code.
func SortQuotes(quotes []domain.PriceQuote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		if a.FinalPrice != b.FinalPrice {
			return a.FinalPrice < b.FinalPrice
		}
		if a.CarrierName != b.CarrierName {
			return a.CarrierName < b.CarrierName
		}
		return a.ServiceCode < b.ServiceCode
	})
}

func validateQuery(q domain.QuoteQuery) error {
	if math.IsNaN(q.Weight) || math.IsInf(q.Weight, 0) || q.Weight <= 0 {
		return domain.InvalidInput("weight must be a finite number greater than 0")
	}
	switch q.Destination {
	case domain.DestinationNational, domain.DestinationEU, domain.DestinationExtraEU:
	default:
		return domain.InvalidInput("unknown destination class %q", q.Destination)
	}
	if q.MonthlyVolume != nil && *q.MonthlyVolume < 0 {
		return domain.InvalidInput("monthly volume must not be negative")
	}
	if q.MinMarginPercent != nil && (math.IsNaN(*q.MinMarginPercent) || math.IsInf(*q.MinMarginPercent, 0)) {
		return domain.InvalidInput("minimum margin must be a finite number")
	}
	return nil
}

// selectCarriers returns every carrier, or only the requested ones in request
// order. A requested id missing from the snapshot is a NotFound error.
func selectCarriers(catalog *domain.Catalog, ids []uuid.UUID) ([]*domain.Carrier, error) {
	if len(ids) == 0 {
		out := make([]*domain.Carrier, len(catalog.Carriers))
		for i := range catalog.Carriers {
			out[i] = &catalog.Carriers[i]
		}
		return out, nil
	}
	out := make([]*domain.Carrier, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := catalog.FindCarrier(id)
		if !ok {
			return nil, domain.NotFound(domain.ErrCarrierNotFound, id.String())
		}
		out = append(out, c)
	}
	return out, nil
}
