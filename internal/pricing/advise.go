package pricing

import (
	"fmt"
	"sort"
	"time"

	"shiprate-backend/internal/domain"

	"github.com/google/uuid"
)

// BandQuery drives the weight-band picker for one service.
type BandQuery struct {
	Destination   domain.DestinationClass
	CountryCode   string
	MonthlyVolume *int
	At            time.Time
}

// WeightBands lists the service's bands for a destination with the price each
// band resolves to. Country-specific bands are listed only for their country,
// and a generic band fully covered by that country's bands is left out.
func (r *Resolver) WeightBands(catalog *domain.Catalog, serviceID uuid.UUID, q BandQuery) ([]domain.WeightBand, error) {
	if err := validateQuery(domain.QuoteQuery{Weight: 1, Destination: q.Destination, MonthlyVolume: q.MonthlyVolume}); err != nil {
		return nil, err
	}
	tiers, err := r.WeightTiersForService(catalog, serviceID)
	if err != nil {
		return nil, err
	}
	carrier, service, _ := catalog.FindService(serviceID)
	country := domain.NormalizeCountryCode(q.CountryCode)

	var countryTiers []domain.PriceTier
	if country != "" {
		for _, t := range tiers {
			if t.Destination == q.Destination && t.CountryCode == country {
				countryTiers = append(countryTiers, t)
			}
		}
	}

	bands := make([]domain.WeightBand, 0, len(tiers))
	for _, t := range tiers {
		if t.Destination != q.Destination {
			continue
		}
		if t.CountryCode != "" && t.CountryCode != country {
			continue
		}
		if t.CountryCode == "" && covered(countryTiers, t.WeightMin, t.WeightMax) {
			continue
		}
		quote := r.price(carrier, service, t, t.WeightMin, q.Destination, country, q.MonthlyVolume, q.At)
		bands = append(bands, domain.WeightBand{
			ID:                  fmt.Sprintf("%s-%s-%s", t.ID, formatWeight(t.WeightMin), formatWeight(t.WeightMax)),
			Label:               fmt.Sprintf("%s-%s kg", formatWeight(t.WeightMin), formatWeight(t.WeightMax)),
			Min:                 t.WeightMin,
			Max:                 t.WeightMax,
			BasePrice:           t.RetailPrice,
			FinalPrice:          quote.FinalPrice,
			ActualMarginPercent: quote.ActualMarginPercent,
			VolumeDiscount:      quote.VolumeDiscountPercent,
			PromotionDiscount:   quote.PromotionDiscountPercent,
		})
	}
	return bands, nil
}

// covered reports whether the union of tiers spans [lo, hi]. tiers must be
// sorted by WeightMin.
func covered(tiers []domain.PriceTier, lo, hi float64) bool {
	reach := lo
	for _, t := range tiers {
		if t.WeightMin > reach {
			break
		}
		if t.WeightMax > reach {
			reach = t.WeightMax
		}
		if reach >= hi {
			return true
		}
	}
	return false
}

// AdviceQuery drives Advise. MonthlyVolume is optional; without it no volume
// advisories are produced.
type AdviceQuery struct {
	Weight        float64
	Destination   domain.DestinationClass
	MonthlyVolume *int
	At            time.Time
}

// Advise derives rule-based hints from the catalog: services whose margin is
// below the warning threshold, the best active promotion per carrier, and the
// next volume threshold that would raise a carrier's discount.
func (r *Resolver) Advise(catalog *domain.Catalog, q AdviceQuery) ([]domain.Advisory, error) {
	if err := validateQuery(domain.QuoteQuery{Weight: q.Weight, Destination: q.Destination, MonthlyVolume: q.MonthlyVolume}); err != nil {
		return nil, err
	}

	out := make([]domain.Advisory, 0)
	for i := range catalog.Carriers {
		carrier := &catalog.Carriers[i]
		if !carrier.IsActive {
			continue
		}

		if q.MonthlyVolume != nil {
			if a, ok := volumeAdvisory(carrier, *q.MonthlyVolume); ok {
				out = append(out, a)
			}
		}

		if p, ok := BestPromotion(carrier.Promotions, q.At, ""); ok {
			discount, end := p.DiscountPercent, p.EndDate
			out = append(out, domain.Advisory{
				Type:               domain.AdvisoryActivePromotion,
				CarrierID:          carrier.ID,
				CarrierName:        carrier.Name,
				PromotionName:      p.Name,
				DiscountPercentage: &discount,
				EndDate:            &end,
				Message: fmt.Sprintf("Promotion %q from %s gives %g%% off until %s",
					p.Name, carrier.Name, p.DiscountPercent, p.EndDate.Format("2006-01-02")),
			})
		}

		for j := range carrier.Services {
			service := &carrier.Services[j]
			if !service.IsActive || !service.Serves(q.Destination) {
				continue
			}
			tier, ok := MatchTier(service.Tiers, q.Weight, q.Destination, "")
			if !ok {
				continue
			}
			quote := r.price(carrier, service, tier, q.Weight, q.Destination, "", q.MonthlyVolume, q.At)
			if quote.ActualMarginPercent >= r.opts.MarginWarningPercent {
				continue
			}
			margin := quote.ActualMarginPercent
			out = append(out, domain.Advisory{
				Type:          domain.AdvisoryMarginWarning,
				CarrierID:     carrier.ID,
				CarrierName:   carrier.Name,
				ServiceCode:   service.Code,
				ServiceName:   service.Name,
				CurrentMargin: &margin,
				Message: fmt.Sprintf("Margin for %s by %s is only %.2f%%; raise the retail price or renegotiate the purchase rate",
					service.Name, carrier.Name, margin),
			})
		}
	}

	sortAdvisories(out)
	return out, nil
}

// volumeAdvisory suggests the next volume threshold above volume when it
// carries a larger discount than the best tier the volume already reaches.
func volumeAdvisory(carrier *domain.Carrier, volume int) (domain.Advisory, bool) {
	current := 0.0
	if best, ok := BestVolumeDiscount(carrier.VolumeDiscounts, volume, ""); ok {
		current = best.DiscountPercent
	}

	var next *domain.VolumeDiscountTier
	for i := range carrier.VolumeDiscounts {
		t := &carrier.VolumeDiscounts[i]
		if t.MinVolume <= volume {
			continue
		}
		if next == nil || t.MinVolume < next.MinVolume {
			next = t
		}
	}
	if next == nil || next.DiscountPercent <= current {
		return domain.Advisory{}, false
	}

	v, suggested, discount := volume, next.MinVolume, next.DiscountPercent
	return domain.Advisory{
		Type:              domain.AdvisoryVolumeIncrease,
		CarrierID:         carrier.ID,
		CarrierName:       carrier.Name,
		CurrentVolume:     &v,
		CurrentDiscount:   &current,
		SuggestedVolume:   &suggested,
		SuggestedDiscount: &discount,
		Message: fmt.Sprintf("Reaching %d shipments per month with %s raises the discount to %g%%",
			next.MinVolume, carrier.Name, next.DiscountPercent),
	}, true
}

func advisoryRank(t domain.AdvisoryType) int {
	switch t {
	case domain.AdvisoryMarginWarning:
		return 0
	case domain.AdvisoryActivePromotion:
		return 1
	default:
		return 2
	}
}

func advisoryDiscount(a domain.Advisory) float64 {
	switch {
	case a.DiscountPercentage != nil:
		return *a.DiscountPercentage
	case a.SuggestedDiscount != nil:
		return *a.SuggestedDiscount
	}
	return 0
}

func sortAdvisories(list []domain.Advisory) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if ra, rb := advisoryRank(a.Type), advisoryRank(b.Type); ra != rb {
			return ra < rb
		}
		if da, db := advisoryDiscount(a), advisoryDiscount(b); da != db {
			return da > db
		}
		if a.CarrierName != b.CarrierName {
			return a.CarrierName < b.CarrierName
		}
		return a.ServiceCode < b.ServiceCode
	})
}
