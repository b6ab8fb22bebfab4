package pricing

import (
	"strconv"
	"strings"
	"time"

	"shiprate-backend/internal/domain"
)

// MatchTier finds the tier of dest whose band contains weight. A tier for the
// exact country wins over a tier without a country; among candidates of the
// same kind the band with the lowest weightMin wins, so a weight sitting on a
// shared boundary resolves to the lower band.
func MatchTier(tiers []domain.PriceTier, weight float64, dest domain.DestinationClass, country string) (domain.PriceTier, bool) {
	var exact, generic *domain.PriceTier
	for i := range tiers {
		t := &tiers[i]
		if t.Destination != dest || !t.Contains(weight) {
			continue
		}
		switch {
		case t.CountryCode == "":
			if generic == nil || t.WeightMin < generic.WeightMin {
				generic = t
			}
		case country != "" && strings.EqualFold(t.CountryCode, country):
			if exact == nil || t.WeightMin < exact.WeightMin {
				exact = t
			}
		}
	}
	if exact != nil {
		return *exact, true
	}
	if generic != nil {
		return *generic, true
	}
	return domain.PriceTier{}, false
}

// BestVolumeDiscount picks the eligible tier with the highest discount. Ties
// keep the earliest tier. An empty serviceCode ignores service allow-lists.
func BestVolumeDiscount(tiers []domain.VolumeDiscountTier, volume int, serviceCode string) (domain.VolumeDiscountTier, bool) {
	best := -1
	for i := range tiers {
		t := &tiers[i]
		if !t.Covers(volume) || (serviceCode != "" && !t.AppliesTo(serviceCode)) {
			continue
		}
		if best < 0 || t.DiscountPercent > tiers[best].DiscountPercent {
			best = i
		}
	}
	if best < 0 {
		return domain.VolumeDiscountTier{}, false
	}
	return tiers[best], true
}

// BestPromotion picks the promotion active at the given instant with the
// highest discount. Ties keep the earliest promotion. An empty serviceCode
// ignores service allow-lists.
func BestPromotion(promos []domain.Promotion, at time.Time, serviceCode string) (domain.Promotion, bool) {
	best := -1
	for i := range promos {
		p := &promos[i]
		if !p.ActiveAt(at) || (serviceCode != "" && !p.AppliesTo(serviceCode)) {
			continue
		}
		if best < 0 || p.DiscountPercent > promos[best].DiscountPercent {
			best = i
		}
	}
	if best < 0 {
		return domain.Promotion{}, false
	}
	return promos[best], true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
