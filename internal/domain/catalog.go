package domain

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Catalog is a read-only snapshot of every carrier with its services, tiers,
// volume discounts and promotions. Nothing that receives a Catalog mutates it.
type Catalog struct {
	Carriers []Carrier `json:"carriers"`
}

// FindCarrier returns the carrier with the given id.
func (c *Catalog) FindCarrier(id uuid.UUID) (*Carrier, bool) {
	for i := range c.Carriers {
		if c.Carriers[i].ID == id {
			return &c.Carriers[i], true
		}
	}
	return nil, false
}

// FindService returns the service with the given id and its owning carrier.
func (c *Catalog) FindService(id uuid.UUID) (*Carrier, *Service, bool) {
	for i := range c.Carriers {
		carrier := &c.Carriers[i]
		for j := range carrier.Services {
			if carrier.Services[j].ID == id {
				return carrier, &carrier.Services[j], true
			}
		}
	}
	return nil, nil, false
}

// Validate checks every invariant of the catalog and returns the first
// violation as a ValidationFailed error.
func (c *Catalog) Validate() error {
	names := make(map[string]bool, len(c.Carriers))
	for i := range c.Carriers {
		carrier := &c.Carriers[i]
		key := strings.ToLower(carrier.Name)
		if names[key] {
			return ValidationFailed("duplicate carrier name %q", carrier.Name)
		}
		names[key] = true
		if err := carrier.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Carrier) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationFailed("carrier name is required")
	}
	if c.FuelSurchargePercent < 0 || !isFinite(c.FuelSurchargePercent) {
		return ValidationFailed("carrier %s: fuel surcharge must be a non-negative number", c.Name)
	}

	codes := make(map[string]bool, len(c.Services))
	for i := range c.Services {
		s := &c.Services[i]
		if s.Code == "" {
			return ValidationFailed("carrier %s: service %q has no code", c.Name, s.Name)
		}
		if codes[s.Code] {
			return ValidationFailed("carrier %s: duplicate service code %q", c.Name, s.Code)
		}
		codes[s.Code] = true
		if s.DeliveryTimeMin != nil && s.DeliveryTimeMax != nil && *s.DeliveryTimeMin > *s.DeliveryTimeMax {
			return ValidationFailed("carrier %s: service %s has deliveryTimeMin above deliveryTimeMax", c.Name, s.Code)
		}
		for j := range s.Tiers {
			if err := s.Tiers[j].Validate(); err != nil {
				return ValidationFailed("carrier %s: service %s: %v", c.Name, s.Code, err)
			}
		}
		for j := range s.Tiers {
			for k := j + 1; k < len(s.Tiers); k++ {
				if a, b := &s.Tiers[j], &s.Tiers[k]; a.Overlaps(b) {
					return ValidationFailed("carrier %s: service %s: band %g-%g overlaps %g-%g",
						c.Name, s.Code, a.WeightMin, a.WeightMax, b.WeightMin, b.WeightMax)
				}
			}
		}
	}

	for _, v := range c.VolumeDiscounts {
		if v.MinVolume < 0 {
			return ValidationFailed("carrier %s: volume discount minVolume must be non-negative", c.Name)
		}
		if v.MaxVolume != nil && *v.MaxVolume < v.MinVolume {
			return ValidationFailed("carrier %s: volume discount maxVolume %d below minVolume %d", c.Name, *v.MaxVolume, v.MinVolume)
		}
		if v.DiscountPercent < 0 || !isFinite(v.DiscountPercent) {
			return ValidationFailed("carrier %s: volume discount percent must be non-negative", c.Name)
		}
	}

	for _, p := range c.Promotions {
		if p.EndDate.Before(p.StartDate) {
			return ValidationFailed("carrier %s: promotion %q ends before it starts", c.Name, p.Name)
		}
		if p.DiscountPercent < 0 || !isFinite(p.DiscountPercent) {
			return ValidationFailed("carrier %s: promotion %q discount must be non-negative", c.Name, p.Name)
		}
	}
	return nil
}

// Validate enforces weightMin < weightMax and purchasePrice <= retailPrice.
func (t *PriceTier) Validate() error {
	if !isFinite(t.WeightMin) || !isFinite(t.WeightMax) || t.WeightMin < 0 {
		return ValidationFailed("weight band must be finite and non-negative")
	}
	if t.WeightMin >= t.WeightMax {
		return ValidationFailed("weightMin %g must be less than weightMax %g", t.WeightMin, t.WeightMax)
	}
	if !isFinite(t.RetailPrice) || !isFinite(t.PurchasePrice) || t.RetailPrice < 0 || t.PurchasePrice < 0 {
		return ValidationFailed("prices must be non-negative numbers")
	}
	if t.PurchasePrice > t.RetailPrice {
		return ValidationFailed("purchase price %g exceeds retail price %g", t.PurchasePrice, t.RetailPrice)
	}
	switch t.Destination {
	case DestinationNational, DestinationEU, DestinationExtraEU:
	default:
		return ValidationFailed("unknown destination class %q", t.Destination)
	}
	return nil
}

// Overlaps reports whether both tiers could match the same weight for the same
// destination and country. Bands that only share a boundary do not overlap.
func (t *PriceTier) Overlaps(o *PriceTier) bool {
	return t.Destination == o.Destination &&
		t.CountryCode == o.CountryCode &&
		t.WeightMin < o.WeightMax && o.WeightMin < t.WeightMax
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
