package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DestinationClass is the coarse shipping zone a tier or service applies to.
type DestinationClass string

const (
	DestinationNational DestinationClass = "national"
	DestinationEU       DestinationClass = "eu"
	DestinationExtraEU  DestinationClass = "extra_eu"
)

var DestinationClasses = []DestinationClass{
	DestinationNational,
	DestinationEU,
	DestinationExtraEU,
}

// ParseDestinationClass accepts the canonical names plus the legacy
// "international" spelling used by older rate sheets.
func ParseDestinationClass(s string) (DestinationClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "national":
		return DestinationNational, nil
	case "eu", "international":
		return DestinationEU, nil
	case "extra_eu", "extra-eu", "extraeu":
		return DestinationExtraEU, nil
	}
	return "", InvalidInput("unknown destination class %q", s)
}

// NormalizeCountryCode upper-cases and trims an ISO country code.
func NormalizeCountryCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type Carrier struct {
	ID                   uuid.UUID            `json:"id"`
	Name                 string               `json:"name"`
	LogoURL              string               `json:"logoUrl,omitempty"`
	IsVolumetric         bool                 `json:"isVolumetric"`
	FuelSurchargePercent float64              `json:"fuelSurchargePercent"`
	IsActive             bool                 `json:"isActive"`
	Services             []Service            `json:"services"`
	VolumeDiscounts      []VolumeDiscountTier `json:"volumeDiscounts"`
	Promotions           []Promotion          `json:"promotions"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

type Service struct {
	ID              uuid.UUID          `json:"id"`
	CarrierID       uuid.UUID          `json:"carrierId"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	DeliveryTimeMin *int               `json:"deliveryTimeMin,omitempty"`
	DeliveryTimeMax *int               `json:"deliveryTimeMax,omitempty"`
	Destinations    []DestinationClass `json:"destinations"`
	IsActive        bool               `json:"isActive"`
	Tiers           []PriceTier        `json:"tiers,omitempty"`
}

// Serves reports whether the service ships to the destination class.
func (s *Service) Serves(dest DestinationClass) bool {
	for _, d := range s.Destinations {
		if d == dest {
			return true
		}
	}
	return false
}

// PriceTier is a closed weight band [WeightMin, WeightMax] for one destination.
// An empty CountryCode means the tier applies to every country of the class.
type PriceTier struct {
	ID            uuid.UUID        `json:"id"`
	ServiceID     uuid.UUID        `json:"serviceId"`
	Destination   DestinationClass `json:"destination"`
	CountryCode   string           `json:"countryCode,omitempty"`
	WeightMin     float64          `json:"weightMin"`
	WeightMax     float64          `json:"weightMax"`
	RetailPrice   float64          `json:"retailPrice"`
	PurchasePrice float64          `json:"purchasePrice"`
}

func (t *PriceTier) Contains(weight float64) bool {
	return weight >= t.WeightMin && weight <= t.WeightMax
}

// VolumeDiscountTier applies to monthly volumes in [MinVolume, MaxVolume];
// a nil MaxVolume is open-ended. An empty Services list applies to all services.
type VolumeDiscountTier struct {
	ID              uuid.UUID `json:"id"`
	MinVolume       int       `json:"minVolume"`
	MaxVolume       *int      `json:"maxVolume,omitempty"`
	DiscountPercent float64   `json:"discountPercent"`
	Services        []string  `json:"applicableServices,omitempty"`
}

func (v *VolumeDiscountTier) Covers(volume int) bool {
	if volume < v.MinVolume {
		return false
	}
	return v.MaxVolume == nil || volume <= *v.MaxVolume
}

func (v *VolumeDiscountTier) AppliesTo(serviceCode string) bool {
	return appliesTo(v.Services, serviceCode)
}

type Promotion struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DiscountPercent float64   `json:"discountPercent"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Services        []string  `json:"applicableServices,omitempty"`
}

// ActiveAt reports whether at falls inside the inclusive [StartDate, EndDate] window.
func (p *Promotion) ActiveAt(at time.Time) bool {
	return !at.Before(p.StartDate) && !at.After(p.EndDate)
}

func (p *Promotion) AppliesTo(serviceCode string) bool {
	return appliesTo(p.Services, serviceCode)
}

func appliesTo(allow []string, code string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, c := range allow {
		if c == code {
			return true
		}
	}
	return false
}

// CarrierSummary is the list view of a carrier.
type CarrierSummary struct {
	ID                   uuid.UUID          `json:"id"`
	Name                 string             `json:"name"`
	LogoURL              string             `json:"logoUrl,omitempty"`
	IsVolumetric         bool               `json:"isVolumetric"`
	FuelSurchargePercent float64            `json:"fuelSurchargePercent"`
	IsActive             bool               `json:"isActive"`
	ServiceCount         int                `json:"serviceCount"`
	Destinations         []DestinationClass `json:"destinations"`
}

// Summary lists the carrier with the destinations its active services reach.
func (c *Carrier) Summary() CarrierSummary {
	s := CarrierSummary{
		ID:                   c.ID,
		Name:                 c.Name,
		LogoURL:              c.LogoURL,
		IsVolumetric:         c.IsVolumetric,
		FuelSurchargePercent: c.FuelSurchargePercent,
		IsActive:             c.IsActive,
		Destinations:         make([]DestinationClass, 0, len(DestinationClasses)),
	}
	for _, d := range DestinationClasses {
		for i := range c.Services {
			if c.Services[i].IsActive && c.Services[i].Serves(d) {
				s.Destinations = append(s.Destinations, d)
				break
			}
		}
	}
	for i := range c.Services {
		if c.Services[i].IsActive {
			s.ServiceCount++
		}
	}
	return s
}

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// CatalogRepository loads and stores the carrier catalog. ApplyImport is
// expected to run inside TransactionManager.Do.
type CatalogRepository interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
	ApplyImport(ctx context.Context, batch *ImportBatch) (*ImportStats, error)
}
