package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteQuery is the typed form of a rate comparison request. At is the
// evaluation instant for promotion windows and is always supplied by the caller.
type QuoteQuery struct {
	Weight        float64
	Destination   DestinationClass
	CountryCode   string
	MonthlyVolume *int
	At            time.Time

	// Optional narrowing of the scan.
	CarrierIDs       []uuid.UUID
	ServiceNames     []string
	MinMarginPercent *float64
}

// PriceQuote is the resolved price breakdown for one carrier service.
type PriceQuote struct {
	CarrierID       uuid.UUID        `json:"carrierId"`
	CarrierName     string           `json:"carrierName"`
	CarrierLogo     string           `json:"carrierLogo,omitempty"`
	ServiceID       uuid.UUID        `json:"serviceId"`
	ServiceCode     string           `json:"serviceCode"`
	ServiceName     string           `json:"serviceName"`
	DeliveryTimeMin *int             `json:"deliveryTimeMin,omitempty"`
	DeliveryTimeMax *int             `json:"deliveryTimeMax,omitempty"`
	Weight          float64          `json:"weight"`
	Destination     DestinationClass `json:"destinationType"`
	CountryCode     string           `json:"countryCode,omitempty"`

	TierID        uuid.UUID `json:"tierId"`
	WeightMin     float64   `json:"weightMin"`
	WeightMax     float64   `json:"weightMax"`
	RetailPrice   float64   `json:"basePrice"`
	PurchasePrice float64   `json:"purchasePrice"`

	FuelSurchargePercent     float64 `json:"fuelSurchargePercent"`
	FuelSurchargeAmount      float64 `json:"fuelSurcharge"`
	TotalBasePrice           float64 `json:"totalBasePrice"`
	VolumeDiscountPercent    float64 `json:"volumeDiscount"`
	PromotionDiscountPercent float64 `json:"promotionDiscount"`
	PromotionName            string  `json:"promotionName,omitempty"`
	TotalDiscountPercent     float64 `json:"totalDiscountPercentage"`
	FinalPrice               float64 `json:"finalPrice"`
	ActualMargin             float64 `json:"actualMarginAmount"`
	ActualMarginPercent      float64 `json:"actualMargin"`
}

// WeightBand is one row of the weight-band picker for a service.
type WeightBand struct {
	ID                  string  `json:"id"`
	Label               string  `json:"label"`
	Min                 float64 `json:"min"`
	Max                 float64 `json:"max"`
	BasePrice           float64 `json:"basePrice"`
	FinalPrice          float64 `json:"finalPrice"`
	ActualMarginPercent float64 `json:"actualMargin"`
	VolumeDiscount      float64 `json:"volumeDiscount"`
	PromotionDiscount   float64 `json:"promotionDiscount"`
}

type AdvisoryType string

const (
	AdvisoryMarginWarning   AdvisoryType = "margin_warning"
	AdvisoryActivePromotion AdvisoryType = "active_promotion"
	AdvisoryVolumeIncrease  AdvisoryType = "volume_increase"
)

// Advisory is a rule-based hint derived from the catalog for a given query.
type Advisory struct {
	Type        AdvisoryType `json:"type"`
	CarrierID   uuid.UUID    `json:"carrierId"`
	CarrierName string       `json:"carrierName"`
	Message     string       `json:"message"`

	// margin_warning
	ServiceCode   string   `json:"serviceCode,omitempty"`
	ServiceName   string   `json:"serviceName,omitempty"`
	CurrentMargin *float64 `json:"currentMargin,omitempty"`

	// active_promotion
	PromotionName      string     `json:"promotionName,omitempty"`
	DiscountPercentage *float64   `json:"discountPercentage,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`

	// volume_increase
	CurrentVolume     *int     `json:"currentVolume,omitempty"`
	CurrentDiscount   *float64 `json:"currentDiscount,omitempty"`
	SuggestedVolume   *int     `json:"suggestedVolume,omitempty"`
	SuggestedDiscount *float64 `json:"suggestedDiscount,omitempty"`
}
