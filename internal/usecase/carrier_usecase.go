package usecase

import (
	"context"

	"shiprate-backend/internal/domain"

	"github.com/google/uuid"
)

// CarrierUsecase serves the browse endpoints from the catalog snapshot. Results
// are copies; callers may modify them freely.
type CarrierUsecase struct {
	snapshot *CatalogSnapshot
}

func NewCarrierUsecase(snapshot *CatalogSnapshot) *CarrierUsecase {
	return &CarrierUsecase{snapshot: snapshot}
}

// ListCarriers returns carrier summaries ordered as stored (by name). Inactive
// carriers are included only when includeInactive is set.
func (u *CarrierUsecase) ListCarriers(ctx context.Context, includeInactive bool) ([]domain.CarrierSummary, error) {
	cat, err := u.snapshot.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CarrierSummary, 0, len(cat.Carriers))
	for i := range cat.Carriers {
		if !includeInactive && !cat.Carriers[i].IsActive {
			continue
		}
		out = append(out, cat.Carriers[i].Summary())
	}
	return out, nil
}

// GetCarrier returns one carrier with its services, discounts and promotions.
// Tiers are left out; they are served per service.
func (u *CarrierUsecase) GetCarrier(ctx context.Context, id uuid.UUID) (*domain.Carrier, error) {
	cat, err := u.snapshot.Get(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := cat.FindCarrier(id)
	if !ok {
		return nil, domain.NotFound(domain.ErrCarrierNotFound, id.String())
	}
	out := *c
	out.Services = servicesWithoutTiers(c.Services)
	out.VolumeDiscounts = append([]domain.VolumeDiscountTier(nil), c.VolumeDiscounts...)
	out.Promotions = append([]domain.Promotion(nil), c.Promotions...)
	return &out, nil
}

// ListServices returns the services of a carrier without their tiers.
func (u *CarrierUsecase) ListServices(ctx context.Context, carrierID uuid.UUID) ([]domain.Service, error) {
	cat, err := u.snapshot.Get(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := cat.FindCarrier(carrierID)
	if !ok {
		return nil, domain.NotFound(domain.ErrCarrierNotFound, carrierID.String())
	}
	return servicesWithoutTiers(c.Services), nil
}

func servicesWithoutTiers(services []domain.Service) []domain.Service {
	out := make([]domain.Service, len(services))
	for i, s := range services {
		s.Tiers = nil
		s.Destinations = append([]domain.DestinationClass(nil), s.Destinations...)
		out[i] = s
	}
	return out
}
