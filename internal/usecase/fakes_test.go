package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"shiprate-backend/internal/domain"
	memcache "shiprate-backend/internal/infrastructure/cache"
	"shiprate-backend/pkg/metrics"

	"github.com/google/uuid"
)

var (
	carrierGLS = uuid.MustParse("6a1f0000-0000-4000-8000-000000000001")
	carrierOld = uuid.MustParse("6a1f0000-0000-4000-8000-000000000002")
	serviceNat = uuid.MustParse("6a1f0000-0000-4000-8000-000000000011")
)

type fakeRepo struct {
	mu       sync.Mutex
	catalog  *domain.Catalog
	loadErr  error
	loads    int
	applied  []*domain.ImportBatch
	applyErr error
	onLoad   func()
}

func (f *fakeRepo) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	if f.onLoad != nil {
		f.onLoad()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.catalog, nil
}

func (f *fakeRepo) ApplyImport(ctx context.Context, batch *domain.ImportBatch) (*domain.ImportStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Value(inTxKey{}) == nil {
		return nil, errors.New("ApplyImport called outside a transaction")
	}
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = append(f.applied, batch)
	stats := &domain.ImportStats{CarriersCreated: len(batch.Carriers)}
	for _, c := range batch.Carriers {
		for _, s := range c.Services {
			stats.ServicesCreated++
			stats.TiersCreated += len(s.Tiers)
		}
	}
	return stats, nil
}

func (f *fakeRepo) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type inTxKey struct{}

type fakeTxManager struct{ calls int }

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(context.WithValue(ctx, inTxKey{}, true))
}

type fakeArchiver struct {
	names []string
	err   error
}

func (a *fakeArchiver) Archive(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.names = append(a.names, name)
	return "https://files.example.com/imports/" + name, nil
}

func testCatalog() *domain.Catalog {
	maxVol := 499
	return &domain.Catalog{Carriers: []domain.Carrier{
		{
			ID:                   carrierGLS,
			Name:                 "GLS",
			FuelSurchargePercent: 4.8,
			IsActive:             true,
			Services: []domain.Service{{
				ID:           serviceNat,
				CarrierID:    carrierGLS,
				Code:         "GLS_NAT",
				Name:         "National",
				Destinations: []domain.DestinationClass{domain.DestinationNational},
				IsActive:     true,
				Tiers: []domain.PriceTier{
					{ID: uuid.New(), Destination: domain.DestinationNational, WeightMin: 5, WeightMax: 10, RetailPrice: 7.73, PurchasePrice: 6.5},
					{ID: uuid.New(), Destination: domain.DestinationNational, WeightMin: 0, WeightMax: 5, RetailPrice: 5, PurchasePrice: 4},
				},
			}},
			VolumeDiscounts: []domain.VolumeDiscountTier{
				{MinVolume: 100, MaxVolume: &maxVol, DiscountPercent: 10},
				{MinVolume: 500, DiscountPercent: 15},
			},
			Promotions: []domain.Promotion{{
				Name:            "Summer",
				DiscountPercent: 5,
				StartDate:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				EndDate:         time.Date(2024, 8, 31, 23, 59, 59, 0, time.UTC),
			}},
		},
		{
			ID:       carrierOld,
			Name:     "Legacy Post",
			IsActive: false,
		},
	}}
}

func newTestSnapshot(repo *fakeRepo) *CatalogSnapshot {
	return NewCatalogSnapshot(repo, memcache.NewMemoryCache(time.Minute, time.Minute), time.Minute, metrics.New("test"))
}
