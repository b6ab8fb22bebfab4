package postgres

import (
	"context"
	"fmt"
	"time"

	"shiprate-backend/internal/domain"
	"shiprate-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepository{db: db}
}

const (
	listCarriers = `
SELECT id, name, logo_url, is_volumetric, fuel_surcharge_percent, is_active, created_at, updated_at
FROM carriers
ORDER BY name`

	listServices = `
SELECT id, carrier_id, code, name, description, delivery_time_min, delivery_time_max, destinations, is_active
FROM services
ORDER BY carrier_id, code`

	listPriceTiers = `
SELECT id, service_id, destination, country_code, weight_min, weight_max, retail_price, purchase_price
FROM price_tiers
ORDER BY service_id, weight_min, destination, country_code`

	listVolumeDiscounts = `
SELECT id, carrier_id, min_volume, max_volume, discount_percent, applicable_services
FROM volume_discount_tiers
ORDER BY carrier_id, created_at, id`

	listPromotions = `
SELECT id, carrier_id, name, description, discount_percent, start_date, end_date, applicable_services
FROM promotions
ORDER BY carrier_id, created_at, id`

	upsertCarrier = `
INSERT INTO carriers (name, logo_url, is_volumetric, fuel_surcharge_percent, is_active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT ((lower(name))) DO UPDATE SET
    logo_url = CASE WHEN EXCLUDED.logo_url <> '' THEN EXCLUDED.logo_url ELSE carriers.logo_url END,
    is_volumetric = CASE WHEN $6::boolean THEN EXCLUDED.is_volumetric ELSE carriers.is_volumetric END,
    fuel_surcharge_percent = CASE WHEN $7::boolean THEN EXCLUDED.fuel_surcharge_percent ELSE carriers.fuel_surcharge_percent END,
    is_active = CASE WHEN $8::boolean THEN EXCLUDED.is_active ELSE carriers.is_active END,
    updated_at = NOW()
RETURNING id, (xmax = 0) AS inserted`

	upsertService = `
INSERT INTO services (carrier_id, code, name, description, delivery_time_min, delivery_time_max, destinations, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (carrier_id, code) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    delivery_time_min = EXCLUDED.delivery_time_min,
    delivery_time_max = EXCLUDED.delivery_time_max,
    destinations = ARRAY(SELECT DISTINCT unnest(services.destinations || EXCLUDED.destinations)),
    is_active = EXCLUDED.is_active,
    updated_at = NOW()
RETURNING id, (xmax = 0) AS inserted`

	upsertPriceTier = `
INSERT INTO price_tiers (service_id, destination, country_code, weight_min, weight_max, retail_price, purchase_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (service_id, destination, country_code, weight_min, weight_max) DO UPDATE SET
    retail_price = EXCLUDED.retail_price,
    purchase_price = EXCLUDED.purchase_price,
    updated_at = NOW()
RETURNING (xmax = 0) AS inserted`
)

// LoadCatalog reads every table and stitches the snapshot together in memory.
func (r *catalogRepository) LoadCatalog(ctx context.Context) (*domain.Catalog, error) {
	start := time.Now()
	cat, err := r.loadCatalog(ctx)
	logger.DBQuery("load catalog", time.Since(start), err)
	return cat, err
}

func (r *catalogRepository) loadCatalog(ctx context.Context) (*domain.Catalog, error) {
	db := conn(ctx, r.db)
	cat := &domain.Catalog{Carriers: make([]domain.Carrier, 0)}
	carrierIdx := make(map[uuid.UUID]int)

	rows, err := db.Query(ctx, listCarriers)
	if err != nil {
		return nil, fmt.Errorf("query carriers: %w", err)
	}
	err = scanAll(rows, func(rows pgx.Rows) error {
		var (
			id               pgtype.UUID
			c                domain.Carrier
			fuel             pgtype.Numeric
			created, updated pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &c.Name, &c.LogoURL, &c.IsVolumetric, &fuel, &c.IsActive, &created, &updated); err != nil {
			return err
		}
		c.ID = pgUUID(id)
		c.FuelSurchargePercent = numericToFloat64(fuel)
		c.CreatedAt = pgtimeToTime(created)
		c.UpdatedAt = pgtimeToTime(updated)
		c.Services = make([]domain.Service, 0)
		c.VolumeDiscounts = make([]domain.VolumeDiscountTier, 0)
		c.Promotions = make([]domain.Promotion, 0)
		carrierIdx[c.ID] = len(cat.Carriers)
		cat.Carriers = append(cat.Carriers, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan carriers: %w", err)
	}

	type servicePos struct{ carrier, service int }
	serviceIdx := make(map[uuid.UUID]servicePos)

	rows, err = db.Query(ctx, listServices)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	err = scanAll(rows, func(rows pgx.Rows) error {
		var (
			id, carrierID pgtype.UUID
			s             domain.Service
			dMin, dMax    pgtype.Int4
			destinations  []string
		)
		if err := rows.Scan(&id, &carrierID, &s.Code, &s.Name, &s.Description, &dMin, &dMax, &destinations, &s.IsActive); err != nil {
			return err
		}
		ci, ok := carrierIdx[pgUUID(carrierID)]
		if !ok {
			return nil
		}
		s.ID = pgUUID(id)
		s.CarrierID = pgUUID(carrierID)
		s.DeliveryTimeMin = int4Ptr(dMin)
		s.DeliveryTimeMax = int4Ptr(dMax)
		s.Destinations = textToDestinations(destinations)
		s.Tiers = make([]domain.PriceTier, 0)
		serviceIdx[s.ID] = servicePos{ci, len(cat.Carriers[ci].Services)}
		cat.Carriers[ci].Services = append(cat.Carriers[ci].Services, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan services: %w", err)
	}

	rows, err = db.Query(ctx, listPriceTiers)
	if err != nil {
		return nil, fmt.Errorf("query price tiers: %w", err)
	}
	err = scanAll(rows, func(rows pgx.Rows) error {
		var (
			id, serviceID                pgtype.UUID
			t                            domain.PriceTier
			dest                         string
			wMin, wMax, retail, purchase pgtype.Numeric
		)
		if err := rows.Scan(&id, &serviceID, &dest, &t.CountryCode, &wMin, &wMax, &retail, &purchase); err != nil {
			return err
		}
		pos, ok := serviceIdx[pgUUID(serviceID)]
		if !ok {
			return nil
		}
		t.ID = pgUUID(id)
		t.ServiceID = pgUUID(serviceID)
		t.Destination = domain.DestinationClass(dest)
		t.WeightMin = numericToFloat64(wMin)
		t.WeightMax = numericToFloat64(wMax)
		t.RetailPrice = numericToFloat64(retail)
		t.PurchasePrice = numericToFloat64(purchase)
		svc := &cat.Carriers[pos.carrier].Services[pos.service]
		svc.Tiers = append(svc.Tiers, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan price tiers: %w", err)
	}

	rows, err = db.Query(ctx, listVolumeDiscounts)
	if err != nil {
		return nil, fmt.Errorf("query volume discounts: %w", err)
	}
	err = scanAll(rows, func(rows pgx.Rows) error {
		var (
			id, carrierID pgtype.UUID
			v             domain.VolumeDiscountTier
			maxVol        pgtype.Int4
			discount      pgtype.Numeric
		)
		if err := rows.Scan(&id, &carrierID, &v.MinVolume, &maxVol, &discount, &v.Services); err != nil {
			return err
		}
		ci, ok := carrierIdx[pgUUID(carrierID)]
		if !ok {
			return nil
		}
		v.ID = pgUUID(id)
		v.MaxVolume = int4Ptr(maxVol)
		v.DiscountPercent = numericToFloat64(discount)
		cat.Carriers[ci].VolumeDiscounts = append(cat.Carriers[ci].VolumeDiscounts, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan volume discounts: %w", err)
	}

	rows, err = db.Query(ctx, listPromotions)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	err = scanAll(rows, func(rows pgx.Rows) error {
		var (
			id, carrierID pgtype.UUID
			p             domain.Promotion
			discount      pgtype.Numeric
			start, end    pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &carrierID, &p.Name, &p.Description, &discount, &start, &end, &p.Services); err != nil {
			return err
		}
		ci, ok := carrierIdx[pgUUID(carrierID)]
		if !ok {
			return nil
		}
		p.ID = pgUUID(id)
		p.DiscountPercent = numericToFloat64(discount)
		p.StartDate = pgtimeToTime(start)
		p.EndDate = pgtimeToTime(end)
		cat.Carriers[ci].Promotions = append(cat.Carriers[ci].Promotions, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan promotions: %w", err)
	}

	return cat, nil
}

// ApplyImport upserts carriers by name, services by (carrier, code) and tiers
// by band. Rows already in the store but absent from the batch are left alone.
func (r *catalogRepository) ApplyImport(ctx context.Context, batch *domain.ImportBatch) (*domain.ImportStats, error) {
	db := conn(ctx, r.db)
	stats := &domain.ImportStats{}

	for i, c := range batch.Carriers {
		var (
			carrierID pgtype.UUID
			inserted  bool
		)
		set := batch.FieldsOf(i)
		err := db.QueryRow(ctx, upsertCarrier,
			c.Name, c.LogoURL, c.IsVolumetric, float64ToNumeric(c.FuelSurchargePercent), c.IsActive,
			set.IsVolumetric, set.FuelSurcharge, set.IsActive,
		).Scan(&carrierID, &inserted)
		if err != nil {
			return nil, fmt.Errorf("upsert carrier %s: %w", c.Name, err)
		}
		countUpsert(inserted, &stats.CarriersCreated, &stats.CarriersUpdated)

		for _, s := range c.Services {
			var serviceID pgtype.UUID
			err := db.QueryRow(ctx, upsertService,
				carrierID, s.Code, s.Name, s.Description,
				intPtrToInt4(s.DeliveryTimeMin), intPtrToInt4(s.DeliveryTimeMax),
				destinationsToText(s.Destinations), s.IsActive,
			).Scan(&serviceID, &inserted)
			if err != nil {
				return nil, fmt.Errorf("upsert service %s/%s: %w", c.Name, s.Code, err)
			}
			countUpsert(inserted, &stats.ServicesCreated, &stats.ServicesUpdated)

			for _, t := range s.Tiers {
				err := db.QueryRow(ctx, upsertPriceTier,
					serviceID, string(t.Destination), t.CountryCode,
					float64ToNumeric(t.WeightMin), float64ToNumeric(t.WeightMax),
					float64ToNumeric(t.RetailPrice), float64ToNumeric(t.PurchasePrice),
				).Scan(&inserted)
				if err != nil {
					return nil, fmt.Errorf("upsert tier %s/%s %g-%g: %w", c.Name, s.Code, t.WeightMin, t.WeightMax, err)
				}
				countUpsert(inserted, &stats.TiersCreated, &stats.TiersUpdated)
			}
		}
	}
	return stats, nil
}

func countUpsert(inserted bool, created, updated *int) {
	if inserted {
		*created++
	} else {
		*updated++
	}
}

// scanAll runs fn for every row and closes rows.
func scanAll(rows pgx.Rows, fn func(pgx.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
