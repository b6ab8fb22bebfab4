package importer

import (
	"fmt"
	"strings"

	"shiprate-backend/internal/domain"
)

type serviceGroup struct {
	service domain.Service
	// lines holds the sheet line of each tier in service.Tiers.
	lines []int
}

type carrierGroup struct {
	carrier  domain.Carrier
	fields   domain.CarrierFields
	services []*serviceGroup
	byCode   map[string]*serviceGroup
}

// grouper folds rows into carrier -> service -> tier in first-seen order.
type grouper struct {
	carriers []*carrierGroup
	byName   map[string]*carrierGroup
	rows     int
}

func newGrouper() *grouper {
	return &grouper{byName: make(map[string]*carrierGroup)}
}

func (g *grouper) add(r *row) *domain.ImportRowError {
	key := strings.ToLower(r.carrierName)
	cg, known := g.byName[key]

	if known && r.fuelSurcharge != nil && cg.fields.FuelSurcharge && cg.carrier.FuelSurchargePercent != *r.fuelSurcharge {
		return &domain.ImportRowError{
			Line:    r.line,
			Column:  colFuelSurcharge,
			Message: fmt.Sprintf("fuel surcharge %g conflicts with %g set earlier for %s", *r.fuelSurcharge, cg.carrier.FuelSurchargePercent, cg.carrier.Name),
		}
	}
	if known {
		if sg, ok := cg.byCode[r.serviceCode]; ok {
			if rowErr := sg.checkBand(r); rowErr != nil {
				return rowErr
			}
		}
	}

	if !known {
		cg = &carrierGroup{
			carrier: domain.Carrier{Name: r.carrierName, IsActive: true},
			byCode:  make(map[string]*serviceGroup),
		}
		g.byName[key] = cg
		g.carriers = append(g.carriers, cg)
	}

	// Carrier attributes come from the first row that sets them.
	c := &cg.carrier
	if c.LogoURL == "" {
		c.LogoURL = r.logoURL
	}
	if r.isVolumetric != nil && !cg.fields.IsVolumetric {
		c.IsVolumetric = *r.isVolumetric
		cg.fields.IsVolumetric = true
	}
	if r.carrierActive != nil && !cg.fields.IsActive {
		c.IsActive = *r.carrierActive
		cg.fields.IsActive = true
	}
	if r.fuelSurcharge != nil {
		c.FuelSurchargePercent = *r.fuelSurcharge
		cg.fields.FuelSurcharge = true
	}

	sg, ok := cg.byCode[r.serviceCode]
	if !ok {
		sg = &serviceGroup{
			service: domain.Service{
				Code:            r.serviceCode,
				Name:            r.serviceName,
				Description:     r.description,
				DeliveryTimeMin: r.deliveryMin,
				DeliveryTimeMax: r.deliveryMax,
				IsActive:        true,
			},
		}
		cg.byCode[r.serviceCode] = sg
		cg.services = append(cg.services, sg)
	}

	s := &sg.service
	if !s.Serves(r.tier.Destination) {
		s.Destinations = append(s.Destinations, r.tier.Destination)
	}
	s.Tiers = append(s.Tiers, r.tier)
	sg.lines = append(sg.lines, r.line)
	g.rows++
	return nil
}

// checkBand rejects a tier that could match the same weight as an earlier one.
func (sg *serviceGroup) checkBand(r *row) *domain.ImportRowError {
	for i := range sg.service.Tiers {
		prev := &sg.service.Tiers[i]
		if !prev.Overlaps(&r.tier) {
			continue
		}
		msg := fmt.Sprintf("band %g-%g for %s overlaps %g-%g on line %d",
			r.tier.WeightMin, r.tier.WeightMax, r.serviceCode, prev.WeightMin, prev.WeightMax, sg.lines[i])
		if prev.WeightMin == r.tier.WeightMin && prev.WeightMax == r.tier.WeightMax {
			msg = fmt.Sprintf("band %g-%g for %s duplicates line %d", r.tier.WeightMin, r.tier.WeightMax, r.serviceCode, sg.lines[i])
		}
		return &domain.ImportRowError{Line: r.line, Column: colWeightMin, Message: msg}
	}
	return nil
}

func (g *grouper) batch() *domain.ImportBatch {
	b := &domain.ImportBatch{
		Carriers: make([]domain.Carrier, 0, len(g.carriers)),
		Fields:   make([]domain.CarrierFields, 0, len(g.carriers)),
		Rows:     g.rows,
	}
	for _, cg := range g.carriers {
		b.Fields = append(b.Fields, cg.fields)
		c := cg.carrier
		c.Services = make([]domain.Service, 0, len(cg.services))
		for _, sg := range cg.services {
			c.Services = append(c.Services, sg.service)
		}
		b.Carriers = append(b.Carriers, c)
	}
	return b
}
