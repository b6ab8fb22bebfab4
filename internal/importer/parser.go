// Package importer turns semicolon-separated rate sheets into an import batch.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shiprate-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	colCarrierName        = "carrier_name"
	colLogoURL            = "logo_url"
	colIsVolumetric       = "is_volumetric"
	colFuelSurcharge      = "fuel_surcharge"
	colIsActive           = "is_active"
	colServiceName        = "service_name"
	colServiceCode        = "service_code"
	colServiceDescription = "service_description"
	colDeliveryTimeMin    = "delivery_time_min"
	colDeliveryTimeMax    = "delivery_time_max"
	colDestinationType    = "destination_type"
	colDestinationCountry = "destination_country"
	colWeightMin          = "weight_min"
	colWeightMax          = "weight_max"
	colPurchasePrice      = "purchase_price"
	colRetailPrice        = "retail_price"
)

// Columns is the header of a rate sheet in file order.
var Columns = []string{
	colCarrierName, colLogoURL, colIsVolumetric, colFuelSurcharge, colIsActive,
	colServiceName, colServiceCode, colServiceDescription, colDeliveryTimeMin, colDeliveryTimeMax,
	colDestinationType, colDestinationCountry, colWeightMin, colWeightMax, colPurchasePrice, colRetailPrice,
}

var requiredColumns = []string{
	colCarrierName, colServiceCode, colDestinationType,
	colWeightMin, colWeightMax, colPurchasePrice, colRetailPrice,
}

// Result is the outcome of parsing one file. Batch holds only the rows that
// passed every check; Errors lists the rejected ones.
type Result struct {
	Batch    *domain.ImportBatch
	RowsRead int
	Errors   []domain.ImportRowError
}

// Parse reads a rate sheet. A malformed header or an unreadable stream fails the
// whole file; problems in individual rows are collected in Result.Errors.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.InvalidInput("import file is empty")
	}
	if err != nil {
		return nil, domain.InvalidInput("reading header: %v", err)
	}
	index, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	res := &Result{Errors: make([]domain.ImportRowError, 0)}
	g := newGrouper()
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			res.RowsRead++
			res.Errors = append(res.Errors, domain.ImportRowError{Line: perr.Line, Message: perr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading import file: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		res.RowsRead++

		row, rowErr := parseRow(line, rowView{index: index, record: record})
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		if rowErr := g.add(row); rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
		}
	}

	res.Batch = g.batch()
	return res, nil
}

func indexHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "" {
			continue
		}
		index[name] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, domain.InvalidInput("import header is missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type rowView struct {
	index  map[string]int
	record []string
}

func (v rowView) get(col string) string {
	i, ok := v.index[col]
	if !ok || i >= len(v.record) {
		return ""
	}
	return strings.TrimSpace(v.record[i])
}

// row is one fully parsed line of the sheet.
type row struct {
	line int

	carrierName   string
	logoURL       string
	isVolumetric  *bool
	fuelSurcharge *float64
	carrierActive *bool

	serviceCode string
	serviceName string
	description string
	deliveryMin *int
	deliveryMax *int

	tier domain.PriceTier
}

func parseRow(line int, v rowView) (*row, *domain.ImportRowError) {
	fail := func(col, format string, args ...interface{}) *domain.ImportRowError {
		return &domain.ImportRowError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
	}

	r := &row{
		line:        line,
		carrierName: v.get(colCarrierName),
		logoURL:     v.get(colLogoURL),
		serviceCode: v.get(colServiceCode),
		serviceName: v.get(colServiceName),
		description: v.get(colServiceDescription),
	}
	if r.carrierName == "" {
		return nil, fail(colCarrierName, "carrier name is required")
	}
	if r.serviceCode == "" {
		return nil, fail(colServiceCode, "service code is required")
	}
	if r.serviceName == "" {
		r.serviceName = r.serviceCode
	}

	var err error
	if r.isVolumetric, err = parseOptionalBool(v.get(colIsVolumetric)); err != nil {
		return nil, fail(colIsVolumetric, "%v", err)
	}
	if r.carrierActive, err = parseOptionalBool(v.get(colIsActive)); err != nil {
		return nil, fail(colIsActive, "%v", err)
	}
	if raw := v.get(colFuelSurcharge); raw != "" {
		d, err := parseDecimal(raw)
		if err != nil {
			return nil, fail(colFuelSurcharge, "%v", err)
		}
		if d.IsNegative() {
			return nil, fail(colFuelSurcharge, "fuel surcharge must not be negative")
		}
		f := d.InexactFloat64()
		r.fuelSurcharge = &f
	}
	if r.deliveryMin, err = parseOptionalInt(v.get(colDeliveryTimeMin)); err != nil {
		return nil, fail(colDeliveryTimeMin, "%v", err)
	}
	if r.deliveryMax, err = parseOptionalInt(v.get(colDeliveryTimeMax)); err != nil {
		return nil, fail(colDeliveryTimeMax, "%v", err)
	}
	if r.deliveryMin != nil && r.deliveryMax != nil && *r.deliveryMin > *r.deliveryMax {
		return nil, fail(colDeliveryTimeMax, "delivery_time_max must not be below delivery_time_min")
	}

	rawDest := v.get(colDestinationType)
	if rawDest == "" {
		return nil, fail(colDestinationType, "destination type is required")
	}
	dest, err := domain.ParseDestinationClass(rawDest)
	if err != nil {
		return nil, fail(colDestinationType, "unknown destination type %q", rawDest)
	}
	country := domain.NormalizeCountryCode(v.get(colDestinationCountry))
	if country != "" && !isCountryCode(country) {
		return nil, fail(colDestinationCountry, "country must be a two-letter ISO code, got %q", country)
	}

	amounts := make(map[string]decimal.Decimal, 4)
	for _, col := range []string{colWeightMin, colWeightMax, colPurchasePrice, colRetailPrice} {
		raw := v.get(col)
		if raw == "" {
			return nil, fail(col, "%s is required", col)
		}
		d, err := parseDecimal(raw)
		if err != nil {
			return nil, fail(col, "%v", err)
		}
		if d.IsNegative() {
			return nil, fail(col, "%s must not be negative", col)
		}
		amounts[col] = d
	}
	if !amounts[colWeightMin].LessThan(amounts[colWeightMax]) {
		return nil, fail(colWeightMax, "weight_min %s must be less than weight_max %s",
			amounts[colWeightMin], amounts[colWeightMax])
	}
	if amounts[colPurchasePrice].GreaterThan(amounts[colRetailPrice]) {
		return nil, fail(colPurchasePrice, "purchase_price %s exceeds retail_price %s",
			amounts[colPurchasePrice], amounts[colRetailPrice])
	}

	r.tier = domain.PriceTier{
		Destination:   dest,
		CountryCode:   country,
		WeightMin:     amounts[colWeightMin].InexactFloat64(),
		WeightMax:     amounts[colWeightMax].InexactFloat64(),
		PurchasePrice: amounts[colPurchasePrice].InexactFloat64(),
		RetailPrice:   amounts[colRetailPrice].InexactFloat64(),
	}
	return r, nil
}

// parseDecimal accepts "7.73", "7,73" and "1.234,56".
func parseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	return d, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	var b bool
	switch strings.ToLower(raw) {
	case "":
		return nil, nil
	case "1", "true", "yes", "y", "si", "x":
		b = true
	case "0", "false", "no", "n":
		b = false
	default:
		return nil, fmt.Errorf("%q is not a boolean", raw)
	}
	return &b, nil
}

func parseOptionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%q is not a non-negative integer", raw)
	}
	return &n, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
