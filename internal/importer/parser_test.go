package importer

import (
	"errors"
	"strings"
	"testing"

	"shiprate-backend/internal/domain"
)

const header = "carrier_name;logo_url;is_volumetric;fuel_surcharge;is_active;service_name;service_code;service_description;delivery_time_min;delivery_time_max;destination_type;destination_country;weight_min;weight_max;purchase_price;retail_price\n"

func TestParse_GroupsRows(t *testing.T) {
	sheet := header +
		"GLS;https://cdn.example.com/gls.png;true;4,8;true;National Express;GLS_NAT_EXP;Next day;24;48;national;;0;5;4,10;5,20\n" +
		"GLS;;;4.8;;National Express;GLS_NAT_EXP;;;;national;;5;10;6.50;7.73\n" +
		"GLS;;;;;Europe;GLS_EU;;;;eu;DE;0;10;10;14\n" +
		"GLS;;;;;Europe;GLS_EU;;;;international;;0;10;12;16\n" +
		"BRT;;;0;false;Standard;BRT_STD;;;;extra-eu;;0;30;20;31,5\n"

	res, err := Parse(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected row errors: %+v", res.Errors)
	}
	if res.RowsRead != 5 || res.Batch.Rows != 5 {
		t.Fatalf("rows read %d, imported %d, want 5", res.RowsRead, res.Batch.Rows)
	}
	if len(res.Batch.Carriers) != 2 {
		t.Fatalf("expected 2 carriers, got %d", len(res.Batch.Carriers))
	}

	gls := res.Batch.Carriers[0]
	if gls.Name != "GLS" || gls.FuelSurchargePercent != 4.8 || !gls.IsVolumetric || !gls.IsActive {
		t.Fatalf("unexpected carrier: %+v", gls)
	}
	if gls.LogoURL != "https://cdn.example.com/gls.png" {
		t.Fatalf("logo not kept: %q", gls.LogoURL)
	}
	if len(gls.Services) != 2 {
		t.Fatalf("expected 2 GLS services, got %d", len(gls.Services))
	}
	nat := gls.Services[0]
	if nat.Code != "GLS_NAT_EXP" || len(nat.Tiers) != 2 || *nat.DeliveryTimeMin != 24 || *nat.DeliveryTimeMax != 48 {
		t.Fatalf("unexpected service: %+v", nat)
	}
	if nat.Tiers[0].RetailPrice != 5.2 || nat.Tiers[0].PurchasePrice != 4.1 {
		t.Fatalf("comma decimals not parsed: %+v", nat.Tiers[0])
	}
	eu := gls.Services[1]
	if len(eu.Destinations) != 1 || eu.Destinations[0] != domain.DestinationEU {
		t.Fatalf("expected only eu destination, got %v", eu.Destinations)
	}
	if eu.Tiers[0].CountryCode != "DE" || eu.Tiers[1].CountryCode != "" {
		t.Fatalf("unexpected country codes: %+v", eu.Tiers)
	}

	brt := res.Batch.Carriers[1]
	if brt.IsActive || brt.Services[0].Destinations[0] != domain.DestinationExtraEU || brt.Services[0].Tiers[0].RetailPrice != 31.5 {
		t.Fatalf("unexpected BRT carrier: %+v", brt)
	}

	c := domain.Catalog{Carriers: res.Batch.Carriers}
	if err := c.Validate(); err != nil {
		t.Fatalf("imported batch does not validate: %v", err)
	}
}

func TestParse_RowErrors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		column string
	}{
		{"missing carrier", ";;;;;S;S1;;;;national;;0;5;1;2", colCarrierName},
		{"missing service code", "C;;;;;S;;;;;national;;0;5;1;2", colServiceCode},
		{"missing destination", "C;;;;;S;S1;;;;;;0;5;1;2", colDestinationType},
		{"unknown destination", "C;;;;;S;S1;;;;moon;;0;5;1;2", colDestinationType},
		{"bad country", "C;;;;;S;S1;;;;eu;Germany;0;5;1;2", colDestinationCountry},
		{"non-numeric weight", "C;;;;;S;S1;;;;national;;zero;5;1;2", colWeightMin},
		{"non-numeric price", "C;;;;;S;S1;;;;national;;0;5;1;two", colRetailPrice},
		{"missing price", "C;;;;;S;S1;;;;national;;0;5;;2", colPurchasePrice},
		{"empty band", "C;;;;;S;S1;;;;national;;5;5;1;2", colWeightMax},
		{"inverted band", "C;;;;;S;S1;;;;national;;6;5;1;2", colWeightMax},
		{"purchase above retail", "C;;;;;S;S1;;;;national;;0;5;2,01;2", colPurchasePrice},
		{"negative surcharge", "C;;;-1;;S;S1;;;;national;;0;5;1;2", colFuelSurcharge},
		{"bad boolean", "C;;maybe;;;S;S1;;;;national;;0;5;1;2", colIsVolumetric},
		{"inverted delivery window", "C;;;;;S;S1;;48;24;national;;0;5;1;2", colDeliveryTimeMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(header + tt.line + "\n"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Errors) != 1 {
				t.Fatalf("expected one row error, got %+v", res.Errors)
			}
			got := res.Errors[0]
			if got.Line != 2 || got.Column != tt.column {
				t.Fatalf("error at line %d column %q, want line 2 column %q (%s)", got.Line, got.Column, tt.column, got.Message)
			}
			if res.Batch.Rows != 0 || len(res.Batch.Carriers) != 0 {
				t.Fatalf("rejected row made it into the batch: %+v", res.Batch)
			}
		})
	}
}

func TestParse_KeepsValidRowsAroundErrors(t *testing.T) {
	sheet := header +
		"GLS;;;4.8;;N;GLS_N;;;;national;;0;5;4;5\n" +
		"GLS;;;4.8;;N;GLS_N;;;;national;;0;5;4;5\n" +
		"\n" +
		"GLS;;;5.2;;N;GLS_N;;;;national;;5;10;6;7\n" +
		"GLS;;;;;N;GLS_N;;;;national;;5;10;6,5;7,73\n"

	res, err := Parse(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowsRead != 4 || res.Batch.Rows != 2 {
		t.Fatalf("rows read %d, imported %d", res.RowsRead, res.Batch.Rows)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected duplicate band and surcharge conflict, got %+v", res.Errors)
	}
	if res.Errors[0].Line != 3 || res.Errors[1].Line != 5 {
		t.Fatalf("unexpected error lines: %+v", res.Errors)
	}
}

func TestParse_HeaderProblems(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty file: expected invalid input, got %v", err)
	}
	_, err := Parse(strings.NewReader("carrier_name;service_code\nGLS;X\n"))
	if !errors.Is(err, domain.ErrInvalidInput) || !strings.Contains(err.Error(), "weight_min") {
		t.Fatalf("missing columns: got %v", err)
	}

	// Column order and case do not matter; a BOM on the first header is ignored.
	sheet := "\ufeffRETAIL_PRICE;Carrier_Name;service_code;destination_type;weight_min;weight_max;purchase_price\n" +
		"9;GLS;X;national;0;1;8\n"
	res, err := Parse(strings.NewReader(sheet))
	if err != nil || len(res.Errors) != 0 || res.Batch.Rows != 1 {
		t.Fatalf("reordered header: %+v %v", res, err)
	}
	if res.Batch.Carriers[0].Services[0].Name != "X" {
		t.Fatalf("service name should default to the code")
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7.73", "7.73", true},
		{"7,73", "7.73", true},
		{"1.234,56", "1234.56", true},
		{" 12 ", "12", true},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		d, err := parseDecimal(tt.in)
		if tt.ok != (err == nil) {
			t.Fatalf("parseDecimal(%q) error = %v", tt.in, err)
		}
		if tt.ok && d.String() != tt.want {
			t.Fatalf("parseDecimal(%q) = %s, want %s", tt.in, d.String(), tt.want)
		}
	}
}

func TestParse_OverlappingBands(t *testing.T) {
	sheet := header +
		"GLS;;;4.8;;Express;EXP;;;;national;;0;10;3;4\n" +
		"GLS;;;4.8;;Express;EXP;;;;national;;5;15;8;9\n" +
		"GLS;;;4.8;;Express;EXP;;;;national;;10;20;8;9\n" +
		"GLS;;;4.8;;Express;EXP;;;;national;IT;5;15;8;9\n" +
		"GLS;;;4.8;;Express;EXP;;;;eu;;5;15;8;9\n"

	res, err := Parse(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected one overlap error, got %+v", res.Errors)
	}
	got := res.Errors[0]
	if got.Line != 3 || got.Column != colWeightMin || !strings.Contains(got.Message, "overlaps 0-10 on line 2") {
		t.Fatalf("unexpected overlap error: %+v", got)
	}
	if res.Batch.Rows != 4 || len(res.Batch.Carriers[0].Services[0].Tiers) != 4 {
		t.Fatalf("expected the touching, country and eu bands to stay, got %+v", res.Batch)
	}

	c := domain.Catalog{Carriers: res.Batch.Carriers}
	if err := c.Validate(); err != nil {
		t.Fatalf("imported batch does not validate: %v", err)
	}
}

func TestParse_FuelSurchargeConflicts(t *testing.T) {
	tests := []struct {
		name  string
		first string
		then  string
		want  float64
	}{
		{"set then zero", "4.8", "0", 4.8},
		{"zero then set", "0", "4.8", 0},
		{"set then unset", "4.8", "", 4.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := header +
				"GLS;;;" + tt.first + ";;N;GLS_N;;;;national;;0;5;4;5\n" +
				"GLS;;;" + tt.then + ";;N;GLS_N;;;;national;;5;10;6;7\n"
			res, err := Parse(strings.NewReader(sheet))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wantErrors := 1
			if tt.then == "" {
				wantErrors = 0
			}
			if len(res.Errors) != wantErrors {
				t.Fatalf("expected %d row errors, got %+v", wantErrors, res.Errors)
			}
			if wantErrors == 1 && (res.Errors[0].Line != 3 || res.Errors[0].Column != colFuelSurcharge) {
				t.Fatalf("unexpected error: %+v", res.Errors[0])
			}
			if got := res.Batch.Carriers[0].FuelSurchargePercent; got != tt.want {
				t.Fatalf("fuel surcharge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_RecordsSetCarrierFields(t *testing.T) {
	sheet := header +
		"GLS;;;;;N;GLS_N;;;;national;;0;5;4;5\n" +
		"GLS;;false;;;N;GLS_N;;;;national;;5;10;6;7\n" +
		"BRT;;;3;0;S;BRT_S;;;;national;;0;5;4;5\n"

	res, err := Parse(strings.NewReader(sheet))
	if err != nil || len(res.Errors) != 0 {
		t.Fatalf("unexpected result: %+v %v", res, err)
	}
	want := []domain.CarrierFields{
		{IsVolumetric: true},
		{FuelSurcharge: true, IsActive: true},
	}
	for i, w := range want {
		if got := res.Batch.FieldsOf(i); got != w {
			t.Fatalf("carrier %d fields = %+v, want %+v", i, got, w)
		}
	}
	if gls := res.Batch.Carriers[0]; !gls.IsActive || gls.IsVolumetric {
		t.Fatalf("unset columns should keep defaults: %+v", gls)
	}
	if brt := res.Batch.Carriers[1]; brt.IsActive || brt.FuelSurchargePercent != 3 {
		t.Fatalf("unexpected BRT carrier: %+v", brt)
	}
}
