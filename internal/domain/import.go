package domain

import "time"

// ImportBatch is a validated, grouped set of rows ready to be written to the
// catalog store. Carriers carry only the services and tiers found in the file.
type ImportBatch struct {
	Carriers []Carrier
	// Fields is parallel to Carriers. A nil slice means every field was set.
	Fields []CarrierFields
	Rows   int
}

// CarrierFields records which optional carrier columns a file set. An update
// keeps the stored value of every column the file left empty.
type CarrierFields struct {
	IsVolumetric  bool
	FuelSurcharge bool
	IsActive      bool
}

// FieldsOf returns the set columns of the i-th carrier.
func (b *ImportBatch) FieldsOf(i int) CarrierFields {
	if i >= len(b.Fields) {
		return CarrierFields{IsVolumetric: true, FuelSurcharge: true, IsActive: true}
	}
	return b.Fields[i]
}

// ImportRowError describes one rejected CSV row.
type ImportRowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

type ImportStats struct {
	CarriersCreated int `json:"carriersCreated"`
	CarriersUpdated int `json:"carriersUpdated"`
	ServicesCreated int `json:"servicesCreated"`
	ServicesUpdated int `json:"servicesUpdated"`
	TiersCreated    int `json:"tiersCreated"`
	TiersUpdated    int `json:"tiersUpdated"`
}

// ImportReport is returned to the caller of an import.
type ImportReport struct {
	File         string           `json:"file"`
	ArchiveURL   string           `json:"archiveUrl,omitempty"`
	RowsRead     int              `json:"rowsRead"`
	RowsImported int              `json:"rowsImported"`
	Stats        ImportStats      `json:"stats"`
	Errors       []ImportRowError `json:"errors"`
	FinishedAt   time.Time        `json:"finishedAt"`
}
