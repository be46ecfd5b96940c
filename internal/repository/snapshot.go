package repository

import (
	"fmt"
	"time"

	"github.com/AtSheen/efg/internal/models"
)

// Tables is the decoded content of the nine reference resources.
type Tables struct {
	CategoricalConfig  models.CategoricalConfig
	LegalEntities      *models.Table
	TaxCodeInfo        *models.Table
	TaxCodeDescription *models.Table
	CompanyCodeInfo    *models.Table
	VendorInfo         *models.Table
	AttentionList      *models.Table
	IPVatIssues        *models.Table
	HistoricalMeta     *models.Table
}

// Snapshot is an immutable, fully indexed view of the reference data.
// It is safe for concurrent use.
type Snapshot struct {
	companies      map[string]models.CompanyRecord
	vendors        map[string]models.VendorRecord
	legalCompanies map[string]struct{}
	legalVendors   map[string]struct{}

	categorical  models.CategoricalConfig
	catalog      []models.TaxCodeCatalogRow
	descriptions *models.Table

	attentionList  *models.Table
	ipVatIssues    *models.Table
	historicalMeta *models.Table

	loadedAt time.Time
}

// NewSnapshot validates the tables and builds the lookup indexes.
// Report tables may be nil and are then served empty.
func NewSnapshot(t Tables, loadedAt time.Time) (*Snapshot, error) {
	checks := []struct {
		key   string
		table *models.Table
	}{
		{LegalEntitiesResource.Key, t.LegalEntities},
		{TaxCodeInfoResource.Key, t.TaxCodeInfo},
		{TaxCodeDescriptionResource.Key, t.TaxCodeDescription},
		{CompanyCodeInfoResource.Key, t.CompanyCodeInfo},
		{VendorInfoResource.Key, t.VendorInfo},
	}
	for _, c := range checks {
		if c.table == nil {
			return nil, fmt.Errorf("%s: table is missing", c.key)
		}
		for _, col := range requiredColumns[c.key] {
			if !c.table.HasColumn(col) {
				return nil, fmt.Errorf("%s: missing required column %q", c.key, col)
			}
		}
	}
	if err := t.CategoricalConfig.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", CategoricalConfigResource.Key, err)
	}

	s := &Snapshot{
		companies:      indexCompanies(t.CompanyCodeInfo),
		vendors:        indexVendors(t.VendorInfo),
		legalCompanies: columnSet(t.LegalEntities, ColCompanyCode),
		legalVendors:   columnSet(t.LegalEntities, ColVendorNumber),
		categorical:    t.CategoricalConfig,
		catalog:        catalogRows(t.TaxCodeInfo),
		descriptions:   t.TaxCodeDescription,
		attentionList:  orEmpty(t.AttentionList),
		ipVatIssues:    orEmpty(t.IPVatIssues),
		historicalMeta: orEmpty(t.HistoricalMeta),
		loadedAt:       loadedAt,
	}
	return s, nil
}

// indexCompanies keys companies by the string form of their code.
// The first row wins when a code repeats.
func indexCompanies(table *models.Table) map[string]models.CompanyRecord {
	out := make(map[string]models.CompanyRecord, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		code := row.Get(ColCompanyCode)
		if code.IsNull() {
			continue
		}
		key := code.String()
		if _, seen := out[key]; seen {
			continue
		}

		rec := models.CompanyRecord{
			CompanyCode:      key,
			ReportingCountry: countryOf(row.Get(ColReportingCountry)),
		}
		if name := row.Get(ColCompanyName); !name.IsNull() {
			s := name.String()
			rec.CompanyName = &s
		}
		out[key] = rec
	}
	return out
}

// indexVendors keys vendors by the string form of their number.
func indexVendors(table *models.Table) map[string]models.VendorRecord {
	out := make(map[string]models.VendorRecord, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		number := row.Get(ColVendor)
		if number.IsNull() {
			continue
		}
		key := number.String()
		if _, seen := out[key]; seen {
			continue
		}

		rec := models.VendorRecord{
			VendorNumber: key,
			CountryKey:   countryOf(row.Get(ColCountryKey)),
		}
		if name := row.Get(ColVendorName); !name.IsNull() {
			rec.VendorName = name.String()
		}
		out[key] = rec
	}
	return out
}

func countryOf(cell models.Cell) models.Country {
	if cell.IsNull() {
		return models.UnknownCountry
	}
	return models.KnownCountry(cell.String())
}

func columnSet(table *models.Table, column string) map[string]struct{} {
	cells := table.Column(column)
	out := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		out[c.String()] = struct{}{}
	}
	return out
}

func catalogRows(table *models.Table) []models.TaxCodeCatalogRow {
	rows := make([]models.TaxCodeCatalogRow, table.Len())
	for i := range rows {
		row := table.Row(i)
		rows[i] = models.TaxCodeCatalogRow{
			Country:              row.Get(ColCountry).String(),
			TaxCode:              row.Get(ColTaxCode).String(),
			GoodsServices:        row.Get(ColGoodsServices).String(),
			ReverseCharge:        row.Get(ColReverseCharge).String(),
			VATRateInInvoiceCopy: row.Get(ColVATRateInInvoiceCopy).String(),
		}
	}
	return rows
}

func orEmpty(t *models.Table) *models.Table {
	if t == nil {
		return models.NewTable(nil, nil)
	}
	return t
}

// Company returns the company with the given code.
func (s *Snapshot) Company(code string) (models.CompanyRecord, bool) {
	rec, ok := s.companies[code]
	return rec, ok
}

// Vendor returns the vendor with the given number.
func (s *Snapshot) Vendor(number string) (models.VendorRecord, bool) {
	rec, ok := s.vendors[number]
	return rec, ok
}

// CompanyInLegalEntities reports whether code appears anywhere in the
// legal-entity table's company column.
func (s *Snapshot) CompanyInLegalEntities(code string) bool {
	_, ok := s.legalCompanies[code]
	return ok
}

// VendorInLegalEntities reports whether number appears anywhere in the
// legal-entity table's vendor column. It is not linked to the company check.
func (s *Snapshot) VendorInLegalEntities(number string) bool {
	_, ok := s.legalVendors[number]
	return ok
}

func (s *Snapshot) CategoricalConfig() models.CategoricalConfig { return s.categorical }

// TaxCodeCatalog returns the filterable catalog rows. Callers must not modify the slice.
func (s *Snapshot) TaxCodeCatalog() []models.TaxCodeCatalogRow { return s.catalog }

func (s *Snapshot) TaxCodeDescriptions() *models.Table { return s.descriptions }

func (s *Snapshot) AttentionList() *models.Table { return s.attentionList }

func (s *Snapshot) VATIPIssues() *models.Table { return s.ipVatIssues }

func (s *Snapshot) HistoricalMeta() *models.Table { return s.historicalMeta }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
