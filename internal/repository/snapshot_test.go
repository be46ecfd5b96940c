package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/storage"
)

func loadFixtureSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	src, err := storage.NewLocalSource("testdata")
	require.NoError(t, err)
	snap, err := NewStore(src, time.Second, logger.Nop()).Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestSnapshot_Company(t *testing.T) {
	snap := loadFixtureSnapshot(t)

	company, ok := snap.Company("1027")
	require.True(t, ok)
	assert.Equal(t, models.KnownCountry("DE"), company.ReportingCountry, "first row wins for duplicate codes")
	require.NotNil(t, company.CompanyName)
	assert.Equal(t, "Efg Deutschland GmbH", *company.CompanyName)

	noCountry, ok := snap.Company("3000")
	require.True(t, ok)
	assert.False(t, noCountry.ReportingCountry.IsResolved())

	_, ok = snap.Company("9999")
	assert.False(t, ok)
}

func TestSnapshot_Vendor(t *testing.T) {
	snap := loadFixtureSnapshot(t)

	vendor, ok := snap.Vendor("373458")
	require.True(t, ok)
	assert.Equal(t, models.KnownCountry("US"), vendor.CountryKey)
	assert.Equal(t, "Acme Supplies Inc", vendor.VendorName)

	_, ok = snap.Vendor("000000")
	assert.False(t, ok)
}

func TestSnapshot_LegalEntityColumns(t *testing.T) {
	snap := loadFixtureSnapshot(t)

	assert.True(t, snap.CompanyInLegalEntities("1027"))
	assert.True(t, snap.CompanyInLegalEntities("2040"))
	assert.False(t, snap.CompanyInLegalEntities("3000"))

	// The two columns are independent: 100200 is only linked to 2040.
	assert.True(t, snap.VendorInLegalEntities("100200"))
	assert.False(t, snap.VendorInLegalEntities("373458"))
}

func TestSnapshot_Catalog(t *testing.T) {
	snap := loadFixtureSnapshot(t)

	rows := snap.TaxCodeCatalog()
	require.Len(t, rows, 6)
	assert.Equal(t, models.TaxCodeCatalogRow{
		Country:              "DE",
		TaxCode:              "R1",
		GoodsServices:        "Goods",
		ReverseCharge:        "True",
		VATRateInInvoiceCopy: "0",
	}, rows[3])
	assert.Equal(t, "19", rows[4].VATRateInInvoiceCopy)
	assert.Equal(t, 5, snap.TaxCodeDescriptions().Len())
}

func TestSnapshot_CategoricalConfig(t *testing.T) {
	cfg := loadFixtureSnapshot(t).CategoricalConfig()

	assert.Equal(t, []string{"Company Code", "Vendor Number", "VAT Rate", "Goods/Services"}, cfg.FeatureNames)
	assert.Equal(t, []string{"0", "19.0"}, cfg.Categories["VAT Rate"])
}

func TestNewSnapshot_Validation(t *testing.T) {
	valid := func() Tables {
		return Tables{
			CategoricalConfig: models.CategoricalConfig{
				FeatureNames: []string{"VAT Rate"},
				Categories:   map[string][]string{"VAT Rate": {"0"}},
			},
			LegalEntities:      models.NewTable([]string{ColCompanyCode, ColVendorNumber}, nil),
			TaxCodeInfo:        models.NewTable([]string{ColCountry, ColTaxCode, ColGoodsServices, ColReverseCharge, ColVATRateInInvoiceCopy}, nil),
			TaxCodeDescription: models.NewTable([]string{ColDescriptionTaxCode, ColDescription}, nil),
			CompanyCodeInfo:    models.NewTable([]string{ColCompanyCode, ColReportingCountry, ColCompanyName}, nil),
			VendorInfo:         models.NewTable([]string{ColVendor, ColCountryKey, ColVendorName}, nil),
		}
	}

	snap, err := NewSnapshot(valid(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.AttentionList().Len(), "nil report tables are served empty")

	tables := valid()
	tables.VendorInfo = nil
	_, err = NewSnapshot(tables, time.Now())
	assert.Error(t, err)

	tables = valid()
	tables.CompanyCodeInfo = models.NewTable([]string{ColCompanyCode}, nil)
	_, err = NewSnapshot(tables, time.Now())
	assert.Error(t, err)

	tables = valid()
	tables.CategoricalConfig = models.CategoricalConfig{}
	_, err = NewSnapshot(tables, time.Now())
	assert.Error(t, err)
}
