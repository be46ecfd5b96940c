package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AtSheen/efg/internal/models"
	"github.com/AtSheen/efg/internal/predictor"
	"github.com/AtSheen/efg/internal/repository"
)

const (
	companyCSV = "Company Code,Reporting Country,Company Name\n" +
		"1027,DE,Efg Deutschland GmbH\n" +
		"2040,FR,Efg France SAS\n" +
		"3000,,Holding Without Country\n"
	vendorCSV = "Vendor,Country Key,Vendor Name\n" +
		"373458,US,Acme Supplies Inc\n" +
		"100200,DE,Berlin Tools GmbH\n" +
		"100300,FR,Paris Services SARL\n"
	legalCSV = "Company Code,Vendor Number\n" +
		"1027,999001\n" +
		"2040,100200\n"
	catalogCSV = "Country,Tax Code,Goods/Services,Reverse Charge,VAT Rate in Invoice copy\n" +
		"DE,V0,Goods,False,0\n" +
		"DE,V1,Goods/Services,False,0\n" +
		"DE,V2,Services,False,0\n" +
		"DE,R1,Goods,True,0\n" +
		"DE,V9,Goods,False,19\n" +
		"FR,F0,Goods,False,0\n"
	descriptionCSV = "Tax code,Description\n" +
		`V0,Input tax 0%\nGoods` + "\n" +
		`V1,Generic\nzero rate` + "\n" +
		"V1,Second line for V1\n" +
		"V9,Standard rate\n" +
		"F0,French zero rate\n"
	attentionCSV = "Company code,Vendor,Note\n1027,373458,Check invoices\n"
	ipVatCSV     = "Company Code,Vendor,Issue\n1027,373458,Missing VAT ID\n"
	historicCSV  = "Tax Code,Count\nV0,120\n"
)

func decodeTable(t *testing.T, csv string) *models.Table {
	t.Helper()
	table, err := repository.DecodeTable(strings.NewReader(csv))
	require.NoError(t, err)
	return table
}

func fixtureConfig() models.CategoricalConfig {
	return models.CategoricalConfig{
		FeatureNames: []string{
			models.FeatureCompanyCode,
			models.FeatureVendorNumber,
			models.FeatureVATRate,
			models.FeatureGoodsServices,
			models.FeatureReverseCharge,
		},
		Categories: map[string][]string{
			models.FeatureCompanyCode:   {"1027", "2040"},
			models.FeatureVendorNumber:  {"373458", "100200"},
			models.FeatureVATRate:       {"0", "19"},
			models.FeatureGoodsServices: {"Goods", "Services", "Goods/Services"},
			models.FeatureReverseCharge: {"True", "False"},
		},
	}
}

func fixtureSnapshotWithConfig(t *testing.T, cfg models.CategoricalConfig) *repository.Snapshot {
	t.Helper()
	snap, err := repository.NewSnapshot(repository.Tables{
		CategoricalConfig:  cfg,
		LegalEntities:      decodeTable(t, legalCSV),
		TaxCodeInfo:        decodeTable(t, catalogCSV),
		TaxCodeDescription: decodeTable(t, descriptionCSV),
		CompanyCodeInfo:    decodeTable(t, companyCSV),
		VendorInfo:         decodeTable(t, vendorCSV),
		AttentionList:      decodeTable(t, attentionCSV),
		IPVatIssues:        decodeTable(t, ipVatCSV),
		HistoricalMeta:     decodeTable(t, historicCSV),
	}, time.Now())
	require.NoError(t, err)
	return snap
}

func fixtureSnapshot(t *testing.T) *repository.Snapshot {
	return fixtureSnapshotWithConfig(t, fixtureConfig())
}

// MockReferenceProvider is a mock implementation of ReferenceProvider for testing
type MockReferenceProvider struct {
	mock.Mock
}

func (m *MockReferenceProvider) Snapshot(ctx context.Context) (*repository.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*repository.Snapshot)
	return snap, args.Error(1)
}

// MockPredictor is a mock implementation of Predictor for testing
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, payload *predictor.Payload) (models.Prediction, error) {
	args := m.Called(ctx, payload)
	prediction, _ := args.Get(0).(models.Prediction)
	return prediction, args.Error(1)
}

func boolFlag(b bool) models.Flag {
	return models.FlagFromBool(&b)
}
