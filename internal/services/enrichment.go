package services

import (
	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/models"
)

// ReferenceData is the lookup surface used to enrich a query.
type ReferenceData interface {
	Company(code string) (models.CompanyRecord, bool)
	Vendor(number string) (models.VendorRecord, bool)
	CompanyInLegalEntities(code string) bool
	VendorInLegalEntities(number string) bool
}

// Enrich resolves a raw query into the full feature record. It never fails:
// lookup misses resolve to sentinels so every field is populated.
func Enrich(ref ReferenceData, q models.TaxCodeQuery, log *logger.Logger) models.EnrichedQuery {
	apAr := q.APAR
	if apAr == "" {
		apAr = models.DefaultAPAR
	}

	out := models.EnrichedQuery{
		CompanyCode:      q.CompanyCode,
		VendorNumber:     q.VendorNumber,
		VATRate:          q.VATRate,
		APAR:             apAr,
		ReportingCountry: models.UnknownCountry,
		VendorCountry:    models.UnknownCountry,
		VendorName:       models.VendorNotFoundName,
		IsReverseCharge:  models.ReverseChargeFromFlag(q.IsReverseCharge),
		GoodsServices:    ClassifyGoodsServices(q.Goods, q.Services),
	}

	if company, ok := ref.Company(q.CompanyCode); ok {
		out.ReportingCountry = company.ReportingCountry
		out.ReportingName = company.CompanyName
		log.Debug("Company found", map[string]interface{}{
			"company_code":      q.CompanyCode,
			"reporting_country": company.ReportingCountry.String(),
		})
	} else {
		log.Warn("No data found for company code", map[string]interface{}{
			"company_code": q.CompanyCode,
		})
	}

	if vendor, ok := ref.Vendor(q.VendorNumber); ok {
		out.VendorCountry = vendor.CountryKey
		out.VendorName = vendor.VendorName
		log.Debug("Vendor found", map[string]interface{}{
			"vendor_number": q.VendorNumber,
			"country_key":   vendor.CountryKey.String(),
		})
	} else {
		log.Warn("No details found for vendor", map[string]interface{}{
			"vendor_number": q.VendorNumber,
		})
	}

	out.LegalEntity = ClassifyLegalEntity(ref, q.CompanyCode, q.VendorNumber)
	out.EUNonEU = ClassifyRegion(out.VendorCountry)
	out.DomesticForeign = ClassifyResidency(out.VendorCountry, out.ReportingCountry)

	log.Info("Query enriched", map[string]interface{}{
		"company_code":      out.CompanyCode,
		"vendor_number":     out.VendorNumber,
		"reporting_country": out.ReportingCountry.String(),
		"vendor_country":    out.VendorCountry.String(),
		"legal_entity":      out.LegalEntity,
		"goods_services":    out.GoodsServices,
		"eu_noneu":          out.EUNonEU,
		"domestic_foreign":  out.DomesticForeign,
		"is_reverse_charge": out.IsReverseCharge.String(),
	})
	return out
}

// ClassifyGoodsServices picks the single category only when exactly one
// flag is true. Every other combination is the combined category.
func ClassifyGoodsServices(goods, services models.Flag) models.GoodsServices {
	switch {
	case goods.IsTrue() && services.IsTrue():
		return models.GoodsServicesBoth
	case goods.IsTrue():
		return models.GoodsServicesGoods
	case services.IsTrue():
		return models.GoodsServicesServices
	default:
		return models.GoodsServicesBoth
	}
}

// ClassifyLegalEntity returns Same when the company code is anywhere in the
// legal-entity company column and the vendor number is anywhere in the
// vendor column. The two checks are independent; pairs are not verified.
func ClassifyLegalEntity(ref ReferenceData, companyCode, vendorNumber string) models.LegalEntity {
	if ref.CompanyInLegalEntities(companyCode) && ref.VendorInLegalEntities(vendorNumber) {
		return models.LegalEntitySame
	}
	return models.LegalEntityDifferent
}

// ClassifyRegion maps the vendor country onto EU / Non EU.
func ClassifyRegion(vendorCountry models.Country) models.Region {
	if vendorCountry.IsEU() {
		return models.RegionEU
	}
	return models.RegionNonEU
}

// ClassifyResidency is Domestic only when both countries are resolved and equal.
func ClassifyResidency(vendorCountry, reportingCountry models.Country) models.Residency {
	if vendorCountry.Equal(reportingCountry) {
		return models.ResidencyDomestic
	}
	return models.ResidencyForeign
}
