package models

// GoodsServices is the normalized goods/services category.
type GoodsServices string

const (
	GoodsServicesGoods    GoodsServices = "Goods"
	GoodsServicesServices GoodsServices = "Services"
	GoodsServicesBoth     GoodsServices = "Goods/Services"
)

// LegalEntity classifies buyer and vendor as related or not.
type LegalEntity string

const (
	LegalEntitySame      LegalEntity = "Same"
	LegalEntityDifferent LegalEntity = "Different"
)

// Region is the EU/Non EU classification of the vendor country.
type Region string

const (
	RegionEU    Region = "EU"
	RegionNonEU Region = "Non EU"
)

// Residency is the domestic/foreign classification of the vendor.
type Residency string

const (
	ResidencyDomestic Residency = "Domestic"
	ResidencyForeign  Residency = "Foreign"
)

// VendorNotFoundName replaces the vendor name when the lookup misses.
const VendorNotFoundName = "Vendor details not found"

// DefaultAPAR is used when the caller leaves the AP/AR/FI field empty.
const DefaultAPAR = "AP"

// Model feature column names.
const (
	FeatureCompanyCode     = "Company Code"
	FeatureVendorNumber    = "Vendor Number"
	FeatureAPAR            = "AP/AR/FI"
	FeatureVATRate         = "VAT Rate"
	FeatureReverseCharge   = "Reverse Charge"
	FeatureEUNonEU         = "EU/NON EU"
	FeatureGoodsServices   = "Goods/Services"
	FeatureDomesticForeign = "Domestic/ Foreign"
	FeatureLegalEntity     = "Legal Entity"
)

// FeatureColumns lists the feature columns in their canonical order.
var FeatureColumns = []string{
	FeatureCompanyCode,
	FeatureVendorNumber,
	FeatureAPAR,
	FeatureVATRate,
	FeatureReverseCharge,
	FeatureEUNonEU,
	FeatureGoodsServices,
	FeatureDomesticForeign,
	FeatureLegalEntity,
}

// TaxCodeQuery is the raw tax transaction query.
type TaxCodeQuery struct {
	CompanyCode     string
	VendorNumber    string
	VATRate         string
	APAR            string
	IsReverseCharge Flag
	Goods           Flag
	Services        Flag
}

// EnrichedQuery is the fully resolved feature record for one query.
// Every field is populated even when reference lookups miss.
type EnrichedQuery struct {
	CompanyCode      string        `json:"company_code"`
	VendorNumber     string        `json:"vendor_number"`
	VATRate          string        `json:"vat_rate"`
	APAR             string        `json:"ap_ar"`
	ReportingCountry Country       `json:"reporting_country"`
	ReportingName    *string       `json:"reporting_name"`
	VendorCountry    Country       `json:"vendor_country"`
	VendorName       string        `json:"vendor_name"`
	IsReverseCharge  ReverseCharge `json:"is_reverse_charge"`
	LegalEntity      LegalEntity   `json:"legal_entity"`
	GoodsServices    GoodsServices `json:"goods_services"`
	EUNonEU          Region        `json:"eu_noneu"`
	DomesticForeign  Residency     `json:"domestic_foreign"`
}

// Feature returns the value of a model feature column.
func (q EnrichedQuery) Feature(name string) (string, bool) {
	switch name {
	case FeatureCompanyCode:
		return q.CompanyCode, true
	case FeatureVendorNumber:
		return q.VendorNumber, true
	case FeatureAPAR:
		return q.APAR, true
	case FeatureVATRate:
		return q.VATRate, true
	case FeatureReverseCharge:
		return q.IsReverseCharge.String(), true
	case FeatureEUNonEU:
		return string(q.EUNonEU), true
	case FeatureGoodsServices:
		return string(q.GoodsServices), true
	case FeatureDomesticForeign:
		return string(q.DomesticForeign), true
	case FeatureLegalEntity:
		return string(q.LegalEntity), true
	default:
		return "", false
	}
}
