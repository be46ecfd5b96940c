package repository

import "github.com/AtSheen/efg/internal/storage"

// Reference resources served by every source.
var (
	CategoricalConfigResource = storage.Resource{
		Key: "categorical_config", Endpoint: "GetCategoricalConfigFile",
		FileName: "categorical_config.yaml", Format: storage.FormatDocument,
	}
	LegalEntitiesResource = storage.Resource{
		Key: "legal_entities", Endpoint: "GetLegalEntitiesFile",
		FileName: "legal_entities.csv", Format: storage.FormatTable,
	}
	TaxCodeInfoResource = storage.Resource{
		Key: "tax_code_info", Endpoint: "GetTaxCodeInfoFile",
		FileName: "tax_code_info.csv", Format: storage.FormatTable,
	}
	TaxCodeDescriptionResource = storage.Resource{
		Key: "tax_code_description", Endpoint: "GetTaxCodeDescriptionFile",
		FileName: "tax_code_description.csv", Format: storage.FormatTable,
	}
	CompanyCodeInfoResource = storage.Resource{
		Key: "company_code_info", Endpoint: "GetCompanyCodeDetailsFile",
		FileName: "company_code_info.csv", Format: storage.FormatTable,
	}
	VendorInfoResource = storage.Resource{
		Key: "vendor_info", Endpoint: "GetVendorDetailsFile",
		FileName: "vendor_info.csv", Format: storage.FormatTable,
	}
	AttentionListResource = storage.Resource{
		Key: "attention_list", Endpoint: "GetAttentionListFile",
		FileName: "attention_list.csv", Format: storage.FormatTable,
	}
	IPVatIssuesResource = storage.Resource{
		Key: "ip_vat_issues", Endpoint: "GetIPVatFile",
		FileName: "ip_vat_issues.csv", Format: storage.FormatTable,
	}
	HistoricalMetaResource = storage.Resource{
		Key: "historical_meta", Endpoint: "GetHistoricalMetaFile",
		FileName: "historical_meta.csv", Format: storage.FormatTable,
	}
)

// Resources returns the nine reference resources in load order.
func Resources() []storage.Resource {
	return []storage.Resource{
		CategoricalConfigResource,
		LegalEntitiesResource,
		TaxCodeInfoResource,
		TaxCodeDescriptionResource,
		CompanyCodeInfoResource,
		VendorInfoResource,
		AttentionListResource,
		IPVatIssuesResource,
		HistoricalMetaResource,
	}
}

// Column names the core reads.
const (
	ColCompanyCode      = "Company Code"
	ColReportingCountry = "Reporting Country"
	ColCompanyName      = "Company Name"

	ColVendor     = "Vendor"
	ColCountryKey = "Country Key"
	ColVendorName = "Vendor Name"

	ColVendorNumber = "Vendor Number"

	ColCountry              = "Country"
	ColTaxCode              = "Tax Code"
	ColGoodsServices        = "Goods/Services"
	ColReverseCharge        = "Reverse Charge"
	ColVATRateInInvoiceCopy = "VAT Rate in Invoice copy"

	ColDescriptionTaxCode = "Tax code"
	ColDescription        = "Description"
)

// requiredColumns lists, per table resource, the columns that must be present.
var requiredColumns = map[string][]string{
	CompanyCodeInfoResource.Key:    {ColCompanyCode, ColReportingCountry, ColCompanyName},
	VendorInfoResource.Key:         {ColVendor, ColCountryKey, ColVendorName},
	LegalEntitiesResource.Key:      {ColCompanyCode, ColVendorNumber},
	TaxCodeInfoResource.Key:        {ColCountry, ColTaxCode, ColGoodsServices, ColReverseCharge, ColVATRateInInvoiceCopy},
	TaxCodeDescriptionResource.Key: {ColDescriptionTaxCode, ColDescription},
}
