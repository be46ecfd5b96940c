package models

import "fmt"

// CompanyRecord is one row of the company code table.
type CompanyRecord struct {
	CompanyCode      string  `json:"companyCode"`
	ReportingCountry Country `json:"reportingCountry"`
	CompanyName      *string `json:"companyName"`
}

// VendorRecord is one row of the vendor table.
type VendorRecord struct {
	VendorNumber string  `json:"vendorNumber"`
	CountryKey   Country `json:"countryKey"`
	VendorName   string  `json:"vendorName"`
}

// TaxCodeCatalogRow carries the filterable columns of one static tax code row,
// each already in its string-cast form.
type TaxCodeCatalogRow struct {
	Country              string `json:"country"`
	TaxCode              string `json:"taxCode"`
	GoodsServices        string `json:"goodsServices"`
	ReverseCharge        string `json:"reverseCharge"`
	VATRateInInvoiceCopy string `json:"vatRateInInvoiceCopy"`
}

// CategoricalConfig is the feature ordering and vocabulary used to build the
// predictor's input vector.
type CategoricalConfig struct {
	FeatureNames []string
	Categories   map[string][]string
}

// Validate checks that every listed feature has a category list.
func (c CategoricalConfig) Validate() error {
	if len(c.FeatureNames) == 0 {
		return fmt.Errorf("categorical config has no feature_names")
	}
	seen := make(map[string]struct{}, len(c.FeatureNames))
	for _, name := range c.FeatureNames {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("categorical config lists feature %q twice", name)
		}
		seen[name] = struct{}{}
		if _, ok := c.Categories[name]; !ok {
			return fmt.Errorf("categorical config has no categories for feature %q", name)
		}
	}
	return nil
}

// Allows reports whether value is in the vocabulary of feature.
func (c CategoricalConfig) Allows(feature, value string) bool {
	for _, v := range c.Categories[feature] {
		if v == value {
			return true
		}
	}
	return false
}
