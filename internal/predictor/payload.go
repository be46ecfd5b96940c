package predictor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AtSheen/efg/internal/models"
)

// ErrUnknownFeature is returned when the categorical config lists a feature
// the enriched query does not carry.
var ErrUnknownFeature = errors.New("unknown feature column")

// fieldNames translates feature columns to the predictor's field names.
var fieldNames = map[string]string{
	models.FeatureCompanyCode:     "company_code",
	models.FeatureVendorNumber:    "vendor_number",
	models.FeatureVATRate:         "vat_rate",
	models.FeatureAPAR:            "ap_ar",
	models.FeatureReverseCharge:   "is_reverse_charge",
	models.FeatureLegalEntity:     "legal_entity",
	models.FeatureGoodsServices:   "goods_services",
	models.FeatureEUNonEU:         "eu_noneu",
	models.FeatureDomesticForeign: "domestic_foreign",
}

// FieldName returns the predictor field for a feature column. Columns
// without a translation keep their name.
func FieldName(feature string) string {
	if name, ok := fieldNames[feature]; ok {
		return name
	}
	return feature
}

// Field is one named predictor input.
type Field struct {
	Name  string
	Value string
}

// FeatureVector is an ordered set of predictor inputs. It marshals as a
// JSON object with keys in feature order.
type FeatureVector []Field

// MarshalJSON writes the fields in order.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value of the named predictor field.
func (v FeatureVector) Get(name string) (string, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Payload is the request body sent to the predictor.
type Payload struct {
	Query            FeatureVector `json:"query"`
	FilteredTaxCodes []string      `json:"filtered_tax_codes"`

	// OutOfVocabulary lists the features whose value is outside the
	// configured categories. The values are still sent as they are.
	OutOfVocabulary []string `json:"-"`
}

// BuildPayload selects the configured features from q in configured order,
// translates their names and attaches the candidate tax codes.
func BuildPayload(q models.EnrichedQuery, cfg models.CategoricalConfig, taxCodes []string) (*Payload, error) {
	if len(cfg.FeatureNames) == 0 {
		return nil, fmt.Errorf("categorical config has no feature names")
	}

	query := make(FeatureVector, 0, len(cfg.FeatureNames))
	var oov []string
	for _, feature := range cfg.FeatureNames {
		value, ok := q.Feature(feature)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
		}
		if !cfg.Allows(feature, value) {
			oov = append(oov, feature)
		}
		query = append(query, Field{Name: FieldName(feature), Value: value})
	}

	codes := make([]string, len(taxCodes))
	copy(codes, taxCodes)

	return &Payload{
		Query:            query,
		FilteredTaxCodes: codes,
		OutOfVocabulary:  oov,
	}, nil
}
