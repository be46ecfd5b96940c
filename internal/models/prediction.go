package models

// TaxCodeProbability is one entry of the ranked probability table.
type TaxCodeProbability struct {
	TaxCode string  `json:"Tax Code"`
	Prob    float64 `json:"prob"`
}

// Prediction is the normalized predictor result: confidence and probabilities
// rounded to two decimals, at most five ranked entries.
type Prediction struct {
	TaxCode       string               `json:"ml_prediction"`
	Confidence    float64              `json:"ml_prediction_proba"`
	Probabilities []TaxCodeProbability `json:"ml_prediction_proba_df"`
}
