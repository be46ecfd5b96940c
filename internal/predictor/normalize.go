package predictor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/AtSheen/efg/internal/models"
)

// MaxProbabilities is how many ranked entries are kept.
const MaxProbabilities = 5

// normalize validates a predictor response, keeps the first
// MaxProbabilities entries in the order received and rounds every
// probability to two decimals.
func normalize(raw response) (models.Prediction, error) {
	if raw.Prediction == nil {
		return models.Prediction{}, fmt.Errorf("%w: missing ml_prediction", ErrInvalidResponse)
	}
	if raw.Confidence == nil {
		return models.Prediction{}, fmt.Errorf("%w: missing ml_prediction_proba", ErrInvalidResponse)
	}
	if !isProbability(*raw.Confidence) {
		return models.Prediction{}, fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidResponse, *raw.Confidence)
	}

	n := len(raw.Probabilities)
	if n > MaxProbabilities {
		n = MaxProbabilities
	}
	probs := make([]models.TaxCodeProbability, 0, n)
	for _, p := range raw.Probabilities[:n] {
		if p.Prob == nil {
			return models.Prediction{}, fmt.Errorf("%w: missing prob for %q", ErrInvalidResponse, p.TaxCode)
		}
		probs = append(probs, models.TaxCodeProbability{
			TaxCode: p.TaxCode,
			Prob:    Round2(*p.Prob),
		})
	}

	return models.Prediction{
		TaxCode:       *raw.Prediction,
		Confidence:    Round2(*raw.Confidence),
		Probabilities: probs,
	}, nil
}

// Round2 rounds the exact binary value of f to two decimals, so 0.155
// (stored just below 0.155) becomes 0.15.
func Round2(f float64) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', 2, 64))
	if err != nil {
		return f
	}
	return d.InexactFloat64()
}

func isProbability(f float64) bool {
	return !math.IsNaN(f) && f >= 0 && f <= 1
}
