package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AtSheen/efg/internal/models"
)

const featureNamesKey = "feature_names"

// DecodeTable parses a CSV body with a header row into a typed table and
// checks that every required column is present.
func DecodeTable(r io.Reader, required ...string) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	table := models.NewTable(header, records)

	var missing []string
	for _, col := range required {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return table, nil
}

// DecodeCategoricalConfig parses the categorical config document. JSON is
// accepted as YAML. Category values keep their literal scalar text.
func DecodeCategoricalConfig(r io.Reader) (models.CategoricalConfig, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return models.CategoricalConfig{}, fmt.Errorf("categorical config is empty")
		}
		return models.CategoricalConfig{}, fmt.Errorf("failed to parse categorical config: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return models.CategoricalConfig{}, fmt.Errorf("categorical config must be a mapping")
	}

	cfg := models.CategoricalConfig{Categories: make(map[string][]string)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		if value.Kind != yaml.SequenceNode {
			if key == featureNamesKey {
				return models.CategoricalConfig{}, fmt.Errorf("%s must be a sequence", featureNamesKey)
			}
			continue
		}

		values, err := scalarValues(value)
		if err != nil {
			return models.CategoricalConfig{}, fmt.Errorf("categorical config key %q: %w", key, err)
		}
		if key == featureNamesKey {
			cfg.FeatureNames = values
		} else {
			cfg.Categories[key] = values
		}
	}

	if err := cfg.Validate(); err != nil {
		return models.CategoricalConfig{}, err
	}
	return cfg, nil
}

func scalarValues(seq *yaml.Node) ([]string, error) {
	values := make([]string, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: expected a scalar", item.Line)
		}
		values = append(values, item.Value)
	}
	return values, nil
}
