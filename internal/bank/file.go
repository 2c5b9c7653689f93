package bank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region file-types

// fileRow mirrors one bank table row on disk:
// number, trait, reverse, alpha, beta1..beta6.
type fileRow struct {
	Number  int       `yaml:"number"`
	Trait   string    `yaml:"trait"`
	Reverse bool      `yaml:"reverse"`
	Alpha   float64   `yaml:"alpha"`
	Beta    []float64 `yaml:"beta"`
}

type fileBank struct {
	Items []fileRow `yaml:"items"`
}

// #endregion file-types

// #region loader

// LoadFile reads an alternative calibration from a YAML bank file and
// validates it through the same path as the embedded bank.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank %s: %w", path, err)
	}
	var f fileBank
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse bank %s: %w", path, err)
	}

	items := make([]Item, 0, len(f.Items))
	for _, row := range f.Items {
		if len(row.Beta) != 6 {
			return nil, &InvalidItemError{
				Number: row.Number,
				Reason: fmt.Sprintf("beta has %d thresholds, want 6", len(row.Beta)),
			}
		}
		it := Item{
			Number:  row.Number,
			Trait:   Trait(row.Trait),
			Reverse: row.Reverse,
			Alpha:   row.Alpha,
		}
		copy(it.Beta[:], row.Beta)
		items = append(items, it)
	}

	return NewStrict(items)
}

// #endregion loader
