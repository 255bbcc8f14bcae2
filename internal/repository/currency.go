package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"momentum/types"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCurrencyMap reads a ticker to currency mapping. The file may be JSON or
// YAML. Null currencies are left out of the map. A missing file is reported as
// ErrCurrencyMapUnavailable wrapping fs.ErrNotExist, with an empty map, so
// callers can warn and carry on.
func LoadCurrencyMap(path string) (types.CurrencyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.CurrencyMap{}, fmt.Errorf("%w: %w", ErrCurrencyMapUnavailable, err)
		}
		return nil, err
	}
	return ParseCurrencyMap(data)
}

func ParseCurrencyMap(data []byte) (types.CurrencyMap, error) {
	raw := make(map[string]*string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse currency map: %w", err)
	}
	m := make(types.CurrencyMap, len(raw))
	for ticker, cur := range raw {
		if cur == nil || *cur == "" {
			continue
		}
		m[ticker] = *cur
	}
	return m, nil
}
