package organizations

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"

	"asset-manager-api/internal/domain/plans"
)

// Features is stored as a JSON array column.
type Features []plans.Feature

func (f Features) Contains(feature plans.Feature) bool {
	return slices.Contains(f, feature)
}

func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]plans.Feature(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *Features) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("features: unsupported column type %T", src)
	}
	var out []plans.Feature
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	*f = out
	return nil
}
