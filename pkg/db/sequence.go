package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const nextSequenceSQL = `
INSERT INTO counters (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
RETURNING value`

// NextSequence atomically increments the named counter row and returns the
// new value. The upsert is a single statement, so concurrent callers never
// observe the same value.
func NextSequence(tx *gorm.DB, name string) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	if name == "" {
		return 0, errors.New("sequence name required")
	}
	var value int64
	if err := tx.Raw(nextSequenceSQL, name).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", name, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("next %s sequence returned %d", name, value)
	}
	return value, nil
}
