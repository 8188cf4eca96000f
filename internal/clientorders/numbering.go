package clientorders

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db"
)

const (
	// DefaultNumberPrefix marks private label order numbers.
	DefaultNumberPrefix = "PL-"
	orderSequenceName   = "client_order"
)

// NextOrderNumber draws the next value of the client order counter inside tx
// and formats it with prefix.
func NextOrderNumber(tx *gorm.DB, prefix string) (int64, string, error) {
	seq, err := db.NextSequence(tx, orderSequenceName)
	if err != nil {
		return 0, "", err
	}
	return seq, FormatOrderNumber(prefix, seq), nil
}

func FormatOrderNumber(prefix string, seq int64) string {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return fmt.Sprintf("%s%05d", prefix, seq)
}
