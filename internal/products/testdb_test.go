package products

import (
	"testing"

	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/dbtest"
)

func openProductsDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, dbtest.ProductsDDL, dbtest.ProductsIndexDDL)
}
