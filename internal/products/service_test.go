package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openProductsDB(t)))
	require.NoError(t, err)
	return svc
}

func TestResolveUnitPriceExactActiveMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "BIOMAX", UnitPrice: decimal.RequireFromString("4.25")})
	require.NoError(t, err)

	price, err := svc.ResolveUnitPrice(ctx, "BIOMAX")
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.RequireFromString("4.25")))

	price, err = svc.ResolveUnitPrice(ctx, "biomax")
	require.NoError(t, err)
	require.True(t, price.IsZero())

	price, err = svc.ResolveUnitPrice(ctx, "Unknown")
	require.NoError(t, err)
	require.True(t, price.IsZero())
}

func TestResolveUnitPriceIgnoresInactive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Gummies", UnitPrice: decimal.NewFromInt(3)})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{IsActive: &inactive})
	require.NoError(t, err)

	price, err := svc.ResolveUnitPrice(ctx, "Gummies")
	require.NoError(t, err)
	require.True(t, price.IsZero())

	all, err := svc.ListProducts(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	active, err := svc.ListProducts(ctx, true)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "  "})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "X", UnitPrice: decimal.NewFromInt(-1)})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateProductDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "BIOMAX", UnitPrice: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "BIOMAX", UnitPrice: decimal.NewFromInt(2)})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdateProductNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	price := decimal.NewFromInt(5)
	_, err := svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{UnitPrice: &price})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateProductRoundsPrice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Tincture", UnitPrice: decimal.RequireFromString("2.345")})
	require.NoError(t, err)
	require.Equal(t, "2.35", dto.UnitPrice.StringFixed(2))
}
