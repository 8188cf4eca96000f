package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
)

const uniqueNameConstraint = "ux_private_label_products_name"

var (
	ErrProductNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "private label product not found")
	ErrDuplicateName   = pkgerrors.New(pkgerrors.CodeConflict, "a product with this name already exists")
)

// Service manages the product registry and resolves unit prices for orders.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]ProductDTO, error)
	ResolveUnitPrice(ctx context.Context, productType string) (decimal.Decimal, error)
}

type CreateProductInput struct {
	Name      string
	UnitPrice decimal.Decimal
	IsActive  *bool
}

type UpdateProductInput struct {
	Name      *string
	UnitPrice *decimal.Decimal
	IsActive  *bool
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	product := models.PrivateLabelProduct{
		Name:      name,
		UnitPrice: input.UnitPrice.Round(2),
		IsActive:  active,
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrDuplicateName
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := mapProductDTO(product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be non-negative")
		}
		updates["unit_price"] = input.UnitPrice.Round(2)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrProductNotFound
		case db.IsUniqueViolation(err, ""):
			return nil, ErrDuplicateName
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := mapProductDTO(*product)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context, activeOnly bool) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, ListFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapProductDTO(row))
	}
	return out, nil
}

// ResolveUnitPrice returns the price of the active entry named exactly
// productType, or zero when there is none. Zero is never a real price.
func (s *service) ResolveUnitPrice(ctx context.Context, productType string) (decimal.Decimal, error) {
	if productType == "" {
		return decimal.Zero, nil
	}
	product, err := s.repo.FindActiveByName(ctx, productType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve unit price")
	}
	return product.UnitPrice, nil
}
