package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shohaib1996/better-edible-backend/api/responses"
	"github.com/shohaib1996/better-edible-backend/api/validators"
	productsvc "github.com/shohaib1996/better-edible-backend/internal/products"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
)

// ListProducts returns the product registry. ?active=true limits it to
// products that can be ordered.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		activeOnly := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("active")), "true")
		products, err := svc.ListProducts(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.CreateProduct(r.Context(), productsvc.CreateProductInput{
			Name:      payload.Name,
			UnitPrice: payload.UnitPrice,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("product"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(r.Context(), id, productsvc.UpdateProductInput{
			Name:      payload.Name,
			UnitPrice: payload.UnitPrice,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name      string          `json:"name" validate:"required,max=100"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	IsActive  *bool           `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}
