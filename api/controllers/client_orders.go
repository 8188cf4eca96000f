package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shohaib1996/better-edible-backend/api/responses"
	"github.com/shohaib1996/better-edible-backend/api/validators"
	ordersvc "github.com/shohaib1996/better-edible-backend/internal/clientorders"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func ListClientOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		input, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Page, err = validators.ParsePage(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result)
	}
}

// ExportClientOrders streams the production schedule as a spreadsheet. It
// accepts the same filters as the list endpoint.
func ExportClientOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		input, err := parseOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Buffered so a failure mid-export still returns a JSON error.
		var buf bytes.Buffer
		if err := svc.ExportProductionSchedule(r.Context(), input, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="production-schedule-%s.xlsx"`, time.Now().UTC().Format(types.DateLayout)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func GetClientOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func CreateClientOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithClientID(ctx, payload.ClientID.String())
		}
		order, err := svc.CreateOrder(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func UpdateClientOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateOrder(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func DeleteClientOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func UpdateClientOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseClientOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"}))
			return
		}
		order, err := svc.TransitionStatus(r.Context(), id, ordersvc.StatusInput{
			Status:         status,
			TrackingNumber: payload.TrackingNumber,
			Actor:          payload.Actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func UpdateClientOrderDeliveryDate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deliveryDateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.DeliveryDate.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delivery_date is required").WithDetails(map[string]any{"field": "delivery_date"}))
			return
		}
		order, err := svc.UpdateDeliveryDate(r.Context(), id, ordersvc.DeliveryDateInput{
			DeliveryDate: payload.DeliveryDate,
			Actor:        payload.Actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ToggleClientOrderShipASAP sets ship_asap, or flips it when the body omits a value.
func ToggleClientOrderShipASAP(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload shipASAPRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		order, err := svc.ToggleShipASAP(r.Context(), id, ordersvc.ShipASAPInput{
			Value: payload.ShipASAP,
			Actor: payload.Actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func PushClientOrderToProduction(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client order"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload actorRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id.String())
		}
		order, err := svc.PushToProduction(ctx, id, payload.Actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func parseOrderFilters(r *http.Request) (ordersvc.ListOrdersInput, error) {
	var input ordersvc.ListOrdersInput
	for _, raw := range validators.ParseQueryList(r, "status") {
		status, err := enums.ParseClientOrderStatus(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		input.Statuses = append(input.Statuses, status)
	}
	var err error
	if input.ClientID, err = validators.ParseQueryUUID(r, "client_id"); err != nil {
		return input, err
	}
	if input.RepID, err = validators.ParseQueryUUID(r, "rep_id"); err != nil {
		return input, err
	}
	if input.DeliveryFrom, err = validators.ParseQueryDate(r, "delivery_from"); err != nil {
		return input, err
	}
	if input.DeliveryTo, err = validators.ParseQueryDate(r, "delivery_to"); err != nil {
		return input, err
	}
	input.Search = searchTerm(r.URL.Query().Get("search"))
	return input, nil
}

type orderItemRequest struct {
	LabelID  uuid.UUID `json:"label_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"min=1"`
}

type createOrderRequest struct {
	ClientID     uuid.UUID          `json:"client_id" validate:"required"`
	Items        []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryDate types.Date         `json:"delivery_date"`
	Discount     decimal.Decimal    `json:"discount"`
	DiscountType string             `json:"discount_type,omitempty" validate:"omitempty,oneof=flat percentage"`
	Note         string             `json:"note,omitempty" validate:"max=2000"`
	ShipASAP     bool               `json:"ship_asap,omitempty"`
	Actor        *types.Actor       `json:"actor,omitempty"`
}

func (p createOrderRequest) toInput() (ordersvc.CreateOrderInput, error) {
	if p.DeliveryDate.IsZero() {
		return ordersvc.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery_date is required").WithDetails(map[string]any{"field": "delivery_date"})
	}
	discountType := enums.DiscountFlat
	if p.DiscountType != "" {
		discountType = enums.DiscountType(p.DiscountType)
	}
	return ordersvc.CreateOrderInput{
		ClientID:     p.ClientID,
		Items:        toItemInputs(p.Items),
		DeliveryDate: p.DeliveryDate,
		Discount:     p.Discount,
		DiscountType: discountType,
		Note:         p.Note,
		ShipASAP:     p.ShipASAP,
		Actor:        p.Actor,
	}, nil
}

type updateOrderRequest struct {
	Items        *[]orderItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	DeliveryDate *types.Date         `json:"delivery_date,omitempty"`
	Discount     *decimal.Decimal    `json:"discount,omitempty"`
	DiscountType *string             `json:"discount_type,omitempty" validate:"omitempty,oneof=flat percentage"`
	Note         *string             `json:"note,omitempty" validate:"omitempty,max=2000"`
	ShipASAP     *bool               `json:"ship_asap,omitempty"`
	Actor        *types.Actor        `json:"actor,omitempty"`
}

func (p updateOrderRequest) toInput() (ordersvc.UpdateOrderInput, error) {
	discountType, err := parseEnum(p.DiscountType, "discount_type", enums.ParseDiscountType)
	if err != nil {
		return ordersvc.UpdateOrderInput{}, err
	}
	input := ordersvc.UpdateOrderInput{
		DeliveryDate: p.DeliveryDate,
		Discount:     p.Discount,
		DiscountType: discountType,
		Note:         p.Note,
		ShipASAP:     p.ShipASAP,
		Actor:        p.Actor,
	}
	if p.Items != nil {
		items := toItemInputs(*p.Items)
		input.Items = &items
	}
	return input, nil
}

func toItemInputs(items []orderItemRequest) []ordersvc.ItemInput {
	out := make([]ordersvc.ItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, ordersvc.ItemInput{LabelID: item.LabelID, Quantity: item.Quantity})
	}
	return out
}

type statusRequest struct {
	Status         string       `json:"status" validate:"required"`
	TrackingNumber *string      `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	Actor          *types.Actor `json:"actor,omitempty"`
}

type deliveryDateRequest struct {
	DeliveryDate types.Date   `json:"delivery_date"`
	Actor        *types.Actor `json:"actor,omitempty"`
}

type shipASAPRequest struct {
	ShipASAP *bool        `json:"ship_asap,omitempty"`
	Actor    *types.Actor `json:"actor,omitempty"`
}

type actorRequest struct {
	Actor *types.Actor `json:"actor,omitempty"`
}
