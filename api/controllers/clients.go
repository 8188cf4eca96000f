package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/api/responses"
	"github.com/shohaib1996/better-edible-backend/api/validators"
	clientsvc "github.com/shohaib1996/better-edible-backend/internal/clients"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
)

func ListClients(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client"))
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		repID, err := validators.ParseQueryUUID(r, "rep_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var rawStatus *string
		if v := r.URL.Query().Get("status"); v != "" {
			rawStatus = &v
		}
		status, err := parseEnum(rawStatus, "status", enums.ParsePrivateLabelClientStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListClients(r.Context(), clientsvc.ListClientsInput{
			Status: status,
			RepID:  repID,
			Search: searchTerm(r.URL.Query().Get("search")),
			Page:   page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result)
	}
}

func GetClient(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.GetClient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func CreateClient(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client"))
			return
		}
		var payload createClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recurring, err := payload.Recurring.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := svc.CreateClient(r.Context(), clientsvc.CreateClientInput{
			StoreID:       payload.StoreID,
			ContactEmail:  payload.ContactEmail,
			AssignedRepID: payload.AssignedRepID,
			Recurring:     recurring,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

func UpdateClient(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := parseEnum(payload.Status, "status", enums.ParsePrivateLabelClientStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := clientsvc.UpdateClientInput{
			ContactEmail:  payload.ContactEmail,
			AssignedRepID: payload.AssignedRepID,
			ClearRep:      payload.ClearRep,
			Status:        status,
		}
		if payload.Recurring != nil {
			recurring, err := payload.Recurring.toInput()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Recurring = &recurring
		}
		client, err := svc.UpdateClient(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func DeleteClient(svc clientsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("client"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteClient(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

type recurringRequest struct {
	Enabled  bool    `json:"enabled"`
	Interval *string `json:"interval,omitempty" validate:"omitempty,oneof=monthly bimonthly quarterly"`
}

func (r recurringRequest) toInput() (clientsvc.RecurringInput, error) {
	interval, err := parseEnum(r.Interval, "recurring_schedule.interval", enums.ParseRecurringInterval)
	if err != nil {
		return clientsvc.RecurringInput{}, err
	}
	return clientsvc.RecurringInput{Enabled: r.Enabled, Interval: interval}, nil
}

type createClientRequest struct {
	StoreID       uuid.UUID        `json:"store_id" validate:"required"`
	ContactEmail  string           `json:"contact_email" validate:"required,email"`
	AssignedRepID *uuid.UUID       `json:"assigned_rep_id,omitempty"`
	Recurring     recurringRequest `json:"recurring_schedule"`
}

type updateClientRequest struct {
	ContactEmail  *string           `json:"contact_email,omitempty" validate:"omitempty,email"`
	AssignedRepID *uuid.UUID        `json:"assigned_rep_id,omitempty"`
	ClearRep      bool              `json:"clear_rep,omitempty"`
	Status        *string           `json:"status,omitempty" validate:"omitempty,oneof=onboarding active"`
	Recurring     *recurringRequest `json:"recurring_schedule,omitempty"`
}
