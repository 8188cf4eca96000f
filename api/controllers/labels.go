package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shohaib1996/better-edible-backend/api/responses"
	"github.com/shohaib1996/better-edible-backend/api/validators"
	labelsvc "github.com/shohaib1996/better-edible-backend/internal/labels"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

const labelImageField = "file"

func ListLabels(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := validators.ParseQueryUUID(r, "client_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var rawStage *string
		if v := r.URL.Query().Get("stage"); v != "" {
			rawStage = &v
		}
		stage, err := parseEnum(rawStage, "stage", enums.ParseLabelStage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListLabels(r.Context(), labelsvc.ListLabelsInput{
			ClientID: clientID,
			Stage:    stage,
			Search:   searchTerm(r.URL.Query().Get("search")),
			Page:     page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result)
	}
}

func GetLabel(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		label, err := svc.GetLabel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, label)
	}
}

func CreateLabel(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		var payload createLabelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stage, err := parseEnum(payload.Stage, "stage", enums.ParseLabelStage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		label, err := svc.CreateLabel(r.Context(), labelsvc.CreateLabelInput{
			ClientID:    payload.ClientID,
			FlavorName:  payload.FlavorName,
			ProductType: payload.ProductType,
			Stage:       stage,
			Actor:       payload.Actor,
			Notes:       payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, label)
	}
}

func UpdateLabel(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateLabelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		label, err := svc.UpdateLabel(r.Context(), id, labelsvc.UpdateLabelInput{
			FlavorName:  payload.FlavorName,
			ProductType: payload.ProductType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, label)
	}
}

func DeleteLabel(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLabel(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func UpdateLabelStage(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeStageRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		label, err := svc.UpdateStage(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, label)
	}
}

// BulkUpdateLabelStage moves every label of a client to one stage.
func BulkUpdateLabelStage(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		clientID, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeStageRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.BulkUpdateStage(r.Context(), clientID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"updated": updated})
	}
}

func UploadLabelImage(svc labelsvc.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// Room for the multipart envelope around the file.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds %d bytes", maxBytes))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile(labelImageField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required").WithDetails(map[string]any{"field": labelImageField}))
			return
		}
		defer file.Close()

		label, err := svc.UploadImage(r.Context(), id, labelsvc.ImageUpload{Filename: header.Filename, Body: file})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, label)
	}
}

// DeleteLabelImage removes one image. The public id is the object name and
// may contain slashes, so it is taken from the route wildcard.
func DeleteLabelImage(svc labelsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("label"))
			return
		}
		id, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		publicID, err := url.PathUnescape(strings.TrimSpace(chi.URLParam(r, "*")))
		if err != nil || publicID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid public id"))
			return
		}
		label, err := svc.DeleteImage(r.Context(), id, publicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, label)
	}
}

func decodeStageRequest(r *http.Request) (labelsvc.StageInput, error) {
	var payload stageRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return labelsvc.StageInput{}, err
	}
	stage, err := enums.ParseLabelStage(payload.Stage)
	if err != nil {
		return labelsvc.StageInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stage").WithDetails(map[string]any{"field": "stage"})
	}
	return labelsvc.StageInput{Stage: stage, Actor: payload.Actor, Notes: payload.Notes}, nil
}

type createLabelRequest struct {
	ClientID    uuid.UUID    `json:"client_id" validate:"required"`
	FlavorName  string       `json:"flavor_name" validate:"required,max=200"`
	ProductType string       `json:"product_type" validate:"required,max=100"`
	Stage       *string      `json:"stage,omitempty"`
	Notes       string       `json:"notes,omitempty" validate:"max=1000"`
	Actor       *types.Actor `json:"actor,omitempty"`
}

type updateLabelRequest struct {
	FlavorName  *string `json:"flavor_name,omitempty" validate:"omitempty,max=200"`
	ProductType *string `json:"product_type,omitempty" validate:"omitempty,max=100"`
}

type stageRequest struct {
	Stage string       `json:"stage" validate:"required"`
	Notes string       `json:"notes,omitempty" validate:"max=1000"`
	Actor *types.Actor `json:"actor,omitempty"`
}
