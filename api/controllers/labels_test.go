package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	labelsvc "github.com/shohaib1996/better-edible-backend/internal/labels"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
)

type stubLabelService struct {
	labelsvc.Service

	stageInput labelsvc.StageInput
	bulkClient uuid.UUID
	uploaded   []byte
	filename   string
	deletedID  string
}

func (s *stubLabelService) UpdateStage(_ context.Context, id uuid.UUID, input labelsvc.StageInput) (*labelsvc.LabelDTO, error) {
	s.stageInput = input
	return &labelsvc.LabelDTO{ID: id, CurrentStage: input.Stage}, nil
}

func (s *stubLabelService) BulkUpdateStage(_ context.Context, clientID uuid.UUID, input labelsvc.StageInput) (int, error) {
	s.bulkClient = clientID
	s.stageInput = input
	return 3, nil
}

func (s *stubLabelService) UploadImage(_ context.Context, id uuid.UUID, upload labelsvc.ImageUpload) (*labelsvc.LabelDTO, error) {
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	s.uploaded = data
	s.filename = upload.Filename
	return &labelsvc.LabelDTO{ID: id}, nil
}

func (s *stubLabelService) DeleteImage(_ context.Context, id uuid.UUID, publicID string) (*labelsvc.LabelDTO, error) {
	s.deletedID = publicID
	return &labelsvc.LabelDTO{ID: id}, nil
}

func TestUpdateLabelStage(t *testing.T) {
	stub := &stubLabelService{}
	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"stage":"ready_for_production","notes":"printed"}`)), "id", id.String())
	rec := httptest.NewRecorder()
	UpdateLabelStage(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, enums.LabelStageReadyForProduction, stub.stageInput.Stage)
	require.Equal(t, "printed", stub.stageInput.Notes)

	req = withURLParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"stage":"approved"}`)), "id", id.String())
	rec = httptest.NewRecorder()
	UpdateLabelStage(stub, logger.Nop()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkUpdateLabelStageReportsCount(t *testing.T) {
	stub := &stubLabelService{}
	clientID := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"stage":"store_approved"}`)), "id", clientID.String())
	rec := httptest.NewRecorder()
	BulkUpdateLabelStage(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, clientID, stub.bulkClient)
	require.JSONEq(t, `{"data":{"updated":3}}`, rec.Body.String())
}

func TestUploadLabelImage(t *testing.T) {
	stub := &stubLabelService{}
	id := uuid.New()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(labelImageField, "mango.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = withURLParam(req, "id", id.String())
	rec := httptest.NewRecorder()
	UploadLabelImage(stub, 1<<20, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "mango.png", stub.filename)
	require.Equal(t, []byte("\x89PNG\r\n\x1a\nrest"), stub.uploaded)
}

func TestUploadLabelImageRequiresFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = withURLParam(req, "id", uuid.NewString())
	rec := httptest.NewRecorder()
	UploadLabelImage(&stubLabelService{}, 1<<20, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLabelImageUsesWildcard(t *testing.T) {
	stub := &stubLabelService{}
	id := uuid.New()
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", id.String())
	rc.URLParams.Add("*", "private-labels/c1/art.png")
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	DeleteLabelImage(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "private-labels/c1/art.png", stub.deletedID)
}
