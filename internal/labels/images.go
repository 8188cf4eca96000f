package labels

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/storage"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

// ImageUpload is one artwork file received from a multipart form.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

type imageFormat struct {
	mime   string
	format string
}

// Artwork formats accepted for labels. Detection uses the file content, not
// the client supplied name or header.
var allowedImageFormats = []imageFormat{
	{mime: "image/png", format: "png"},
	{mime: "image/jpeg", format: "jpg"},
	{mime: "image/webp", format: "webp"},
	{mime: "image/svg+xml", format: "svg"},
	{mime: "application/pdf", format: "pdf"},
}

func detectFormat(data []byte) (imageFormat, bool) {
	detected := mimetype.Detect(data)
	for _, candidate := range allowedImageFormats {
		if detected.Is(candidate.mime) {
			return candidate, true
		}
	}
	return imageFormat{mime: detected.String()}, false
}

func (s *service) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*LabelDTO, error) {
	if s.objects == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, storage.ErrNotConfigured, "upload label image")
	}
	if upload.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	label, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	maxBytes := s.media.MaxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(upload.Body, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(data)) > maxBytes {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds %d bytes", maxBytes)
	}
	format, ok := detectFormat(data)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported file type %s", format.mime)
	}

	name := s.objectName(label.ClientID, format.format)
	obj, err := s.objects.Upload(ctx, name, format.mime, bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload label image")
	}
	image := types.LabelImage{
		URL:        obj.URL,
		SecureURL:  secureURL(obj.URL),
		PublicID:   obj.Name,
		Format:     format.format,
		Bytes:      int64(len(data)),
		Filename:   cleanFilename(upload.Filename),
		UploadedAt: s.now().UTC(),
	}

	var updated *models.Label
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if updated, err = repo.FindByIDForUpdate(ctx, id); err != nil {
			return mapFindErr(err)
		}
		updated.Images = append(updated.Images, image)
		if err := repo.Save(ctx, updated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save label image")
		}
		return nil
	})
	if err != nil {
		s.deleteObject(ctx, obj.Name)
		return nil, err
	}
	dto := mapLabelDTO(*updated)
	return &dto, nil
}

func (s *service) DeleteImage(ctx context.Context, id uuid.UUID, publicID string) (*LabelDTO, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "public_id is required")
	}
	var updated *models.Label
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if updated, err = repo.FindByIDForUpdate(ctx, id); err != nil {
			return mapFindErr(err)
		}
		remaining, found := updated.Images.Without(publicID)
		if !found {
			return ErrImageNotFound
		}
		updated.Images = remaining
		if err := repo.Save(ctx, updated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove label image")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.deleteObject(ctx, publicID)
	dto := mapLabelDTO(*updated)
	return &dto, nil
}

func (s *service) objectName(clientID uuid.UUID, format string) string {
	root := strings.Trim(s.media.LabelFolderRoot, "/")
	if root == "" {
		root = "private-labels"
	}
	return fmt.Sprintf("%s/%s/%s.%s", root, clientID, uuid.NewString(), format)
}

func secureURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
