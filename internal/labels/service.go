package labels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/internal/directory"
	"github.com/shohaib1996/better-edible-backend/internal/events"
	"github.com/shohaib1996/better-edible-backend/pkg/config"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox"
	"github.com/shohaib1996/better-edible-backend/pkg/outbox/payloads"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
	"github.com/shohaib1996/better-edible-backend/pkg/storage"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

var (
	ErrLabelNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "label not found")
	ErrInvalidStage  = pkgerrors.New(pkgerrors.CodeValidation, "invalid stage")
	ErrLabelInUse    = pkgerrors.New(pkgerrors.CodeStateConflict, "label is referenced by client orders")
	ErrImageNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "label image not found")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type clientLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error)
}

type actorResolver interface {
	Resolve(ctx context.Context, actor types.Actor) (directory.ActorRef, error)
}

// productionEvents receives LabelReachedProduction inside the stage-change
// transaction.
type productionEvents interface {
	PublishLabelReachedProduction(ctx context.Context, tx *gorm.DB, event events.LabelReachedProduction) error
}

// Service manages private label designs and their approval stage.
type Service interface {
	CreateLabel(ctx context.Context, input CreateLabelInput) (*LabelDTO, error)
	GetLabel(ctx context.Context, id uuid.UUID) (*LabelDTO, error)
	ListLabels(ctx context.Context, input ListLabelsInput) (pagination.Result[LabelDTO], error)
	UpdateLabel(ctx context.Context, id uuid.UUID, input UpdateLabelInput) (*LabelDTO, error)
	DeleteLabel(ctx context.Context, id uuid.UUID) error
	UpdateStage(ctx context.Context, id uuid.UUID, input StageInput) (*LabelDTO, error)
	BulkUpdateStage(ctx context.Context, clientID uuid.UUID, input StageInput) (int, error)
	UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*LabelDTO, error)
	DeleteImage(ctx context.Context, id uuid.UUID, publicID string) (*LabelDTO, error)
	Lookup(ctx context.Context, id uuid.UUID) (*models.Label, error)
}

type CreateLabelInput struct {
	ClientID    uuid.UUID
	FlavorName  string
	ProductType string
	// Stage defaults to design_in_progress.
	Stage *enums.LabelStage
	Actor *types.Actor
	Notes string
}

type UpdateLabelInput struct {
	FlavorName  *string
	ProductType *string
}

// StageInput is a requested stage change. Actor is optional.
type StageInput struct {
	Stage enums.LabelStage
	Actor *types.Actor
	Notes string
}

type ListLabelsInput struct {
	ClientID *uuid.UUID
	Stage    *enums.LabelStage
	Search   string
	Page     pagination.Params
}

// ServiceParams groups the label service dependencies.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Outbox    outboxPublisher
	Clients   clientLookup
	Directory actorResolver
	Events    productionEvents
	// Objects may be nil; image uploads then fail with storage.ErrNotConfigured.
	Objects storage.ObjectStore
	Media   config.MediaConfig
	Policy  TransitionPolicy
	Logger  *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	clients   clientLookup
	directory actorResolver
	events    productionEvents
	objects   storage.ObjectStore
	media     config.MediaConfig
	policy    TransitionPolicy
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("labels repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client lookup required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("directory required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event bus required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	policy := params.Policy
	if policy == nil {
		policy = PermissivePolicy{}
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		clients:   params.Clients,
		directory: params.Directory,
		events:    params.Events,
		objects:   params.Objects,
		media:     params.Media,
		policy:    policy,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) CreateLabel(ctx context.Context, input CreateLabelInput) (*LabelDTO, error) {
	flavor := strings.TrimSpace(input.FlavorName)
	if flavor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flavor_name is required")
	}
	productType := strings.TrimSpace(input.ProductType)
	if productType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_type is required")
	}
	stage := enums.LabelStageDesignInProgress
	if input.Stage != nil {
		stage = *input.Stage
	}
	if !stage.IsValid() {
		return nil, ErrInvalidStage
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}
	if _, err := s.clients.Lookup(ctx, input.ClientID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	label := models.Label{
		ClientID:     input.ClientID,
		FlavorName:   flavor,
		ProductType:  productType,
		CurrentStage: stage,
		StageHistory: types.StageHistory{{
			Stage:     stage,
			ChangedBy: input.Actor,
			ChangedAt: now,
			Notes:     strings.TrimSpace(input.Notes),
		}},
		Images: types.LabelImages{},
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &label); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create label")
		}
		if stage == enums.LabelStageReadyForProduction {
			return s.reachedProduction(ctx, tx, label, input.Actor, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapLabelDTO(label)
	return &dto, nil
}

func (s *service) GetLabel(ctx context.Context, id uuid.UUID) (*LabelDTO, error) {
	label, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapLabelDTO(*label)
	for i, entry := range label.StageHistory {
		if entry.ChangedBy == nil {
			continue
		}
		ref, err := s.directory.Resolve(ctx, *entry.ChangedBy)
		if err != nil {
			s.logg.Warn(ctx, "stage history actor unresolved: "+err.Error())
			continue
		}
		dto.StageHistory[i].ChangedBy = &ref
	}
	return &dto, nil
}

func (s *service) Lookup(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	label, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return label, nil
}

func (s *service) ListLabels(ctx context.Context, input ListLabelsInput) (pagination.Result[LabelDTO], error) {
	if input.Stage != nil && !input.Stage.IsValid() {
		return pagination.Result[LabelDTO]{}, ErrInvalidStage
	}
	rows, total, err := s.repo.List(ctx, ListFilter(input))
	if err != nil {
		return pagination.Result[LabelDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list labels")
	}
	items := make([]LabelDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapLabelDTO(row))
	}
	return pagination.NewResult(items, input.Page, total), nil
}

func (s *service) UpdateLabel(ctx context.Context, id uuid.UUID, input UpdateLabelInput) (*LabelDTO, error) {
	var label *models.Label
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if label, err = repo.FindByIDForUpdate(ctx, id); err != nil {
			return mapFindErr(err)
		}
		if input.FlavorName != nil {
			flavor := strings.TrimSpace(*input.FlavorName)
			if flavor == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "flavor_name cannot be empty")
			}
			label.FlavorName = flavor
		}
		if input.ProductType != nil {
			productType := strings.TrimSpace(*input.ProductType)
			if productType == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "product_type cannot be empty")
			}
			label.ProductType = productType
		}
		if err := repo.Save(ctx, label); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update label")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := mapLabelDTO(*label)
	return &dto, nil
}

func (s *service) DeleteLabel(ctx context.Context, id uuid.UUID) error {
	var images types.LabelImages
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		label, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapFindErr(err)
		}
		refs, err := repo.CountOrderReferences(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count label references")
		}
		if refs > 0 {
			return ErrLabelInUse
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete label")
		}
		images = label.Images
		return nil
	})
	if err != nil {
		return err
	}
	for _, img := range images {
		s.deleteObject(ctx, img.PublicID)
	}
	return nil
}

// UpdateStage moves one label to input.Stage and appends a history entry.
func (s *service) UpdateStage(ctx context.Context, id uuid.UUID, input StageInput) (*LabelDTO, error) {
	if !input.Stage.IsValid() {
		return nil, ErrInvalidStage
	}
	if err := validateActor(input.Actor); err != nil {
		return nil, err
	}

	var label *models.Label
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if label, err = repo.FindByIDForUpdate(ctx, id); err != nil {
			return mapFindErr(err)
		}
		return s.applyStage(ctx, tx, repo, label, input)
	})
	if err != nil {
		return nil, err
	}
	dto := mapLabelDTO(*label)
	return &dto, nil
}

// BulkUpdateStage applies input.Stage to every label of the client that is
// not already there and reports how many changed. The batch is atomic.
func (s *service) BulkUpdateStage(ctx context.Context, clientID uuid.UUID, input StageInput) (int, error) {
	if !input.Stage.IsValid() {
		return 0, ErrInvalidStage
	}
	if err := validateActor(input.Actor); err != nil {
		return 0, err
	}
	if _, err := s.clients.Lookup(ctx, clientID); err != nil {
		return 0, err
	}

	changed := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ListByClientForUpdate(ctx, clientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client labels")
		}
		for i := range rows {
			if rows[i].CurrentStage == input.Stage {
				continue
			}
			if err := s.applyStage(ctx, tx, repo, &rows[i], input); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"client_id": clientID.String(),
		"stage":     input.Stage,
		"changed":   changed,
	})
	s.logg.Info(logCtx, "bulk label stage update applied")
	return changed, nil
}

func (s *service) applyStage(ctx context.Context, tx *gorm.DB, repo Repository, label *models.Label, input StageInput) error {
	previous := label.CurrentStage
	if err := s.policy.Allow(previous, input.Stage); err != nil {
		return err
	}
	now := s.now().UTC()
	label.CurrentStage = input.Stage
	label.StageHistory = append(label.StageHistory, types.StageHistoryEntry{
		Stage:     input.Stage,
		ChangedBy: input.Actor,
		ChangedAt: now,
		Notes:     strings.TrimSpace(input.Notes),
	})
	if err := repo.Save(ctx, label); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save label stage")
	}
	if input.Stage == enums.LabelStageReadyForProduction && previous != enums.LabelStageReadyForProduction {
		return s.reachedProduction(ctx, tx, *label, input.Actor, now)
	}
	return nil
}

func (s *service) reachedProduction(ctx context.Context, tx *gorm.DB, label models.Label, actor *types.Actor, at time.Time) error {
	event := events.LabelReachedProduction{
		LabelID:   label.ID,
		ClientID:  label.ClientID,
		ReachedAt: at,
		Actor:     actor,
	}
	if err := s.events.PublishLabelReachedProduction(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate client")
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventLabelReachedProduction,
		AggregateType: enums.AggregateLabel,
		AggregateID:   label.ID,
		Actor:         actor,
		Data: payloads.LabelReachedProductionEvent{
			LabelID:   label.ID,
			ClientID:  label.ClientID,
			ReachedAt: at,
		},
	})
}

func (s *service) deleteObject(ctx context.Context, publicID string) {
	if s.objects == nil || publicID == "" {
		return
	}
	if err := s.objects.Delete(ctx, publicID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "public_id", publicID), "label image delete failed: "+err.Error())
	}
}

func validateActor(actor *types.Actor) error {
	if actor == nil {
		return nil
	}
	if err := actor.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor")
	}
	return nil
}

func mapFindErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrLabelNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load label")
}
