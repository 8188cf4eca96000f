package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db"
	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	pkgerrors "github.com/shohaib1996/better-edible-backend/pkg/errors"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
	"github.com/shohaib1996/better-edible-backend/pkg/storage"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

var (
	ErrClientNotFound         = pkgerrors.New(pkgerrors.CodeNotFound, "private label client not found")
	ErrClientExists           = pkgerrors.New(pkgerrors.CodeConflict, "store is already a private label client")
	ErrIntervalRequired       = pkgerrors.New(pkgerrors.CodeValidation, "recurring interval is required when the schedule is enabled")
	ErrClientHasActiveOrders  = pkgerrors.New(pkgerrors.CodeStateConflict, "client has orders in production")
	errContactEmailIsRequired = pkgerrors.New(pkgerrors.CodeValidation, "contact_email is required")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// directoryReader is the slice of the actor directory clients rely on.
type directoryReader interface {
	Store(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Rep(ctx context.Context, id uuid.UUID) (*models.Rep, error)
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	RepNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service manages private label client enrollment.
type Service interface {
	CreateClient(ctx context.Context, input CreateClientInput) (*ClientDTO, error)
	GetClient(ctx context.Context, id uuid.UUID) (*ClientDTO, error)
	ListClients(ctx context.Context, input ListClientsInput) (pagination.Result[ClientDTO], error)
	UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*ClientDTO, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	Lookup(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error)
}

// RecurringInput is the recurring schedule as submitted by an operator.
type RecurringInput struct {
	Enabled  bool
	Interval *enums.RecurringInterval
}

type CreateClientInput struct {
	StoreID       uuid.UUID
	ContactEmail  string
	AssignedRepID *uuid.UUID
	Recurring     RecurringInput
}

type UpdateClientInput struct {
	ContactEmail  *string
	AssignedRepID *uuid.UUID
	// ClearRep unassigns the rep; it wins over AssignedRepID.
	ClearRep  bool
	Status    *enums.PrivateLabelClientStatus
	Recurring *RecurringInput
}

type ListClientsInput struct {
	Status *enums.PrivateLabelClientStatus
	RepID  *uuid.UUID
	Search string
	Page   pagination.Params
}

type service struct {
	repo      Repository
	tx        txRunner
	directory directoryReader
	objects   storage.ObjectStore
	logg      *logger.Logger
}

// NewService wires the client service. objects may be nil, in which case
// label artwork is left in the bucket when a client is deleted.
func NewService(repo Repository, tx txRunner, directory directoryReader, objects storage.ObjectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if directory == nil {
		return nil, fmt.Errorf("directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, directory: directory, objects: objects, logg: logg}, nil
}

func (s *service) CreateClient(ctx context.Context, input CreateClientInput) (*ClientDTO, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id is required")
	}
	email := strings.TrimSpace(input.ContactEmail)
	if email == "" {
		return nil, errContactEmailIsRequired
	}
	if err := validateRecurring(input.Recurring); err != nil {
		return nil, err
	}
	if _, err := s.directory.Store(ctx, input.StoreID); err != nil {
		return nil, err
	}
	if input.AssignedRepID != nil {
		if _, err := s.directory.Rep(ctx, *input.AssignedRepID); err != nil {
			return nil, err
		}
	}

	client := models.PrivateLabelClient{
		StoreID:           input.StoreID,
		Status:            enums.PrivateLabelClientOnboarding,
		ContactEmail:      email,
		AssignedRepID:     input.AssignedRepID,
		RecurringEnabled:  input.Recurring.Enabled,
		RecurringInterval: input.Recurring.Interval,
	}
	if err := s.repo.Create(ctx, &client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrClientExists
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}
	s.logg.Info(s.logg.WithClientID(ctx, client.ID.String()), "private label client created")
	return s.enrich(ctx, client)
}

func (s *service) GetClient(ctx context.Context, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, *client)
}

func (s *service) Lookup(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	return client, nil
}

func (s *service) ListClients(ctx context.Context, input ListClientsInput) (pagination.Result[ClientDTO], error) {
	rows, total, err := s.repo.List(ctx, ListFilter(input))
	if err != nil {
		return pagination.Result[ClientDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list clients")
	}
	storeIDs := make([]uuid.UUID, 0, len(rows))
	repIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		storeIDs = append(storeIDs, row.StoreID)
		if row.AssignedRepID != nil {
			repIDs = append(repIDs, *row.AssignedRepID)
		}
	}
	storeNames, err := s.directory.StoreNames(ctx, storeIDs)
	if err != nil {
		return pagination.Result[ClientDTO]{}, err
	}
	repNames, err := s.directory.RepNames(ctx, repIDs)
	if err != nil {
		return pagination.Result[ClientDTO]{}, err
	}
	items := make([]ClientDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapClientDTO(row, storeNames, repNames))
	}
	return pagination.NewResult(items, input.Page, total), nil
}

func (s *service) UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*ClientDTO, error) {
	current, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.ContactEmail != nil {
		email := strings.TrimSpace(*input.ContactEmail)
		if email == "" {
			return nil, errContactEmailIsRequired
		}
		updates["contact_email"] = email
	}
	switch {
	case input.ClearRep:
		updates["assigned_rep_id"] = nil
	case input.AssignedRepID != nil:
		if _, err := s.directory.Rep(ctx, *input.AssignedRepID); err != nil {
			return nil, err
		}
		updates["assigned_rep_id"] = *input.AssignedRepID
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", *input.Status)
		}
		updates["status"] = *input.Status
	}
	if input.Recurring != nil {
		merged := *input.Recurring
		if merged.Interval == nil {
			merged.Interval = current.RecurringInterval
		}
		if err := validateRecurring(merged); err != nil {
			return nil, err
		}
		updates["recurring_enabled"] = merged.Enabled
		updates["recurring_interval"] = merged.Interval
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update client")
	}
	return s.GetClient(ctx, id)
}

// DeleteClient removes the client and its labels. Orders are kept as history.
func (s *service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	var images []types.LabelImage
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
		}
		active, err := repo.CountOrdersInStatuses(ctx, id, enums.ProductionStatuses)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count client orders")
		}
		if active > 0 {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrClientHasActiveOrders,
				fmt.Sprintf("client has %d orders in production", active))
		}
		if images, err = repo.DeleteLabels(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client labels")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logCtx := s.logg.WithClientID(ctx, id.String())
	s.purgeImages(logCtx, images)
	s.logg.Info(logCtx, "private label client deleted")
	return nil
}

// purgeImages deletes stored artwork best-effort; failures are only logged.
func (s *service) purgeImages(ctx context.Context, images []types.LabelImage) {
	if s.objects == nil {
		return
	}
	for _, img := range images {
		if err := s.objects.Delete(ctx, img.PublicID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "public_id", img.PublicID), "label image delete failed: "+err.Error())
		}
	}
}

func (s *service) enrich(ctx context.Context, client models.PrivateLabelClient) (*ClientDTO, error) {
	storeNames, err := s.directory.StoreNames(ctx, []uuid.UUID{client.StoreID})
	if err != nil {
		return nil, err
	}
	var repNames map[uuid.UUID]string
	if client.AssignedRepID != nil {
		if repNames, err = s.directory.RepNames(ctx, []uuid.UUID{*client.AssignedRepID}); err != nil {
			return nil, err
		}
	}
	dto := mapClientDTO(client, storeNames, repNames)
	return &dto, nil
}

func validateRecurring(input RecurringInput) error {
	if input.Interval != nil && !input.Interval.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid recurring interval %q", *input.Interval)
	}
	if input.Enabled && input.Interval == nil {
		return ErrIntervalRequired
	}
	return nil
}
