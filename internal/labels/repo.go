package labels

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
)

// Repository persists labels.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, label *models.Label) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Label, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Label, error)
	ListByClientForUpdate(ctx context.Context, clientID uuid.UUID) ([]models.Label, error)
	List(ctx context.Context, filter ListFilter) ([]models.Label, int64, error)
	Save(ctx context.Context, label *models.Label) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOrderReferences(ctx context.Context, labelID uuid.UUID) (int64, error)
}

// ListFilter narrows label listings.
type ListFilter struct {
	ClientID *uuid.UUID
	Stage    *enums.LabelStage
	// Search matches flavor names case-insensitively.
	Search string
	Page   pagination.Params
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, label *models.Label) error {
	if label.ID == uuid.Nil {
		label.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	var label models.Label
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByIDForUpdate row-locks the label on Postgres so concurrent stage
// changes append to the history one after another.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	var label models.Label
	if err := r.locking(r.db.WithContext(ctx)).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *repository) ListByClientForUpdate(ctx context.Context, clientID uuid.UUID) ([]models.Label, error) {
	var rows []models.Label
	err := r.locking(r.db.WithContext(ctx)).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Label, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Label{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Stage != nil {
		query = query.Where("current_stage = ?", *filter.Stage)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(flavor_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := filter.Page.Normalize()
	var rows []models.Label
	err := query.
		Order("created_at DESC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Save(ctx context.Context, label *models.Label) error {
	return r.db.WithContext(ctx).Save(label).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Label{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountOrderReferences(ctx context.Context, labelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClientOrderItem{}).
		Where("label_id = ?", labelID).
		Count(&count).Error
	return count, err
}

func (r *repository) locking(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
