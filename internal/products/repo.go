package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
)

// Repository persists private label product registry entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.PrivateLabelProduct) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PrivateLabelProduct, error)
	FindActiveByName(ctx context.Context, name string) (*models.PrivateLabelProduct, error)
	List(ctx context.Context, filter ListFilter) ([]models.PrivateLabelProduct, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// ListFilter narrows registry listings.
type ListFilter struct {
	ActiveOnly bool
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

func (r *repository) Create(ctx context.Context, product *models.PrivateLabelProduct) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PrivateLabelProduct, error) {
	var product models.PrivateLabelProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByName matches name exactly, case included.
func (r *repository) FindActiveByName(ctx context.Context, name string) (*models.PrivateLabelProduct, error) {
	var product models.PrivateLabelProduct
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.PrivateLabelProduct, error) {
	query := r.db.WithContext(ctx).Model(&models.PrivateLabelProduct{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.PrivateLabelProduct
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.PrivateLabelProduct{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
