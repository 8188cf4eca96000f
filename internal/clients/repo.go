package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
	"github.com/shohaib1996/better-edible-backend/pkg/types"
)

// Repository persists private label clients.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client *models.PrivateLabelClient) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error)
	List(ctx context.Context, filter ListFilter) ([]models.PrivateLabelClient, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	ActivateIfOnboarding(ctx context.Context, id uuid.UUID) (bool, error)
	CountOrdersInStatuses(ctx context.Context, clientID uuid.UUID, statuses []enums.ClientOrderStatus) (int64, error)
	DeleteLabels(ctx context.Context, clientID uuid.UUID) ([]types.LabelImage, error)
}

// ListFilter narrows client listings.
type ListFilter struct {
	Status *enums.PrivateLabelClientStatus
	RepID  *uuid.UUID
	// Search matches store names case-insensitively.
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

func (r *repository) Create(ctx context.Context, client *models.PrivateLabelClient) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PrivateLabelClient, error) {
	var client models.PrivateLabelClient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.PrivateLabelClient, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PrivateLabelClient{})
	if filter.Status != nil {
		query = query.Where("private_label_clients.status = ?", *filter.Status)
	}
	if filter.RepID != nil {
		query = query.Where("private_label_clients.assigned_rep_id = ?", *filter.RepID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.
			Joins("JOIN stores ON stores.id = private_label_clients.store_id").
			Where("LOWER(stores.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rows []models.PrivateLabelClient
	err := query.
		Select("private_label_clients.*").
		Order("private_label_clients.created_at DESC").
		Order("private_label_clients.id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.PrivateLabelClient{}).
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

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PrivateLabelClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActivateIfOnboarding flips onboarding to active with a conditional update,
// so concurrent or repeated calls activate at most once.
func (r *repository) ActivateIfOnboarding(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PrivateLabelClient{}).
		Where("id = ? AND status = ?", id, enums.PrivateLabelClientOnboarding).
		Update("status", enums.PrivateLabelClientActive)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) CountOrdersInStatuses(ctx context.Context, clientID uuid.UUID, statuses []enums.ClientOrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("client_id = ? AND status IN ?", clientID, statuses).
		Count(&count).Error
	return count, err
}

// DeleteLabels removes every label of the client and returns the images they
// carried so stored objects can be cleaned up after commit.
func (r *repository) DeleteLabels(ctx context.Context, clientID uuid.UUID) ([]types.LabelImage, error) {
	var labels []models.Label
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Find(&labels).Error; err != nil {
		return nil, err
	}
	var images []types.LabelImage
	for _, label := range labels {
		images = append(images, label.Images...)
	}
	if len(labels) == 0 {
		return images, nil
	}
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Delete(&models.Label{}).Error; err != nil {
		return nil, err
	}
	return images, nil
}
