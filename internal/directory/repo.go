package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
)

// Repository reads the store, rep and admin tables. Those records are owned
// by other systems; nothing here writes them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindRep(ctx context.Context, id uuid.UUID) (*models.Rep, error)
	FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	RepNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
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

func (r *repository) FindStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) FindRep(ctx context.Context, id uuid.UUID) (*models.Rep, error) {
	var rep models.Rep
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repository) FindAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

type nameRow struct {
	ID   uuid.UUID
	Name string
}

func (r *repository) StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.names(ctx, &models.Store{}, ids)
}

func (r *repository) RepNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.names(ctx, &models.Rep{}, ids)
}

func (r *repository) names(ctx context.Context, model any, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []nameRow
	if err := r.db.WithContext(ctx).Model(model).Select("id", "name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}
