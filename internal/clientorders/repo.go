package clientorders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shohaib1996/better-edible-backend/pkg/db/models"
	"github.com/shohaib1996/better-edible-backend/pkg/enums"
	"github.com/shohaib1996/better-edible-backend/pkg/pagination"
)

// Repository persists client orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.ClientOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error)
	FindChild(ctx context.Context, parentID uuid.UUID) (*models.ClientOrder, error)
	List(ctx context.Context, filter ListFilter) ([]models.ClientOrder, int64, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.ClientOrder, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.ClientOrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DueForProduction(ctx context.Context, today time.Time) ([]uuid.UUID, error)
	ReminderCandidates(ctx context.Context, deliveryDate time.Time) ([]uuid.UUID, error)
	MarkNotificationSent(ctx context.Context, id uuid.UUID, kind enums.ClientOrderNotification) (bool, error)
}

// ListFilter narrows order listings. Date bounds are inclusive.
type ListFilter struct {
	Statuses     []enums.ClientOrderStatus
	ClientID     *uuid.UUID
	RepID        *uuid.UUID
	DeliveryFrom *time.Time
	DeliveryTo   *time.Time
	// Search matches store names case-insensitively.
	Search string
	// OrderBy is a trusted SQL order clause; empty means newest first.
	OrderBy string
	Page    pagination.Params
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

// Create inserts the order and its items. Missing ids are assigned here.
func (r *repository) Create(ctx context.Context, order *models.ClientOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate row-locks the order on Postgres.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.ClientOrder, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}})
	}
	return r.find(query, id)
}

func (r *repository) find(query *gorm.DB, id uuid.UUID) (*models.ClientOrder, error) {
	var order models.ClientOrder
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("client_orders.id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindChild(ctx context.Context, parentID uuid.UUID) (*models.ClientOrder, error) {
	var order models.ClientOrder
	err := r.db.WithContext(ctx).
		Where("parent_order_id = ?", parentID).
		Order("created_at ASC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ClientOrder{})
	if len(filter.Statuses) > 0 {
		query = query.Where("client_orders.status IN ?", filter.Statuses)
	}
	if filter.ClientID != nil {
		query = query.Where("client_orders.client_id = ?", *filter.ClientID)
	}
	if filter.RepID != nil {
		query = query.Where("client_orders.assigned_rep_id = ?", *filter.RepID)
	}
	if filter.DeliveryFrom != nil {
		query = query.Where("client_orders.delivery_date >= ?", *filter.DeliveryFrom)
	}
	if filter.DeliveryTo != nil {
		query = query.Where("client_orders.delivery_date <= ?", *filter.DeliveryTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.
			Joins("JOIN private_label_clients ON private_label_clients.id = client_orders.client_id").
			Joins("JOIN stores ON stores.id = private_label_clients.store_id").
			Where("LOWER(stores.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query.Session(&gorm.Session{})
}

func (r *repository) ordered(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.OrderBy != "" {
		return query.Order(filter.OrderBy).Order("client_orders.order_seq ASC")
	}
	return query.Order("client_orders.created_at DESC").Order("client_orders.order_seq DESC")
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.ClientOrder, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := filter.Page.Normalize()
	var rows []models.ClientOrder
	err := r.ordered(query.Select("client_orders.*"), filter).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every matching order, ignoring pagination.
func (r *repository) ListAll(ctx context.Context, filter ListFilter) ([]models.ClientOrder, error) {
	var rows []models.ClientOrder
	err := r.ordered(r.filtered(ctx, filter).Select("client_orders.*"), filter).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
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

func (r *repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.ClientOrderItem) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.ClientOrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = orderID
		items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&models.ClientOrderItem{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ClientOrder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DueForProduction lists waiting orders, not flagged ship-ASAP, whose
// production start is on or before today.
func (r *repository) DueForProduction(ctx context.Context, today time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("status = ? AND ship_asap = ? AND production_start_date <= ?", enums.ClientOrderWaiting, false, today).
		Order("production_start_date ASC").
		Order("order_seq ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ReminderCandidates lists in-production orders delivering on deliveryDate
// that have not had their seven day reminder.
func (r *repository) ReminderCandidates(ctx context.Context, deliveryDate time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("status IN ?", enums.ProductionStatuses).
		Where("delivery_date = ?", deliveryDate).
		Where("emails_sent_seven_day_reminder = ?", false).
		Order("order_seq ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// MarkNotificationSent sets one emails_sent flag if it is still unset and
// reports whether this call set it.
func (r *repository) MarkNotificationSent(ctx context.Context, id uuid.UUID, kind enums.ClientOrderNotification) (bool, error) {
	column, ok := notificationColumns[kind]
	if !ok {
		return false, ErrUnknownNotification
	}
	result := r.db.WithContext(ctx).
		Model(&models.ClientOrder{}).
		Where("id = ? AND "+column+" = ?", id, false).
		Update(column, true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

var notificationColumns = map[enums.ClientOrderNotification]string{
	enums.NotifyOrderCreated:      "emails_sent_order_created",
	enums.NotifyProductionStarted: "emails_sent_production_started",
	enums.NotifySevenDayReminder:  "emails_sent_seven_day_reminder",
	enums.NotifyReadyToShip:       "emails_sent_ready_to_ship",
	enums.NotifyShipped:           "emails_sent_shipped",
}

// NotificationSent reads the emails_sent flag for kind.
func NotificationSent(order models.ClientOrder, kind enums.ClientOrderNotification) bool {
	switch kind {
	case enums.NotifyOrderCreated:
		return order.EmailsSent.OrderCreated
	case enums.NotifyProductionStarted:
		return order.EmailsSent.ProductionStarted
	case enums.NotifySevenDayReminder:
		return order.EmailsSent.SevenDayReminder
	case enums.NotifyReadyToShip:
		return order.EmailsSent.ReadyToShip
	case enums.NotifyShipped:
		return order.EmailsSent.Shipped
	default:
		return false
	}
}
