package repository

import (
	"context"
	"errors"
	"time"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

// OrderSummary — строка сводки заказов. Пользовательские поля nullable:
// LEFT JOIN не теряет заказы без пользователя.
type OrderSummary struct {
	OrderID       uuid.UUID          `gorm:"column:order_id"`
	OrderNumber   string             `gorm:"column:order_number"`
	Status        models.OrderStatus `gorm:"column:status"`
	TotalCents    int64              `gorm:"column:total_cents"`
	CurrencyCode  string             `gorm:"column:currency_code"`
	CreatedAt     time.Time          `gorm:"column:created_at"`
	CustomerEmail *string            `gorm:"column:customer_email"`
	CustomerName  *string            `gorm:"column:customer_name"`
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)

	// UpdateStatusFrom — переход со status-guard: две гонящиеся транзакции
	// не применят один переход дважды
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, reason *string) (bool, error)

	ListSummaries(ctx context.Context, limit, offset int) ([]OrderSummary, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "order_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *orderRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, reason *string) (bool, error) {
	upd := map[string]any{"status": to, "updated_at": gorm.Expr("now()")}
	if reason != nil {
		upd["cancel_reason"] = reason
	}
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) ListSummaries(ctx context.Context, limit, offset int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var rows []OrderSummary
	err := r.db.WithContext(ctx).Raw(`
SELECT o.id           AS order_id,
       o.order_number AS order_number,
       o.status       AS status,
       o.total_cents  AS total_cents,
       o.currency_code AS currency_code,
       o.created_at   AS created_at,
       u.email        AS customer_email,
       u.full_name    AS customer_name
FROM orders o
LEFT JOIN users u ON u.id = o.user_id
ORDER BY o.created_at DESC
LIMIT @lim OFFSET @off
`, map[string]any{"lim": limit, "off": offset}).Scan(&rows).Error
	return rows, err
}

// Чтение позиций идёт через Preload на заказе, отдельный Get не нужен.
type OrderItemRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderItem) error
}

type orderItemRepo struct{ db *gorm.DB }

func NewOrderItemRepo(db *gorm.DB) OrderItemRepo { return &orderItemRepo{db: db} }

func (r *orderItemRepo) BulkCreate(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
