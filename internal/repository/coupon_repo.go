package repository

import (
	"context"
	"errors"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CouponRepo interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)

	// TryConsume: used_count += 1 под лимитом — условный UPDATE,
	// исчерпанный купон даёт 0 строк
	TryConsume(ctx context.Context, id uuid.UUID) (bool, error)
	// LinkOrder: составной PK (order_id, coupon_id) — двойное применение
	// к одному заказу упирается в duplicate key
	LinkOrder(ctx context.Context, orderID, couponID uuid.UUID, discountCents int64) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCoupon, error)
}

type couponRepo struct{ db *gorm.DB }

func NewCouponRepo(db *gorm.DB) CouponRepo { return &couponRepo{db: db} }

func (r *couponRepo) Create(ctx context.Context, c *models.Coupon) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.WithContext(ctx).First(&c, "lower(code) = lower(?)", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *couponRepo) TryConsume(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE coupons
SET used_count = used_count + 1,
    updated_at = now()
WHERE id = @id
  AND is_active
  AND (max_uses IS NULL OR used_count < max_uses)
`, map[string]any{"id": id})
	return tx.RowsAffected > 0, tx.Error
}

func (r *couponRepo) LinkOrder(ctx context.Context, orderID, couponID uuid.UUID, discountCents int64) error {
	return r.db.WithContext(ctx).Create(&models.OrderCoupon{
		OrderID:       orderID,
		CouponID:      couponID,
		DiscountCents: discountCents,
	}).Error
}

func (r *couponRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderCoupon, error) {
	var list []models.OrderCoupon
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&list).Error
	return list, err
}

type CounterRepo interface {
	// Next — атомарный инкремент именованного счётчика.
	// Никакого MAX(id)+1: под конкуренцией это гонка.
	Next(ctx context.Context, name string) (int64, error)
}

type counterRepo struct{ db *gorm.DB }

func NewCounterRepo(db *gorm.DB) CounterRepo { return &counterRepo{db: db} }

func (r *counterRepo) Next(ctx context.Context, name string) (int64, error) {
	var val int64
	err := r.db.WithContext(ctx).Raw(`
UPDATE counters
SET value = value + 1
WHERE name = @name
RETURNING value
`, map[string]any{"name": name}).Scan(&val).Error
	if err != nil {
		return 0, err
	}
	if val == 0 {
		return 0, gorm.ErrRecordNotFound // счётчик не засеян
	}
	return val, nil
}
