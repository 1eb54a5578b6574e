package repository

import (
	"context"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepo interface {
	// Upsert «ожидаемую» запись (для идемпотентности)
	UpsertPending(ctx context.Context, orderID, productID uuid.UUID, qty int64) error
	MarkReserved(ctx context.Context, orderID, productID uuid.UUID) (bool, error)
	MarkReleased(ctx context.Context, orderID, productID uuid.UUID) (bool, error)
	MarkConsumed(ctx context.Context, orderID, productID uuid.UUID) (bool, error)

	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error)
	CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type reservationRepo struct{ db *gorm.DB }

func NewReservationRepo(db *gorm.DB) ReservationRepo { return &reservationRepo{db: db} }

func (r *reservationRepo) UpsertPending(ctx context.Context, orderID, productID uuid.UUID, qty int64) error {
	rec := models.Reservation{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		Status:    models.ReservationPending,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": qty, "status": models.ReservationPending}),
		}).
		Create(&rec).Error
}

func (r *reservationRepo) mark(ctx context.Context, orderID, productID uuid.UUID, st models.ReservationStatus) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Update("status", st)
	return tx.RowsAffected > 0, tx.Error
}

func (r *reservationRepo) MarkReserved(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	return r.mark(ctx, orderID, productID, models.ReservationReserved)
}

func (r *reservationRepo) MarkReleased(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	return r.mark(ctx, orderID, productID, models.ReservationReleased)
}

func (r *reservationRepo) MarkConsumed(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	return r.mark(ctx, orderID, productID, models.ReservationConsumed)
}

func (r *reservationRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Reservation, error) {
	var list []models.Reservation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *reservationRepo) CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("product_id = ? AND status = ?", productID, models.ReservationReserved).
		Count(&cnt).Error
	return cnt, err
}
