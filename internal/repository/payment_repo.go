package repository

import (
	"context"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepo interface {
	// Платежи append-only: только Create, никаких Update/Delete
	Create(ctx context.Context, p *models.Payment) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	// SumSucceededByOrder — агрегат, открывающий переход pending -> paid
	SumSucceededByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) PaymentRepo { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *paymentRepo) SumSucceededByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_cents),0)").
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusSuccess).
		Scan(&total).Error
	return total, err
}

type ShipmentRepo interface {
	Create(ctx context.Context, s *models.Shipment) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error)
	// MarkShipped: pending -> shipped, попутно проставляя перевозчика и трек
	MarkShipped(ctx context.Context, id uuid.UUID, carrier, tracking *string) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
}

type shipmentRepo struct{ db *gorm.DB }

func NewShipmentRepo(db *gorm.DB) ShipmentRepo { return &shipmentRepo{db: db} }

func (r *shipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shipmentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	var list []models.Shipment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *shipmentRepo) MarkShipped(ctx context.Context, id uuid.UUID, carrier, tracking *string) (bool, error) {
	fields := map[string]any{"status": models.ShipmentStatusShipped, "shipped_at": gorm.Expr("now()")}
	if carrier != nil {
		fields["carrier"] = *carrier
	}
	if tracking != nil {
		fields["tracking_number"] = *tracking
	}
	tx := r.db.WithContext(ctx).Model(&models.Shipment{}).
		Where("id = ? AND status = ?", id, models.ShipmentStatusPending).
		Updates(fields)
	return tx.RowsAffected > 0, tx.Error
}

func (r *shipmentRepo) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Shipment{}).
		Where("id = ? AND status = ?", id, models.ShipmentStatusShipped).
		Updates(map[string]any{"status": models.ShipmentStatusDelivered, "delivered_at": gorm.Expr("now()")})
	return tx.RowsAffected > 0, tx.Error
}
