package repository

import (
	"context"
	"errors"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressRepo interface {
	Create(ctx context.Context, a *models.Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Смена дефолта двумя UPDATE-ами в одной транзакции вызывающего:
	// сначала снять старый флаг, затем поставить новый
	ClearDefaultShipping(ctx context.Context, userID uuid.UUID) error
	SetDefaultShipping(ctx context.Context, id, userID uuid.UUID) (bool, error)
	ClearDefaultBilling(ctx context.Context, userID uuid.UUID) error
	SetDefaultBilling(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type addressRepo struct{ db *gorm.DB }

func NewAddressRepo(db *gorm.DB) AddressRepo { return &addressRepo{db: db} }

func (r *addressRepo) Create(ctx context.Context, a *models.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *addressRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var a models.Address
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *addressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var list []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *addressRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Address{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *addressRepo) ClearDefaultShipping(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).
		Where("user_id = ? AND is_default_shipping", userID).
		Update("is_default_shipping", false).Error
}

func (r *addressRepo) SetDefaultShipping(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_default_shipping", true)
	return tx.RowsAffected > 0, tx.Error
}

func (r *addressRepo) ClearDefaultBilling(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).
		Where("user_id = ? AND is_default_billing", userID).
		Update("is_default_billing", false).Error
}

func (r *addressRepo) SetDefaultBilling(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_default_billing", true)
	return tx.RowsAffected > 0, tx.Error
}
