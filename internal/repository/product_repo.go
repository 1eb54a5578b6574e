package repository

import (
	"context"
	"errors"

	"store-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductListFilter struct {
	Query      *string
	CategoryID *uuid.UUID
	OnlyActive bool
	Limit      int
	Offset     int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)

	// m2m связи каталога
	LinkCategory(ctx context.Context, productID, categoryID uuid.UUID) error
	UnlinkCategory(ctx context.Context, productID, categoryID uuid.UUID) (bool, error)
	LinkTag(ctx context.Context, productID, tagID uuid.UUID) error
	LinkSupplier(ctx context.Context, productID, supplierID uuid.UUID) error
	AddImage(ctx context.Context, img *models.ProductImage) error
	ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "lower(sku) = lower(?)", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *productRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.OnlyActive {
		q = q.Where("is_active")
	}
	if f.Query != nil && *f.Query != "" {
		pat := "%" + *f.Query + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ?", pat, pat)
	}
	if f.CategoryID != nil {
		q = q.Where("id IN (SELECT product_id FROM product_categories WHERE category_id = ?)", *f.CategoryID)
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

	var list []models.Product
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *productRepo) LinkCategory(ctx context.Context, productID, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO product_categories (product_id, category_id)
VALUES (@pid, @cid)
ON CONFLICT (product_id, category_id) DO NOTHING
`, map[string]any{"pid": productID, "cid": categoryID}).Error
}

func (r *productRepo) UnlinkCategory(ctx context.Context, productID, categoryID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("product_id = ? AND category_id = ?", productID, categoryID).
		Delete(&models.ProductCategory{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) LinkTag(ctx context.Context, productID, tagID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO product_tags (product_id, tag_id)
VALUES (@pid, @tid)
ON CONFLICT (product_id, tag_id) DO NOTHING
`, map[string]any{"pid": productID, "tid": tagID}).Error
}

func (r *productRepo) LinkSupplier(ctx context.Context, productID, supplierID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO product_suppliers (product_id, supplier_id)
VALUES (@pid, @sid)
ON CONFLICT (product_id, supplier_id) DO NOTHING
`, map[string]any{"pid": productID, "sid": supplierID}).Error
}

func (r *productRepo) AddImage(ctx context.Context, img *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *productRepo) ListImages(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	var list []models.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC, created_at ASC").
		Find(&list).Error
	return list, err
}
