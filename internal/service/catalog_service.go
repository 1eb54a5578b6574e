package service

import (
	"context"
	"strings"
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
)

type ProductInput struct {
	SKU          string
	Name         string
	Description  string
	PriceCents   int64
	CurrencyCode string
	IsActive     bool
}

type ProductPatch struct {
	SKU         *string
	Name        *string
	Description *string
	PriceCents  *int64
	IsActive    *bool
}

type CatalogService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewCatalogService(repo *repository.Repository) *CatalogService {
	return &CatalogService{repo: repo, now: time.Now}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.PriceCents < 0 {
		return nil, ErrPriceInvalid
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, ErrValidation
	}

	p := &models.Product{
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		IsActive:    in.IsActive,
	}
	if in.CurrencyCode != "" {
		p.CurrencyCode = in.CurrencyCode
	}

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		if existing, err := tx.Products.GetBySKU(ctx, sku); err != nil {
			return err
		} else if existing != nil {
			return ErrSKUAlreadyExists
		}
		if err := tx.Products.Create(ctx, p); err != nil {
			return translateDBErr(err, ErrSKUAlreadyExists, nil)
		}
		// 1:1 строка склада сразу при создании товара
		return tx.Inventories.EnsureRow(ctx, p.ID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, patch ProductPatch) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]any{}
	if patch.SKU != nil {
		fields["sku"] = strings.TrimSpace(*patch.SKU)
	}
	if patch.Name != nil {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.PriceCents != nil {
		if *patch.PriceCents < 0 {
			return nil, ErrPriceInvalid
		}
		fields["price_cents"] = *patch.PriceCents
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}
	if len(fields) == 0 {
		return p, nil
	}
	fields["updated_at"] = s.now()

	if v, ok := fields["sku"]; ok {
		newSKU := v.(string)
		if existing, err := s.repo.Products.GetBySKU(ctx, newSKU); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != p.ID {
			return nil, ErrSKUAlreadyExists
		}
	}

	if err := s.repo.Products.UpdateFields(ctx, productID, fields); err != nil {
		return nil, translateDBErr(err, ErrSKUAlreadyExists, nil)
	}
	return s.repo.Products.GetByID(ctx, productID)
}

func (s *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.Products.List(ctx, f)
}

// DeleteProduct: с живыми холдами товар не удаляется; история заказов
// держит товар через RESTRICT — это ошибка целостности, не тихий пропуск.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	p, err := s.repo.Products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrProductNotFound
	}

	active, err := s.repo.Reservations.CountActiveByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	if active > 0 {
		return false, ErrProductReserved
	}

	ok, err := s.repo.Products.Delete(ctx, productID)
	return ok, translateDBErr(err, nil, ErrIntegrity)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	c := &models.Category{Name: name, ParentID: parentID}
	if err := s.repo.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, translateDBErr(err, ErrConflict, nil)
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := s.repo.DB.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if tx.Error != nil {
		return false, translateDBErr(tx.Error, nil, ErrCategoryInUse)
	}
	return tx.RowsAffected > 0, nil
}

func (s *CatalogService) CreateSupplier(ctx context.Context, name string, email *string) (*models.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	sup := &models.Supplier{Name: name, Email: email}
	if err := s.repo.DB.WithContext(ctx).Create(sup).Error; err != nil {
		return nil, translateDBErr(err, ErrConflict, nil)
	}
	return sup, nil
}

func (s *CatalogService) DeleteSupplier(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := s.repo.DB.WithContext(ctx).Delete(&models.Supplier{}, "id = ?", id)
	if tx.Error != nil {
		return false, translateDBErr(tx.Error, nil, ErrSupplierInUse)
	}
	return tx.RowsAffected > 0, nil
}

func (s *CatalogService) LinkCategory(ctx context.Context, productID, categoryID uuid.UUID) error {
	return translateDBErr(s.repo.Products.LinkCategory(ctx, productID, categoryID), nil, ErrNotFound)
}

func (s *CatalogService) UnlinkCategory(ctx context.Context, productID, categoryID uuid.UUID) error {
	ok, err := s.repo.Products.UnlinkCategory(ctx, productID, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) LinkTag(ctx context.Context, productID, tagID uuid.UUID) error {
	return translateDBErr(s.repo.Products.LinkTag(ctx, productID, tagID), nil, ErrNotFound)
}

func (s *CatalogService) LinkSupplier(ctx context.Context, productID, supplierID uuid.UUID) error {
	return translateDBErr(s.repo.Products.LinkSupplier(ctx, productID, supplierID), nil, ErrNotFound)
}

func (s *CatalogService) AddImage(ctx context.Context, productID uuid.UUID, url string, position int32) (*models.ProductImage, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrValidation
	}
	img := &models.ProductImage{ProductID: productID, URL: url, Position: position}
	if err := s.repo.Products.AddImage(ctx, img); err != nil {
		return nil, translateDBErr(err, nil, ErrProductNotFound)
	}
	return img, nil
}
