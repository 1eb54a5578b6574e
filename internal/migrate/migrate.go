package migrate

import (
	"context"

	"store-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, uuid-ossp, pg_trgm
	CreateChecks           bool // CHECK-constraint'ы
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через Exec после AutoMigrate
	CreateUpdatedAtTrigger bool // триггеры updated_at
	CreateSearchIndexes    bool // GIN trgm для поиска по name/sku
	SeedReferenceData      bool // роли и счётчик номеров заказов
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
		CreateSearchIndexes:    true,
		SeedReferenceData:      true,
	}
}

// MigrateStoreDB разворачивает полную схему магазина: каталог, склад,
// корзины, заказы, платежи, отгрузки, купоны и справочники.
func MigrateStoreDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы магазина")

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		for _, q := range []string{
			`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
			`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
			`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
		} {
			if err := db.Exec(q).Error; err != nil {
				log.Error("extension error", zap.String("sql", q), zap.Error(err))
				return err
			}
		}
		log.Info("Расширения созданы")
	}

	log.Info("Создание таблиц")
	if err := db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.UserRole{}, &models.Address{},
		&models.Product{}, &models.Category{}, &models.ProductCategory{},
		&models.Tag{}, &models.ProductTag{},
		&models.Supplier{}, &models.ProductSupplier{}, &models.ProductImage{},
		&models.Inventory{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.Reservation{},
		&models.Payment{}, &models.Shipment{},
		&models.Coupon{}, &models.OrderCoupon{},
		&models.Counter{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}
	log.Info("Таблицы созданы")

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;
`).Error; err != nil {
			log.Error("trigger fn error", zap.Error(err))
			return err
		}
		for _, table := range []string{
			"users", "addresses", "products", "inventories",
			"carts", "cart_items", "orders", "reservations", "shipments", "coupons",
		} {
			if err := db.Exec(`
DROP TRIGGER IF EXISTS trg_` + table + `_updated ON ` + table + `;
CREATE TRIGGER trg_` + table + `_updated BEFORE UPDATE ON ` + table + `
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
				log.Error("trigger error", zap.String("table", table), zap.Error(err))
				return err
			}
		}
		log.Info("Триггеры созданы")
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")
		for name, q := range map[string]string{
			"products.price": `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_price_non_negative,
	ADD CONSTRAINT chk_products_price_non_negative CHECK (price_cents >= 0);`,
			"inventories.bounds": `
ALTER TABLE inventories
	DROP CONSTRAINT IF EXISTS chk_inventories_bounds,
	ADD CONSTRAINT chk_inventories_bounds
	CHECK (quantity >= 0 AND reserved >= 0 AND reserved <= quantity);`,
			"cart_items.qty": `
ALTER TABLE cart_items
	DROP CONSTRAINT IF EXISTS chk_cart_items_quantity_gt_zero,
	ADD CONSTRAINT chk_cart_items_quantity_gt_zero CHECK (quantity > 0);`,
			"carts.status": `
ALTER TABLE carts
	DROP CONSTRAINT IF EXISTS chk_carts_status_allowed,
	ADD CONSTRAINT chk_carts_status_allowed
	CHECK (status IN ('active','converted'));`,
			"orders.money": `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_money,
	ADD CONSTRAINT chk_orders_money
	CHECK (subtotal_cents >= 0 AND shipping_cents >= 0 AND tax_cents >= 0
	   AND discount_cents >= 0 AND total_cents >= 0
	   AND total_cents = subtotal_cents + shipping_cents + tax_cents - discount_cents);`,
			"orders.status": `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_status_allowed,
	ADD CONSTRAINT chk_orders_status_allowed
	CHECK (status IN ('pending','paid','processing','shipped','delivered','cancelled','refunded'));`,
			"order_items.line": `
ALTER TABLE order_items
	DROP CONSTRAINT IF EXISTS chk_order_items_line,
	ADD CONSTRAINT chk_order_items_line
	CHECK (quantity > 0 AND unit_price_cents >= 0
	   AND line_total_cents = unit_price_cents * quantity);`,
			"payments.amount": `
ALTER TABLE payments
	DROP CONSTRAINT IF EXISTS chk_payments_amount_non_negative,
	ADD CONSTRAINT chk_payments_amount_non_negative CHECK (amount_cents >= 0);`,
			"payments.status": `
ALTER TABLE payments
	DROP CONSTRAINT IF EXISTS chk_payments_status_allowed,
	ADD CONSTRAINT chk_payments_status_allowed
	CHECK (status IN ('pending','success','failed','refunded'));`,
			"shipments.status": `
ALTER TABLE shipments
	DROP CONSTRAINT IF EXISTS chk_shipments_status_allowed,
	ADD CONSTRAINT chk_shipments_status_allowed
	CHECK (status IN ('pending','shipped','delivered'));`,
			"coupons.value": `
ALTER TABLE coupons
	DROP CONSTRAINT IF EXISTS chk_coupons_value,
	ADD CONSTRAINT chk_coupons_value
	CHECK (discount_value >= 0
	   AND (discount_type <> 'percent' OR discount_value <= 100));`,
			"coupons.type": `
ALTER TABLE coupons
	DROP CONSTRAINT IF EXISTS chk_coupons_type_allowed,
	ADD CONSTRAINT chk_coupons_type_allowed
	CHECK (discount_type IN ('percent','fixed'));`,
			"coupons.usage": `
ALTER TABLE coupons
	DROP CONSTRAINT IF EXISTS chk_coupons_usage_cap,
	ADD CONSTRAINT chk_coupons_usage_cap
	CHECK (used_count >= 0 AND (max_uses IS NULL OR used_count <= max_uses));`,
			"reservations.qty": `
ALTER TABLE reservations
	DROP CONSTRAINT IF EXISTS chk_reservations_quantity_gt_zero,
	ADD CONSTRAINT chk_reservations_quantity_gt_zero CHECK (quantity > 0);`,
			"reservations.status": `
ALTER TABLE reservations
	DROP CONSTRAINT IF EXISTS chk_reservations_status_allowed,
	ADD CONSTRAINT chk_reservations_status_allowed
	CHECK (status IN ('PENDING','RESERVED','RELEASED','CONSUMED'));`,
		} {
			if err := db.Exec(q).Error; err != nil {
				log.Error("chk error", zap.String("check", name), zap.Error(err))
				return err
			}
		}
		log.Info("CHECK-и созданы")
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов и уникальностей")
		for _, q := range []string{
			// кейс-инсensitive уникальности
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (lower(email));`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_products_sku ON products (lower(sku));`,
			// не больше одной активной корзины на владельца
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_active_user
 ON carts (user_id) WHERE status = 'active' AND user_id IS NOT NULL;`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_active_session
 ON carts (session_token) WHERE status = 'active' AND session_token IS NOT NULL;`,
			// сортировки для списков
			`CREATE INDEX IF NOT EXISTS ix_orders_user_created ON orders (user_id, created_at DESC);`,
			`CREATE INDEX IF NOT EXISTS ix_orders_status_created ON orders (status, created_at DESC);`,
			`CREATE INDEX IF NOT EXISTS ix_payments_order_created ON payments (order_id, created_at DESC);`,
		} {
			if err := db.Exec(q).Error; err != nil {
				log.Error("index error", zap.String("sql", q), zap.Error(err))
				return err
			}
		}
		log.Info("Индексы созданы")
	}

	if opt.CreateSearchIndexes {
		log.Info("Создание GIN(trgm) индексов для поиска")
		for _, q := range []string{
			`CREATE INDEX IF NOT EXISTS gin_products_name_trgm ON products USING gin (name gin_trgm_ops);`,
			`CREATE INDEX IF NOT EXISTS gin_products_sku_trgm ON products USING gin (sku gin_trgm_ops);`,
		} {
			if err := db.Exec(q).Error; err != nil {
				log.Error("gin error", zap.Error(err))
				return err
			}
		}
		log.Info("GIN индексы созданы")
	}

	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")
		for name, q := range map[string]string{
			// справочники в работе удалять нельзя — RESTRICT, ошибка наружу
			"user_roles.user": `
ALTER TABLE user_roles
  DROP CONSTRAINT IF EXISTS fk_user_roles_user,
  ADD CONSTRAINT fk_user_roles_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;`,
			"user_roles.role": `
ALTER TABLE user_roles
  DROP CONSTRAINT IF EXISTS fk_user_roles_role,
  ADD CONSTRAINT fk_user_roles_role
    FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE RESTRICT;`,
			"addresses.user": `
ALTER TABLE addresses
  DROP CONSTRAINT IF EXISTS fk_addresses_user,
  ADD CONSTRAINT fk_addresses_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;`,
			"product_categories.product": `
ALTER TABLE product_categories
  DROP CONSTRAINT IF EXISTS fk_product_categories_product,
  ADD CONSTRAINT fk_product_categories_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			"product_categories.category": `
ALTER TABLE product_categories
  DROP CONSTRAINT IF EXISTS fk_product_categories_category,
  ADD CONSTRAINT fk_product_categories_category
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT;`,
			"product_tags.product": `
ALTER TABLE product_tags
  DROP CONSTRAINT IF EXISTS fk_product_tags_product,
  ADD CONSTRAINT fk_product_tags_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			"product_tags.tag": `
ALTER TABLE product_tags
  DROP CONSTRAINT IF EXISTS fk_product_tags_tag,
  ADD CONSTRAINT fk_product_tags_tag
    FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE;`,
			"product_suppliers.product": `
ALTER TABLE product_suppliers
  DROP CONSTRAINT IF EXISTS fk_product_suppliers_product,
  ADD CONSTRAINT fk_product_suppliers_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			"product_suppliers.supplier": `
ALTER TABLE product_suppliers
  DROP CONSTRAINT IF EXISTS fk_product_suppliers_supplier,
  ADD CONSTRAINT fk_product_suppliers_supplier
    FOREIGN KEY (supplier_id) REFERENCES suppliers(id) ON DELETE RESTRICT;`,
			"product_images.product": `
ALTER TABLE product_images
  DROP CONSTRAINT IF EXISTS fk_product_images_product,
  ADD CONSTRAINT fk_product_images_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			"inventories.product": `
ALTER TABLE inventories
  DROP CONSTRAINT IF EXISTS fk_inventories_product,
  ADD CONSTRAINT fk_inventories_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE;`,
			"carts.user": `
ALTER TABLE carts
  DROP CONSTRAINT IF EXISTS fk_carts_user,
  ADD CONSTRAINT fk_carts_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;`,
			"cart_items.cart": `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS fk_cart_items_cart,
  ADD CONSTRAINT fk_cart_items_cart
    FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE;`,
			"cart_items.product": `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS fk_cart_items_product,
  ADD CONSTRAINT fk_cart_items_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`,
			// заказ переживает удаление пользователя/корзины/адреса
			"orders.user": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_user,
  ADD CONSTRAINT fk_orders_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL;`,
			"orders.cart": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_cart,
  ADD CONSTRAINT fk_orders_cart
    FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE SET NULL;`,
			"orders.billing_address": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_billing_address,
  ADD CONSTRAINT fk_orders_billing_address
    FOREIGN KEY (billing_address_id) REFERENCES addresses(id) ON DELETE SET NULL;`,
			"orders.shipping_address": `
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_shipping_address,
  ADD CONSTRAINT fk_orders_shipping_address
    FOREIGN KEY (shipping_address_id) REFERENCES addresses(id) ON DELETE SET NULL;`,
			"order_items.order": `
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,
			"order_items.product": `
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_product,
  ADD CONSTRAINT fk_order_items_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`,
			"reservations.order": `
ALTER TABLE reservations
  DROP CONSTRAINT IF EXISTS fk_reservations_order,
  ADD CONSTRAINT fk_reservations_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,
			"reservations.product": `
ALTER TABLE reservations
  DROP CONSTRAINT IF EXISTS fk_reservations_product,
  ADD CONSTRAINT fk_reservations_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;`,
			"payments.order": `
ALTER TABLE payments
  DROP CONSTRAINT IF EXISTS fk_payments_order,
  ADD CONSTRAINT fk_payments_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,
			"shipments.order": `
ALTER TABLE shipments
  DROP CONSTRAINT IF EXISTS fk_shipments_order,
  ADD CONSTRAINT fk_shipments_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,
			"order_coupons.order": `
ALTER TABLE order_coupons
  DROP CONSTRAINT IF EXISTS fk_order_coupons_order,
  ADD CONSTRAINT fk_order_coupons_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;`,
			"order_coupons.coupon": `
ALTER TABLE order_coupons
  DROP CONSTRAINT IF EXISTS fk_order_coupons_coupon,
  ADD CONSTRAINT fk_order_coupons_coupon
    FOREIGN KEY (coupon_id) REFERENCES coupons(id) ON DELETE RESTRICT;`,
		} {
			if err := db.Exec(q).Error; err != nil {
				log.Error("fk error", zap.String("fk", name), zap.Error(err))
				return err
			}
		}
		log.Info("Внешние ключи созданы")
	}

	if opt.SeedReferenceData {
		log.Info("Заполнение справочных данных")
		if err := db.Exec(`
INSERT INTO roles (name) VALUES ('customer'), ('admin'), ('vendor')
ON CONFLICT (name) DO NOTHING;
`).Error; err != nil {
			log.Error("seed roles error", zap.Error(err))
			return err
		}
		if err := db.Exec(`
INSERT INTO counters (name, value) VALUES ('order_number', 0)
ON CONFLICT (name) DO NOTHING;
`).Error; err != nil {
			log.Error("seed counter error", zap.Error(err))
			return err
		}
		log.Info("Справочные данные заполнены")
	}

	log.Info("Миграция базы магазина успешно завершена")
	return nil
}
