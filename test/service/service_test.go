package service_test

import (
	"context"
	"sync"
	"testing"

	"store-service/internal/migrate"
	"store-service/internal/models"
	"store-service/internal/repository"
	"store-service/internal/service"
	"store-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recordingBus копит публикации для проверок; потокобезопасен,
// чекауты в тестах идут параллельно.
type recordingBus struct {
	mu        sync.Mutex
	created   []service.OrderCreatedEvent
	changed   []service.OrderStatusChangedEvent
	cancelled []service.OrderCancelledEvent
}

func (b *recordingBus) PublishOrderCreated(_ context.Context, e service.OrderCreatedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, e)
	return nil
}

func (b *recordingBus) PublishOrderStatusChanged(_ context.Context, e service.OrderStatusChangedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changed = append(b.changed, e)
	return nil
}

func (b *recordingBus) PublishOrderCancelled(_ context.Context, e service.OrderCancelledEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = append(b.cancelled, e)
	return nil
}

type env struct {
	repos    *repository.Repository
	bus      *recordingBus
	checkout *service.CheckoutService
	orders   *service.OrderService
	accounts *service.AccountService
	catalog  *service.CatalogService
}

func setupEnv(t *testing.T, strictCoupons bool) *env {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateStoreDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repos := repository.New(db)
	bus := &recordingBus{}
	log := zap.NewNop()

	return &env{
		repos:    repos,
		bus:      bus,
		checkout: service.NewCheckoutService(repos, bus, log, service.CheckoutOptions{CouponStrict: strictCoupons}),
		orders:   service.NewOrderService(repos, bus, log),
		accounts: service.NewAccountService(repos),
		catalog:  service.NewCatalogService(repos),
	}
}

func (e *env) product(t *testing.T, sku string, price, stock int64) *models.Product {
	t.Helper()
	ctx := context.Background()
	p := &models.Product{SKU: sku, Name: "товар " + sku, PriceCents: price, CurrencyCode: "RUB", IsActive: true}
	if err := e.repos.Products.Create(ctx, p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := e.repos.Inventories.EnsureRow(ctx, p.ID); err != nil {
		t.Fatalf("ensure inventory: %v", err)
	}
	if stock > 0 {
		if ok, err := e.repos.Inventories.Restock(ctx, p.ID, stock); err != nil || !ok {
			t.Fatalf("restock: ok=%v err=%v", ok, err)
		}
	}
	return p
}

func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", FullName: "Тест Тестов", IsActive: true}
	if err := e.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *env) cart(t *testing.T, userID *uuid.UUID, items map[uuid.UUID]int64) *models.Cart {
	t.Helper()
	ctx := context.Background()
	c := &models.Cart{UserID: userID, Status: models.CartStatusActive}
	if userID == nil {
		token := "sess-" + uuid.NewString()
		c.SessionToken = &token
	}
	if err := e.repos.Carts.Create(ctx, c); err != nil {
		t.Fatalf("create cart: %v", err)
	}
	for pid, qty := range items {
		if err := e.repos.Carts.UpsertItem(ctx, c.ID, pid, qty); err != nil {
			t.Fatalf("upsert item: %v", err)
		}
	}
	return c
}

func (e *env) checkoutCart(t *testing.T, cartID uuid.UUID) *models.Order {
	t.Helper()
	ord, err := e.checkout.Checkout(context.Background(), service.CheckoutInput{CartID: cartID})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return ord
}

func (e *env) stock(t *testing.T, productID uuid.UUID) *models.Inventory {
	t.Helper()
	inv, err := e.repos.Inventories.Get(context.Background(), productID)
	if err != nil || inv == nil {
		t.Fatalf("get inventory: %v %v", inv, err)
	}
	return inv
}
