package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestCheckout_TotalsAndSnapshot(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	u := e.user(t, "buyer@example.com")
	p1 := e.product(t, "SKU-1", 1000, 10)
	p2 := e.product(t, "SKU-2", 550, 10)
	cart := e.cart(t, &u.ID, map[uuid.UUID]int64{p1.ID: 2, p2.ID: 1})

	code := "SALE10"
	uses := int64(100)
	if err := e.repos.Coupons.Create(ctx, &models.Coupon{
		Code: code, DiscountType: models.DiscountPercent, DiscountValue: 10,
		MaxUses: &uses, IsActive: true,
	}); err != nil {
		t.Fatalf("create coupon: %v", err)
	}

	ord, err := e.checkout.Checkout(ctx, service.CheckoutInput{
		CartID:        cart.ID,
		ShippingCents: 300,
		TaxCents:      200,
		CouponCode:    &code,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if ord.SubtotalCents != 2550 {
		t.Errorf("subtotal: got %d want 2550", ord.SubtotalCents)
	}
	if ord.DiscountCents != 255 {
		t.Errorf("discount: got %d want 255", ord.DiscountCents)
	}
	if ord.TotalCents != 2795 {
		t.Errorf("total: got %d want 2795", ord.TotalCents)
	}
	if ord.Status != models.OrderStatusPending {
		t.Errorf("status: got %s", ord.Status)
	}
	if len(ord.Items) != 2 {
		t.Fatalf("items: got %d want 2", len(ord.Items))
	}

	// снимок заморожен: правка цены продукта заказ не трогает
	if err := e.repos.Products.UpdateFields(ctx, p1.ID, map[string]any{"price_cents": int64(9999)}); err != nil {
		t.Fatalf("update price: %v", err)
	}
	again, err := e.orders.GetOrder(ctx, ord.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, it := range again.Items {
		if it.ProductID == p1.ID && it.UnitPriceCents != 1000 {
			t.Errorf("snapshot price changed: %d", it.UnitPriceCents)
		}
	}

	// холды встали, статус RESERVED
	for _, pid := range []uuid.UUID{p1.ID, p2.ID} {
		rows, err := e.repos.Reservations.ListByOrder(ctx, ord.ID)
		if err != nil {
			t.Fatalf("list reservations: %v", err)
		}
		found := false
		for _, r := range rows {
			if r.ProductID == pid {
				found = true
				if r.Status != models.ReservationReserved {
					t.Errorf("reservation %s: status %s", pid, r.Status)
				}
			}
		}
		if !found {
			t.Errorf("no reservation for %s", pid)
		}
	}
	inv := e.stock(t, p1.ID)
	if inv.Quantity != 10 || inv.Reserved != 2 {
		t.Errorf("p1 stock: qty=%d reserved=%d", inv.Quantity, inv.Reserved)
	}

	// корзина конвертирована и больше не оформляется
	got, err := e.repos.Carts.GetByID(ctx, cart.ID)
	if err != nil || got == nil {
		t.Fatalf("reload cart: %v", err)
	}
	if got.Status != models.CartStatusConverted {
		t.Errorf("cart status: %s", got.Status)
	}
	if _, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID}); !errors.Is(err, service.ErrCartConsumed) {
		t.Errorf("second checkout: got %v want ErrCartConsumed", err)
	}

	// купон потрачен ровно один раз и привязан к заказу
	c, err := e.repos.Coupons.GetByCode(ctx, code)
	if err != nil || c == nil {
		t.Fatalf("reload coupon: %v", err)
	}
	if c.UsedCount != 1 {
		t.Errorf("used_count: got %d want 1", c.UsedCount)
	}
	links, err := e.repos.Coupons.ListByOrder(ctx, ord.ID)
	if err != nil || len(links) != 1 || links[0].DiscountCents != 255 {
		t.Errorf("order_coupons: %v err=%v", links, err)
	}

	// событие о создании ушло в шину
	if len(e.bus.created) != 1 || e.bus.created[0].OrderNumber != ord.OrderNumber {
		t.Errorf("created events: %+v", e.bus.created)
	}
}

func TestCheckout_InsufficientStockRollsBackAll(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p1 := e.product(t, "SKU-A", 100, 10)
	p2 := e.product(t, "SKU-B", 100, 1) // не хватит
	cart := e.cart(t, nil, map[uuid.UUID]int64{p1.ID: 3, p2.ID: 5})

	_, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID})
	if !errors.Is(err, service.ErrOutOfStock) {
		t.Fatalf("got %v want ErrOutOfStock", err)
	}

	// всё или ничего: холд первого товара тоже откатился
	for _, pid := range []uuid.UUID{p1.ID, p2.ID} {
		inv := e.stock(t, pid)
		if inv.Reserved != 0 {
			t.Errorf("reserved leak on %s: %d", pid, inv.Reserved)
		}
	}

	// корзина осталась активной, можно исправить и оформить снова
	got, err := e.repos.Carts.GetByID(ctx, cart.ID)
	if err != nil || got == nil || got.Status != models.CartStatusActive {
		t.Fatalf("cart after failed checkout: %+v err=%v", got, err)
	}
	if ok, err := e.repos.Carts.SetItemQuantity(ctx, cart.ID, p2.ID, 1); err != nil || !ok {
		t.Fatalf("fix quantity: ok=%v err=%v", ok, err)
	}
	if _, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID}); err != nil {
		t.Fatalf("retry checkout: %v", err)
	}
}

func TestCheckout_LastUnitRace(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-LAST", 700, 1)
	c1 := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})
	c2 := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, cartID := range []uuid.UUID{c1.ID, c2.ID} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: id})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(cartID)
	}
	wg.Wait()

	okCount, oosCount := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, service.ErrOutOfStock):
			oosCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || oosCount != 1 {
		t.Fatalf("race outcome: ok=%d oos=%d", okCount, oosCount)
	}

	inv := e.stock(t, p.ID)
	if inv.Quantity != 1 || inv.Reserved != 1 {
		t.Errorf("stock after race: qty=%d reserved=%d", inv.Quantity, inv.Reserved)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := setupEnv(t, true)

	cart := e.cart(t, nil, nil)
	_, err := e.checkout.Checkout(context.Background(), service.CheckoutInput{CartID: cart.ID})
	if !errors.Is(err, service.ErrEmptyCart) {
		t.Errorf("got %v want ErrEmptyCart", err)
	}

	_, err = e.checkout.Checkout(context.Background(), service.CheckoutInput{CartID: uuid.New()})
	if !errors.Is(err, service.ErrCartNotFound) {
		t.Errorf("got %v want ErrCartNotFound", err)
	}
}

func TestCheckout_CouponStrictVsLenient(t *testing.T) {
	ctx := context.Background()
	badCode := "EXPIRED"

	seedExpired := func(t *testing.T, e *env) {
		past := time.Now().Add(-time.Hour)
		if err := e.repos.Coupons.Create(ctx, &models.Coupon{
			Code: badCode, DiscountType: models.DiscountFixed, DiscountValue: 100,
			ValidTo: &past, IsActive: true,
		}); err != nil {
			t.Fatalf("create coupon: %v", err)
		}
	}

	t.Run("strict aborts checkout", func(t *testing.T) {
		e := setupEnv(t, true)
		seedExpired(t, e)
		p := e.product(t, "SKU-S", 100, 5)
		cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})

		_, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID, CouponCode: &badCode})
		if !errors.Is(err, service.ErrCouponExpired) {
			t.Fatalf("got %v want ErrCouponExpired", err)
		}
		// ничего не оформилось: корзина жива, холдов нет
		got, _ := e.repos.Carts.GetByID(ctx, cart.ID)
		if got.Status != models.CartStatusActive {
			t.Errorf("cart status: %s", got.Status)
		}
		if inv := e.stock(t, p.ID); inv.Reserved != 0 {
			t.Errorf("reserved: %d", inv.Reserved)
		}
	})

	t.Run("lenient drops discount", func(t *testing.T) {
		e := setupEnv(t, false)
		seedExpired(t, e)
		p := e.product(t, "SKU-L", 100, 5)
		cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 2})

		ord, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID, CouponCode: &badCode})
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}
		if ord.DiscountCents != 0 || ord.TotalCents != 200 {
			t.Errorf("discount=%d total=%d", ord.DiscountCents, ord.TotalCents)
		}
		c, _ := e.repos.Coupons.GetByCode(ctx, badCode)
		if c.UsedCount != 0 {
			t.Errorf("rejected coupon consumed: used_count=%d", c.UsedCount)
		}
	})
}

func TestCheckout_InactiveProductAndForeignAddress(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-OFF", 100, 5)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})
	if err := e.repos.Products.UpdateFields(ctx, p.ID, map[string]any{"is_active": false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID})
	if !errors.Is(err, service.ErrInactiveProduct) {
		t.Errorf("got %v want ErrInactiveProduct", err)
	}

	// адрес чужого пользователя не принимается
	owner := e.user(t, "owner@example.com")
	other := e.user(t, "other@example.com")
	addr := &models.Address{UserID: other.ID, Line1: "ул. Ленина 1", City: "Москва", PostalCode: "101000", Country: "RU"}
	if err := e.repos.Addresses.Create(ctx, addr); err != nil {
		t.Fatalf("create address: %v", err)
	}
	p2 := e.product(t, "SKU-ADDR", 100, 5)
	cart2 := e.cart(t, &owner.ID, map[uuid.UUID]int64{p2.ID: 1})

	_, err = e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart2.ID, ShippingAddressID: &addr.ID})
	if !errors.Is(err, service.ErrAddressNotFound) {
		t.Errorf("foreign address: got %v want ErrAddressNotFound", err)
	}
}

func TestCheckout_UnseededCounter(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-CNT", 100, 5)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})

	if err := e.repos.DB.Exec(`DELETE FROM counters WHERE name = 'order_number'`).Error; err != nil {
		t.Fatalf("drop counter: %v", err)
	}

	// наружу уходит ошибка таксономии, а не сырая ошибка gorm
	_, err := e.checkout.Checkout(ctx, service.CheckoutInput{CartID: cart.ID})
	if !errors.Is(err, service.ErrIntegrity) {
		t.Fatalf("got %v want ErrIntegrity", err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("raw storage error leaked: %v", err)
	}
}

func TestCheckout_OrderNumbersUnique(t *testing.T) {
	e := setupEnv(t, true)

	p := e.product(t, "SKU-NUM", 100, 100)
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})
		ord := e.checkoutCart(t, cart.ID)
		if seen[ord.OrderNumber] {
			t.Fatalf("duplicate order number %s", ord.OrderNumber)
		}
		seen[ord.OrderNumber] = true
	}
}
