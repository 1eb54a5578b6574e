package service_test

import (
	"context"
	"errors"
	"testing"

	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/google/uuid"
)

func recordSuccess(t *testing.T, e *env, orderID uuid.UUID, amount int64) {
	t.Helper()
	_, err := e.orders.RecordPayment(context.Background(), service.RecordPaymentInput{
		OrderID:     orderID,
		AmountCents: amount,
		Method:      "card",
		Status:      models.PaymentStatusSuccess,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
}

func TestOrderLifecycle_FullPath(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-LIFE", 1000, 10)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 3})
	ord := e.checkoutCart(t, cart.ID)

	recordSuccess(t, e, ord.ID, ord.TotalCents)
	ord, err := e.orders.MarkPaid(ctx, ord.ID)
	if err != nil || ord.Status != models.OrderStatusPaid {
		t.Fatalf("mark paid: status=%v err=%v", ord.Status, err)
	}

	ord, err = e.orders.StartProcessing(ctx, ord.ID)
	if err != nil || ord.Status != models.OrderStatusProcessing {
		t.Fatalf("start processing: status=%v err=%v", ord.Status, err)
	}

	// на processing заводится ожидающая отгрузка
	ships, err := e.repos.Shipments.GetByOrder(ctx, ord.ID)
	if err != nil || len(ships) != 1 || ships[0].Status != models.ShipmentStatusPending {
		t.Fatalf("shipments after processing: %+v err=%v", ships, err)
	}

	carrier, tracking := "СДЭК", "TRK-001"
	ord, err = e.orders.Ship(ctx, ord.ID, &carrier, &tracking)
	if err != nil || ord.Status != models.OrderStatusShipped {
		t.Fatalf("ship: status=%v err=%v", ord.Status, err)
	}

	// отгрузка — единственное место, где quantity падает
	inv := e.stock(t, p.ID)
	if inv.Quantity != 7 || inv.Reserved != 0 {
		t.Errorf("stock after ship: qty=%d reserved=%d", inv.Quantity, inv.Reserved)
	}
	rows, err := e.repos.Reservations.ListByOrder(ctx, ord.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("reservations: %v err=%v", rows, err)
	}
	if rows[0].Status != models.ReservationConsumed {
		t.Errorf("reservation status: %s", rows[0].Status)
	}
	ships, err = e.repos.Shipments.GetByOrder(ctx, ord.ID)
	if err != nil || len(ships) != 1 || ships[0].Status != models.ShipmentStatusShipped {
		t.Fatalf("shipments after ship: %+v err=%v", ships, err)
	}
	if ships[0].TrackingNumber == nil || *ships[0].TrackingNumber != tracking {
		t.Errorf("tracking: %v", ships[0].TrackingNumber)
	}

	ord, err = e.orders.MarkDelivered(ctx, ord.ID)
	if err != nil || ord.Status != models.OrderStatusDelivered {
		t.Fatalf("deliver: status=%v err=%v", ord.Status, err)
	}
	ships, _ = e.repos.Shipments.GetByOrder(ctx, ord.ID)
	if ships[0].Status != models.ShipmentStatusDelivered {
		t.Errorf("shipment status after delivery: %s", ships[0].Status)
	}

	// каждый переход, кроме cancel, публикуется
	if len(e.bus.changed) != 4 {
		t.Errorf("status events: got %d want 4", len(e.bus.changed))
	}
}

func TestMarkPaid_Underpaid(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-PAY", 1000, 5)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 2}) // total 2000
	ord := e.checkoutCart(t, cart.ID)

	recordSuccess(t, e, ord.ID, 1500)
	if _, err := e.orders.MarkPaid(ctx, ord.ID); !errors.Is(err, service.ErrUnderpaid) {
		t.Fatalf("got %v want ErrUnderpaid", err)
	}
	got, _ := e.orders.GetOrder(ctx, ord.ID)
	if got.Status != models.OrderStatusPending {
		t.Errorf("status after failed MarkPaid: %s", got.Status)
	}

	// неуспешные платежи в агрегат не входят
	if _, err := e.orders.RecordPayment(ctx, service.RecordPaymentInput{
		OrderID: ord.ID, AmountCents: 500, Method: "card", Status: models.PaymentStatusFailed,
	}); err != nil {
		t.Fatalf("record failed payment: %v", err)
	}
	if _, err := e.orders.MarkPaid(ctx, ord.ID); !errors.Is(err, service.ErrUnderpaid) {
		t.Fatalf("failed payment counted towards total")
	}

	// доплата двумя успешными платежами суммируется
	recordSuccess(t, e, ord.ID, 500)
	if _, err := e.orders.MarkPaid(ctx, ord.ID); err != nil {
		t.Fatalf("mark paid after top-up: %v", err)
	}
}

func TestCancel_ReleasesHolds(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-CXL", 500, 10)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 4})
	ord := e.checkoutCart(t, cart.ID)

	reason := "передумал"
	ord, err := e.orders.Cancel(ctx, ord.ID, &reason)
	if err != nil || ord.Status != models.OrderStatusCancelled {
		t.Fatalf("cancel: status=%v err=%v", ord.Status, err)
	}
	if ord.CancelReason == nil || *ord.CancelReason != reason {
		t.Errorf("cancel reason: %v", ord.CancelReason)
	}

	// холды сняты, количество на складе не тронуто
	inv := e.stock(t, p.ID)
	if inv.Quantity != 10 || inv.Reserved != 0 {
		t.Errorf("stock after cancel: qty=%d reserved=%d", inv.Quantity, inv.Reserved)
	}
	rows, _ := e.repos.Reservations.ListByOrder(ctx, ord.ID)
	if len(rows) != 1 || rows[0].Status != models.ReservationReleased {
		t.Errorf("reservations after cancel: %+v", rows)
	}

	if len(e.bus.cancelled) != 1 || e.bus.cancelled[0].Reason != reason {
		t.Errorf("cancelled events: %+v", e.bus.cancelled)
	}

	// терминальный статус, дальше хода нет
	if _, err := e.orders.MarkPaid(ctx, ord.ID); !errors.Is(err, service.ErrIllegalTransition) {
		t.Errorf("transition out of cancelled: got %v", err)
	}
}

func TestRefundAfterShip_NoStockReturn(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-RFD", 1000, 6)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 2})
	ord := e.checkoutCart(t, cart.ID)

	recordSuccess(t, e, ord.ID, ord.TotalCents)
	if _, err := e.orders.MarkPaid(ctx, ord.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := e.orders.StartProcessing(ctx, ord.ID); err != nil {
		t.Fatalf("processing: %v", err)
	}
	if _, err := e.orders.Ship(ctx, ord.ID, nil, nil); err != nil {
		t.Fatalf("ship: %v", err)
	}

	ord, err := e.orders.Refund(ctx, ord.ID)
	if err != nil || ord.Status != models.OrderStatusRefunded {
		t.Fatalf("refund: status=%v err=%v", ord.Status, err)
	}

	// товар уже уехал со склада — возврат денег остатки не трогает
	inv := e.stock(t, p.ID)
	if inv.Quantity != 4 || inv.Reserved != 0 {
		t.Errorf("stock after refund: qty=%d reserved=%d", inv.Quantity, inv.Reserved)
	}
	rows, _ := e.repos.Reservations.ListByOrder(ctx, ord.ID)
	if len(rows) != 1 || rows[0].Status != models.ReservationConsumed {
		t.Errorf("reservations after refund: %+v", rows)
	}
}

func TestIllegalTransitions(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-ILL", 100, 5)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})
	ord := e.checkoutCart(t, cart.ID)

	// pending нельзя отгрузить или доставить
	if _, err := e.orders.Ship(ctx, ord.ID, nil, nil); !errors.Is(err, service.ErrIllegalTransition) {
		t.Errorf("ship from pending: got %v", err)
	}
	if _, err := e.orders.MarkDelivered(ctx, ord.ID); !errors.Is(err, service.ErrIllegalTransition) {
		t.Errorf("deliver from pending: got %v", err)
	}
	if _, err := e.orders.Refund(ctx, ord.ID); !errors.Is(err, service.ErrIllegalTransition) {
		t.Errorf("refund from pending: got %v", err)
	}

	if _, err := e.orders.GetOrder(ctx, uuid.New()); !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("missing order: got %v", err)
	}
	if _, err := e.orders.Cancel(ctx, uuid.New(), nil); !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("cancel missing order: got %v", err)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-VAL", 100, 5)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})
	ord := e.checkoutCart(t, cart.ID)

	if _, err := e.orders.RecordPayment(ctx, service.RecordPaymentInput{
		OrderID: ord.ID, AmountCents: 0, Method: "card", Status: models.PaymentStatusSuccess,
	}); !errors.Is(err, service.ErrAmountInvalid) {
		t.Errorf("zero amount: got %v", err)
	}
	if _, err := e.orders.RecordPayment(ctx, service.RecordPaymentInput{
		OrderID: uuid.New(), AmountCents: 100, Method: "card", Status: models.PaymentStatusSuccess,
	}); !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("missing order: got %v", err)
	}

	// валюта платежа наследуется от заказа
	pay, err := e.orders.RecordPayment(ctx, service.RecordPaymentInput{
		OrderID: ord.ID, AmountCents: 100, Method: "card", Status: models.PaymentStatusPending,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if pay.CurrencyCode != ord.CurrencyCode {
		t.Errorf("currency: got %s want %s", pay.CurrencyCode, ord.CurrencyCode)
	}

	// pending-платёж в оплату не засчитывается
	paid, err := e.orders.PaidTotal(ctx, ord.ID)
	if err != nil || paid != 0 {
		t.Errorf("paid total: got %d err=%v", paid, err)
	}
}

func TestRecordPayment_TerminalOrderRejected(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	p := e.product(t, "SKU-TRM", 1000, 5)
	cart := e.cart(t, nil, map[uuid.UUID]int64{p.ID: 1})
	ord := e.checkoutCart(t, cart.ID)

	if _, err := e.orders.Cancel(ctx, ord.ID, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// по отменённому заказу списание не проходит и агрегат не растёт
	_, err := e.orders.RecordPayment(ctx, service.RecordPaymentInput{
		OrderID: ord.ID, AmountCents: 1000, Method: "card", Status: models.PaymentStatusSuccess,
	})
	if !errors.Is(err, service.ErrOrderClosed) {
		t.Fatalf("payment on cancelled order: got %v want ErrOrderClosed", err)
	}
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("must classify as conflict, got %v", err)
	}
	paid, err := e.orders.PaidTotal(ctx, ord.ID)
	if err != nil || paid != 0 {
		t.Errorf("paid total after rejected capture: got %d err=%v", paid, err)
	}
}
