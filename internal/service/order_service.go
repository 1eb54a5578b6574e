package service

import (
	"context"
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListFilter struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type RecordPaymentInput struct {
	OrderID     uuid.UUID
	AmountCents int64
	Method      string
	GatewayRef  *string
	// статус от платёжного шлюза; сами мы его не вычисляем
	Status models.PaymentStatus
}

type OrderService struct {
	repo   *repository.Repository
	events EventBus
	log    *zap.Logger
	now    func() time.Time
}

func NewOrderService(repo *repository.Repository, events EventBus, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *OrderService) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f ListFilter) ([]*models.Order, int64, error) {
	return s.repo.Orders.List(ctx, repository.OrderListFilter{
		UserID: f.UserID,
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

func (s *OrderService) ListSummaries(ctx context.Context, limit, offset int) ([]repository.OrderSummary, error) {
	return s.repo.Orders.ListSummaries(ctx, limit, offset)
}

// RecordPayment — append-only запись платежа. Полнота оплаты проверяется
// не здесь, а на переходе pending -> paid по агрегату успешных платежей.
func (s *OrderService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	if in.AmountCents <= 0 {
		return nil, ErrAmountInvalid
	}
	ord, err := s.repo.Orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	// по закрытому заказу новых списаний не бывает
	if IsTerminal(ord.Status) {
		return nil, ErrOrderClosed
	}

	p := &models.Payment{
		OrderID:      in.OrderID,
		AmountCents:  in.AmountCents,
		CurrencyCode: ord.CurrencyCode,
		Status:       in.Status,
		Method:       in.Method,
		GatewayRef:   in.GatewayRef,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Payments.Create(ctx, p); err != nil {
		return nil, translateDBErr(err, nil, ErrOrderNotFound)
	}
	return p, nil
}

func (s *OrderService) PaidTotal(ctx context.Context, orderID uuid.UUID) (int64, error) {
	return s.repo.Payments.SumSucceededByOrder(ctx, orderID)
}

// MarkPaid: pending -> paid, только когда успешные платежи покрывают total.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusPaid, nil,
		func(ctx context.Context, tx *repository.Repository, ord *models.Order) error {
			paid, err := tx.Payments.SumSucceededByOrder(ctx, ord.ID)
			if err != nil {
				return err
			}
			if paid < ord.TotalCents {
				return ErrUnderpaid
			}
			return nil
		})
}

// StartProcessing: paid -> processing, на заказ заводится ожидающая отгрузка.
func (s *OrderService) StartProcessing(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusProcessing, nil,
		func(ctx context.Context, tx *repository.Repository, ord *models.Order) error {
			return tx.Shipments.Create(ctx, &models.Shipment{
				OrderID: ord.ID,
				Status:  models.ShipmentStatusPending,
			})
		})
}

// Ship: processing -> shipped. Единственная точка, где quantity физически
// уменьшается: склад списывает и количество, и резерв одновременно.
func (s *OrderService) Ship(ctx context.Context, orderID uuid.UUID, carrier, tracking *string) (*models.Order, error) {
	ord, err := s.transition(ctx, orderID, models.OrderStatusShipped, nil,
		func(ctx context.Context, tx *repository.Repository, ord *models.Order) error {
			rows, err := tx.Reservations.ListByOrder(ctx, ord.ID)
			if err != nil {
				return err
			}
			for _, r := range rows {
				if r.Status != models.ReservationReserved {
					continue
				}
				ok, err := tx.Inventories.ConfirmShipment(ctx, r.ProductID, r.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return ErrStockLedger
				}
				if _, err := tx.Reservations.MarkConsumed(ctx, ord.ID, r.ProductID); err != nil {
					return err
				}
			}
			// отгрузка, заведённая на processing, переводится в shipped;
			// если её нет (старые данные) — создаём сразу отгруженную
			ships, err := tx.Shipments.GetByOrder(ctx, ord.ID)
			if err != nil {
				return err
			}
			for _, sh := range ships {
				if sh.Status != models.ShipmentStatusPending {
					continue
				}
				ok, err := tx.Shipments.MarkShipped(ctx, sh.ID, carrier, tracking)
				if err != nil {
					return err
				}
				if ok {
					return nil
				}
			}
			now := s.now()
			return tx.Shipments.Create(ctx, &models.Shipment{
				OrderID:        ord.ID,
				Status:         models.ShipmentStatusShipped,
				Carrier:        carrier,
				TrackingNumber: tracking,
				ShippedAt:      &now,
			})
		})
	if err != nil {
		return nil, err
	}
	return ord, nil
}

func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusDelivered, nil,
		func(ctx context.Context, tx *repository.Repository, ord *models.Order) error {
			ships, err := tx.Shipments.GetByOrder(ctx, ord.ID)
			if err != nil {
				return err
			}
			for _, sh := range ships {
				if sh.Status == models.ShipmentStatusShipped {
					if _, err := tx.Shipments.MarkDelivered(ctx, sh.ID); err != nil {
						return err
					}
				}
			}
			return nil
		})
}

func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, reason *string) (*models.Order, error) {
	ord, err := s.transition(ctx, orderID, models.OrderStatusCancelled, reason, s.releaseHolds)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		_ = s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
			OrderID:     ord.ID,
			OrderNumber: ord.OrderNumber,
			Reason:      derefOrEmpty(reason),
			CancelledAt: s.now(),
		})
	}
	return ord, nil
}

func (s *OrderService) Refund(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusRefunded, nil, s.releaseHolds)
}

// releaseHolds снимает ещё живые холды. После отгрузки резервы уже
// в статусе CONSUMED — цикл их пропускает, двойного возврата не бывает.
func (s *OrderService) releaseHolds(ctx context.Context, tx *repository.Repository, ord *models.Order) error {
	if !releasesStock(ord.Status) {
		return nil
	}
	rows, err := tx.Reservations.ListByOrder(ctx, ord.ID)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.Status != models.ReservationReserved {
			continue
		}
		ok, err := tx.Inventories.Release(ctx, r.ProductID, r.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStockLedger
		}
		if _, err := tx.Reservations.MarkReleased(ctx, ord.ID, r.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// transition — общий каркас перехода: проверка по таблице, побочный эффект,
// смена статуса условным UPDATE со старым статусом в WHERE.
func (s *OrderService) transition(
	ctx context.Context,
	orderID uuid.UUID,
	to models.OrderStatus,
	reason *string,
	sideEffect func(ctx context.Context, tx *repository.Repository, ord *models.Order) error,
) (*models.Order, error) {
	var (
		out  *models.Order
		from models.OrderStatus
	)

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}
		if !CanTransition(ord.Status, to) {
			return ErrIllegalTransition
		}
		from = ord.Status

		if sideEffect != nil {
			if err := sideEffect(ctx, tx, ord); err != nil {
				return err
			}
		}

		ok, err := tx.Orders.UpdateStatusFrom(ctx, ord.ID, ord.Status, to, reason)
		if err != nil {
			return err
		}
		if !ok {
			// статус увели из-под нас параллельной транзакцией
			return ErrIllegalTransition
		}

		out, err = tx.Orders.GetByID(ctx, ord.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("статус заказа изменён",
		zap.String("order_number", out.OrderNumber),
		zap.String("status", string(out.Status)))

	if s.events != nil && to != models.OrderStatusCancelled {
		_ = s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
			OrderID:     out.ID,
			OrderNumber: out.OrderNumber,
			From:        string(from),
			To:          string(to),
			ChangedAt:   s.now(),
		})
	}

	return out, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	r := *s
	if len(r) > 500 {
		r = r[:500]
	}
	return r
}
