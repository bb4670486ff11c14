package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shinyyama/takeout-backend/internal/catalog"
	"github.com/shinyyama/takeout-backend/internal/linepay"
	"github.com/shinyyama/takeout-backend/internal/model"
	"github.com/shinyyama/takeout-backend/internal/notify"
	"github.com/shinyyama/takeout-backend/internal/repository"
)

var (
	ErrUnknownItem          = catalog.ErrUnknownItem
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidDeliveryState = errors.New("invalid_delivery_state")
	ErrTransactionNotFound  = errors.New("transaction_not_found")
)

// PaymentGateway is the slice of the pay provider the state machine drives.
type PaymentGateway interface {
	Reserve(ctx context.Context, req *linepay.ReserveRequest) (*linepay.Reservation, error)
	Confirm(ctx context.Context, transactionID string, amount int64, currency string) error
}

// OrderConfirmation is what a successful initiation hands back to the chat
// layer: the stored transaction plus the URL the user pays at.
type OrderConfirmation struct {
	Transaction *model.Transaction
	PaymentURL  string
}

type OrderService interface {
	InitiateOrder(ctx context.Context, userID, itemID string, quantity int64) (*OrderConfirmation, error)
	ConfirmPayment(ctx context.Context, orderID, transactionID, shippingMethodID string, shippingFee *int64) (*model.Transaction, error)
	AdvanceDeliveryState(ctx context.Context, orderID, stateToken string) error
}

type orderService struct {
	txRepo      repository.TransactionRepository
	itemRepo    repository.OrderedItemRepository
	gateway     PaymentGateway
	notifier    notify.Notifier
	baseURL     string
	useCheckout bool
	locks       orderLocks
}

func NewOrderService(txRepo repository.TransactionRepository, itemRepo repository.OrderedItemRepository, gateway PaymentGateway, notifier notify.Notifier, baseURL string, useCheckout bool) OrderService {
	return &orderService{
		txRepo:      txRepo,
		itemRepo:    itemRepo,
		gateway:     gateway,
		notifier:    notifier,
		baseURL:     baseURL,
		useCheckout: useCheckout,
	}
}

// InitiateOrder reserves a payment for item×quantity and persists the
// ORDERED transaction. Exactly one reserve call is made; on any failure the
// caller must start over with a fresh order.
func (s *orderService) InitiateOrder(ctx context.Context, userID, itemID string, quantity int64) (*OrderConfirmation, error) {
	item, err := catalog.Find(itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	orderID := uuid.NewString()
	amount := item.UnitPrice * quantity
	title := fmt.Sprintf("%s × %d", item.Name, quantity)

	req := &linepay.ReserveRequest{
		OrderID:    orderID,
		Title:      title,
		Amount:     amount,
		UnitPrice:  item.UnitPrice,
		Quantity:   quantity,
		Currency:   model.CurrencyJPY,
		ConfirmURL: s.baseURL + "/pay/confirm",
		CancelURL:  s.baseURL + "/pay/cancel",
	}
	if s.useCheckout {
		req.ShippingFeeInquiryURL = s.baseURL + "/pay/shipping_methods"
	}
	reservation, err := s.gateway.Reserve(ctx, req)
	if err != nil {
		log.Printf("[order] stage=reserve_fail order=%s user=%s err=%v", orderID, userID, err)
		return nil, err
	}
	log.Printf("[order] stage=reserved order=%s tx=%s amount=%d", orderID, reservation.TransactionID, amount)

	tx, err := s.txRepo.Create(ctx, &model.Transaction{
		OrderID:       orderID,
		UserID:        userID,
		Title:         title,
		Amount:        amount,
		TransactionID: reservation.TransactionID,
	})
	if err != nil {
		// The gateway now holds a reservation this process has no record of.
		log.Printf("[order] stage=store_fail order=%s tx=%s CRITICAL=orphaned_gateway_transaction err=%v", orderID, reservation.TransactionID, err)
		return nil, err
	}

	// order-line record is best-effort bookkeeping
	if err := s.itemRepo.Create(ctx, &model.OrderedItem{
		OrderID:   orderID,
		UserID:    userID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  quantity,
	}); err != nil {
		log.Printf("[order] stage=ordered_item_fail order=%s err=%v", orderID, err)
	}

	return &OrderConfirmation{Transaction: tx, PaymentURL: reservation.PaymentURL}, nil
}

// ConfirmPayment handles the gateway redirect: record the PAYING intent,
// capture the payment, mark PAID and push the receipt. Callbacks for one
// order are serialised; a callback for an already PAID order is acknowledged
// without charging or messaging again.
func (s *orderService) ConfirmPayment(ctx context.Context, orderID, transactionID, shippingMethodID string, shippingFee *int64) (*model.Transaction, error) {
	unlock := s.locks.lock(orderID)
	defer unlock()

	tx, err := s.txRepo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrTransactionNotFound, orderID)
		}
		return nil, err
	}
	if tx.PayState == model.PayStatePaid {
		log.Printf("[pay] stage=duplicate_confirm order=%s tx=%s", orderID, transactionID)
		return tx, nil
	}
	if tx.TransactionID != transactionID {
		log.Printf("[pay] stage=transaction_id_mismatch order=%s stored=%s got=%s", orderID, tx.TransactionID, transactionID)
	}

	// The PAYING write goes out before the capture so the financial intent
	// is on record even if confirm fails. Shipping fields are written only
	// on the first pass; a retried callback must not change them.
	if tx.PayState == model.PayStateOrdered {
		paying := model.PayStatePaying
		patch := repository.TransactionPatch{PayState: &paying}
		if shippingMethodID != "" && shippingFee != nil {
			name := shippingMethodID
			if method, ok := ShippingMethodByID(shippingMethodID); ok {
				name = method.Name
			}
			patch.ShippingMethod = &name
			patch.ShippingFeeAmount = shippingFee
		}
		if err := s.txRepo.UpdateByTransactionID(ctx, transactionID, patch); err != nil {
			return nil, err
		}
	} else {
		log.Printf("[pay] stage=confirm_retry order=%s state=%s", orderID, tx.PayState)
	}

	tx, err = s.txRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	finalAmount := tx.TotalAmount()

	log.Printf("[pay] stage=confirm_start order=%s tx=%s amount=%d currency=%s", orderID, transactionID, finalAmount, tx.Currency)
	if err := s.gateway.Confirm(ctx, transactionID, finalAmount, tx.Currency); err != nil {
		// Transaction stays PAYING; reconciliation picks these up.
		log.Printf("[pay] stage=confirm_fail order=%s tx=%s err=%v", orderID, transactionID, err)
		return nil, err
	}

	now := time.Now()
	paid := model.PayStatePaid
	preparing := model.DeliveryStatePreparing
	if err := s.txRepo.UpdateByTransactionID(ctx, transactionID, repository.TransactionPatch{
		PayState:      &paid,
		PaidAt:        &now,
		DeliveryState: &preparing,
	}); err != nil {
		log.Printf("[pay] stage=paid_write_fail order=%s tx=%s CRITICAL=captured_but_not_recorded err=%v", orderID, transactionID, err)
		return nil, err
	}
	tx, err = s.txRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	log.Printf("[pay] stage=paid order=%s tx=%s total=%d", orderID, transactionID, finalAmount)

	// The money is captured; a failed push must not make the gateway retry.
	if err := s.notifier.PushReceipt(ctx, tx.UserID, tx); err != nil {
		log.Printf("[pay] stage=receipt_push_fail order=%s user=%s err=%v", orderID, tx.UserID, err)
	}
	return tx, nil
}

// AdvanceDeliveryState persists a fulfillment progress report and notifies
// the customer for READY and DELIVERED.
func (s *orderService) AdvanceDeliveryState(ctx context.Context, orderID, stateToken string) error {
	state, ok := model.ParseDeliveryState(stateToken)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDeliveryState, stateToken)
	}
	tx, err := s.txRepo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: order %s", ErrTransactionNotFound, orderID)
		}
		return err
	}
	if state != tx.DeliveryState {
		if !tx.DeliveryState.CanTransition(state) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidDeliveryState, tx.DeliveryState, state)
		}
		if state == model.DeliveryStateDelivered && tx.PayState != model.PayStatePaid {
			return fmt.Errorf("%w: delivered before paid", ErrInvalidDeliveryState)
		}
		patch := repository.TransactionPatch{DeliveryState: &state}
		if state == model.DeliveryStateDelivered {
			now := time.Now()
			patch.DeliveredAt = &now
		}
		if err := s.txRepo.UpdateByTransactionID(ctx, tx.TransactionID, patch); err != nil {
			return err
		}
	}
	log.Printf("[delivery] order=%s state=%s user=%s", orderID, state, tx.UserID)

	switch state {
	case model.DeliveryStateReady:
		return s.notifier.PushReady(ctx, tx.UserID, tx)
	case model.DeliveryStateDelivered:
		return s.notifier.PushThanks(ctx, tx.UserID)
	default:
		log.Printf("[delivery] order=%s state=%s no notification", orderID, state)
		return nil
	}
}

// orderLocks serialises callbacks per orderId so duplicate gateway
// deliveries cannot interleave on the same transaction.
type orderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *orderLocks) lock(orderID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orderID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
