package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinyyama/takeout-backend/internal/linepay"
	"github.com/shinyyama/takeout-backend/internal/model"
	"github.com/shinyyama/takeout-backend/internal/repository"
	"github.com/shinyyama/takeout-backend/internal/service"
)

// fakeTxRepo mimics the external record store: blind update by transaction
// id, reads return snapshots.
type fakeTxRepo struct {
	mu        sync.Mutex
	byOrder   map[string]*model.Transaction
	createErr error
	updateErr error
	findErr   error
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{byOrder: map[string]*model.Transaction{}}
}

func (r *fakeTxRepo) Find(ctx context.Context, orderID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	tx, ok := r.byOrder[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTxRepo) Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	stored := *t
	stored.Currency = model.CurrencyJPY
	stored.PayState = model.PayStateOrdered
	stored.DeliveryState = model.DeliveryStatePreparing
	stored.RecordID = "42"
	r.byOrder[t.OrderID] = &stored
	cp := stored
	return &cp, nil
}

func (r *fakeTxRepo) UpdateByTransactionID(ctx context.Context, transactionID string, patch repository.TransactionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	for _, tx := range r.byOrder {
		if tx.TransactionID != transactionID {
			continue
		}
		if patch.PayState != nil {
			tx.PayState = *patch.PayState
		}
		if patch.DeliveryState != nil {
			tx.DeliveryState = *patch.DeliveryState
		}
		if patch.PaidAt != nil {
			tx.PaidAt = patch.PaidAt
		}
		if patch.DeliveredAt != nil {
			tx.DeliveredAt = patch.DeliveredAt
		}
		if patch.ShippingMethod != nil {
			tx.ShippingMethod = *patch.ShippingMethod
		}
		if patch.ShippingFeeAmount != nil {
			tx.ShippingFeeAmount = *patch.ShippingFeeAmount
		}
		return nil
	}
	return errors.New("no record for update key")
}

func (r *fakeTxRepo) state(orderID string) model.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.byOrder[orderID]
}

type fakeItemRepo struct {
	mu      sync.Mutex
	created []*model.OrderedItem
	err     error
}

func (r *fakeItemRepo) Create(ctx context.Context, item *model.OrderedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, item)
	return nil
}

type fakeGateway struct {
	mu                sync.Mutex
	reserveCalls      int
	confirmCalls      int
	reserveErr        error
	confirmErr        error
	lastReserve       *linepay.ReserveRequest
	lastConfirmAmount int64
	onConfirm         func()
}

func (g *fakeGateway) Reserve(ctx context.Context, req *linepay.ReserveRequest) (*linepay.Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reserveCalls++
	g.lastReserve = req
	if g.reserveErr != nil {
		return nil, g.reserveErr
	}
	return &linepay.Reservation{TransactionID: "tx-" + req.OrderID, PaymentURL: "https://pay.example/" + req.OrderID}, nil
}

func (g *fakeGateway) Confirm(ctx context.Context, transactionID string, amount int64, currency string) error {
	g.mu.Lock()
	g.confirmCalls++
	g.lastConfirmAmount = amount
	hook := g.onConfirm
	err := g.confirmErr
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

type fakeNotifier struct {
	mu       sync.Mutex
	receipts []*model.Transaction
	ready    int
	thanks   int
	err      error
}

func (n *fakeNotifier) PushReceipt(ctx context.Context, userID string, tx *model.Transaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.receipts = append(n.receipts, tx)
	return nil
}

func (n *fakeNotifier) PushReady(ctx context.Context, userID string, tx *model.Transaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.ready++
	return nil
}

func (n *fakeNotifier) PushThanks(ctx context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.thanks++
	return nil
}

func (n *fakeNotifier) Multicast(ctx context.Context, userIDs []string, title, body string) error {
	return nil
}

func newService(repo *fakeTxRepo, items *fakeItemRepo, gw *fakeGateway, nt *fakeNotifier) service.OrderService {
	return service.NewOrderService(repo, items, gw, nt, "https://example.com", true)
}

func TestInitiateOrder(t *testing.T) {
	repo := newFakeTxRepo()
	items := &fakeItemRepo{}
	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	svc := newService(repo, items, gw, nt)

	conf, err := svc.InitiateOrder(context.Background(), "U1", "burger01", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), conf.Transaction.Amount)
	assert.Equal(t, model.PayStateOrdered, conf.Transaction.PayState)
	assert.Equal(t, model.DeliveryStatePreparing, conf.Transaction.DeliveryState)
	assert.NotEmpty(t, conf.PaymentURL)
	assert.Equal(t, 1, gw.reserveCalls)
	assert.Equal(t, "https://example.com/pay/confirm", gw.lastReserve.ConfirmURL)
	assert.Equal(t, "https://example.com/pay/shipping_methods", gw.lastReserve.ShippingFeeInquiryURL)
	require.Len(t, items.created, 1)
	assert.Equal(t, int64(2), items.created[0].Quantity)
}

func TestInitiateOrderValidation(t *testing.T) {
	tests := []struct {
		name     string
		itemID   string
		quantity int64
		wantErr  error
	}{
		{"unknown item", "pizza99", 1, service.ErrUnknownItem},
		{"zero quantity", "burger01", 0, service.ErrInvalidQuantity},
		{"negative quantity", "burger01", -3, service.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTxRepo()
			gw := &fakeGateway{}
			svc := newService(repo, &fakeItemRepo{}, gw, &fakeNotifier{})
			_, err := svc.InitiateOrder(context.Background(), "U1", tt.itemID, tt.quantity)
			require.ErrorIs(t, err, tt.wantErr)
			// rejected before any external call
			assert.Equal(t, 0, gw.reserveCalls)
			assert.Empty(t, repo.byOrder)
		})
	}
}

func TestInitiateOrderReserveFailure(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{reserveErr: linepay.ErrGateway}
	svc := newService(repo, &fakeItemRepo{}, gw, &fakeNotifier{})

	_, err := svc.InitiateOrder(context.Background(), "U1", "burger01", 1)
	require.ErrorIs(t, err, linepay.ErrGateway)
	assert.Empty(t, repo.byOrder, "no transaction after reservation failure")
	assert.Equal(t, 1, gw.reserveCalls, "no retry on failure")
}

func TestInitiateOrderStoreFailureAfterReserve(t *testing.T) {
	repo := newFakeTxRepo()
	repo.createErr = errors.New("store unreachable")
	gw := &fakeGateway{}
	svc := newService(repo, &fakeItemRepo{}, gw, &fakeNotifier{})

	_, err := svc.InitiateOrder(context.Background(), "U1", "burger01", 1)
	require.Error(t, err)
	assert.Equal(t, 1, gw.reserveCalls)
}

func initiated(t *testing.T, repo *fakeTxRepo, gw *fakeGateway, items *fakeItemRepo, nt *fakeNotifier) (service.OrderService, string, string) {
	t.Helper()
	svc := newService(repo, items, gw, nt)
	conf, err := svc.InitiateOrder(context.Background(), "U1", "burger01", 2)
	require.NoError(t, err)
	return svc, conf.Transaction.OrderID, conf.Transaction.TransactionID
}

func TestConfirmPaymentWithShipping(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)

	// the PAYING write must land before the gateway capture
	gw.onConfirm = func() {
		assert.Equal(t, model.PayStatePaying, repo.state(orderID).PayState)
	}

	fee := int64(2)
	tx, err := svc.ConfirmPayment(context.Background(), orderID, txID, "shipping_01", &fee)
	require.NoError(t, err)

	assert.Equal(t, int64(1602), gw.lastConfirmAmount)
	assert.Equal(t, model.PayStatePaid, tx.PayState)
	assert.Equal(t, model.DeliveryStatePreparing, tx.DeliveryState)
	assert.Equal(t, "ウーハーイート", tx.ShippingMethod)
	assert.Equal(t, int64(2), tx.ShippingFeeAmount)
	assert.Equal(t, int64(1602), tx.TotalAmount())
	require.NotNil(t, tx.PaidAt)
	require.Len(t, nt.receipts, 1)
	assert.Equal(t, int64(1602), nt.receipts[0].TotalAmount())
}

func TestConfirmPaymentWithoutShipping(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, &fakeNotifier{})

	tx, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), gw.lastConfirmAmount)
	assert.Empty(t, tx.ShippingMethod)
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	svc := newService(repo, &fakeItemRepo{}, gw, &fakeNotifier{})

	_, err := svc.ConfirmPayment(context.Background(), "missing", "tx-x", "", nil)
	require.ErrorIs(t, err, service.ErrTransactionNotFound)
	assert.Equal(t, 0, gw.confirmCalls)
}

func TestConfirmPaymentGatewayFailureLeavesPaying(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{confirmErr: linepay.ErrGateway}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)

	_, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
	require.ErrorIs(t, err, linepay.ErrGateway)

	stored := repo.state(orderID)
	assert.Equal(t, model.PayStatePaying, stored.PayState)
	assert.Nil(t, stored.PaidAt)
	assert.Empty(t, nt.receipts)
}

func TestConfirmPaymentRetryAfterFailure(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{confirmErr: linepay.ErrGateway}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)

	fee := int64(2)
	_, err := svc.ConfirmPayment(context.Background(), orderID, txID, "shipping_01", &fee)
	require.Error(t, err)

	// gateway retries the callback; shipping must not be rewritten
	gw.confirmErr = nil
	otherFee := int64(9)
	tx, err := svc.ConfirmPayment(context.Background(), orderID, txID, "shipping_02", &otherFee)
	require.NoError(t, err)
	assert.Equal(t, model.PayStatePaid, tx.PayState)
	assert.Equal(t, "ウーハーイート", tx.ShippingMethod)
	assert.Equal(t, int64(2), tx.ShippingFeeAmount)
	require.Len(t, nt.receipts, 1)
}

func TestConfirmPaymentDuplicateIsAcknowledged(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)

	_, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
	require.NoError(t, err)
	tx, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
	require.NoError(t, err, "duplicate callback is acknowledged, not failed")

	assert.Equal(t, model.PayStatePaid, tx.PayState)
	assert.Equal(t, 1, gw.confirmCalls, "no double charge")
	assert.Len(t, nt.receipts, 1, "no double receipt")
}

func TestConfirmPaymentConcurrentDuplicates(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, gw.confirmCalls)
	assert.Len(t, nt.receipts, 1)
	assert.Equal(t, model.PayStatePaid, repo.state(orderID).PayState)
}

func TestAdvanceDeliveryState(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)
	_, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AdvanceDeliveryState(context.Background(), orderID, "READY"))
	assert.Equal(t, 1, nt.ready)
	assert.Equal(t, model.DeliveryStateReady, repo.state(orderID).DeliveryState)

	require.NoError(t, svc.AdvanceDeliveryState(context.Background(), orderID, "DELIVERED"))
	assert.Equal(t, 1, nt.thanks)
	stored := repo.state(orderID)
	assert.Equal(t, model.DeliveryStateDelivered, stored.DeliveryState)
	require.NotNil(t, stored.DeliveredAt)
}

func TestAdvanceDeliveryStateValidation(t *testing.T) {
	repo := newFakeTxRepo()
	svc := newService(repo, &fakeItemRepo{}, &fakeGateway{}, &fakeNotifier{})

	err := svc.AdvanceDeliveryState(context.Background(), "order-x", "SHIPPED")
	require.ErrorIs(t, err, service.ErrInvalidDeliveryState)

	err = svc.AdvanceDeliveryState(context.Background(), "order-x", "READY")
	require.ErrorIs(t, err, service.ErrTransactionNotFound)
}

func TestAdvanceDeliveryStateNoRegression(t *testing.T) {
	repo := newFakeTxRepo()
	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	svc, orderID, txID := initiated(t, repo, gw, &fakeItemRepo{}, nt)
	_, err := svc.ConfirmPayment(context.Background(), orderID, txID, "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.AdvanceDeliveryState(context.Background(), orderID, "DELIVERED"))

	err = svc.AdvanceDeliveryState(context.Background(), orderID, "READY")
	require.ErrorIs(t, err, service.ErrInvalidDeliveryState)
	assert.Equal(t, model.DeliveryStateDelivered, repo.state(orderID).DeliveryState)
}

func TestAdvanceDeliveryStateDeliveredRequiresPaid(t *testing.T) {
	repo := newFakeTxRepo()
	nt := &fakeNotifier{}
	svc, orderID, _ := initiated(t, repo, &fakeGateway{}, &fakeItemRepo{}, nt)

	require.NoError(t, svc.AdvanceDeliveryState(context.Background(), orderID, "READY"))
	err := svc.AdvanceDeliveryState(context.Background(), orderID, "DELIVERED")
	require.ErrorIs(t, err, service.ErrInvalidDeliveryState)
	assert.Equal(t, 0, nt.thanks)
}

func TestPayStateNeverRegresses(t *testing.T) {
	assert.True(t, model.PayStateOrdered.CanTransition(model.PayStatePaying))
	assert.True(t, model.PayStatePaying.CanTransition(model.PayStatePaid))
	assert.False(t, model.PayStatePaid.CanTransition(model.PayStatePaying))
	assert.False(t, model.PayStatePaid.CanTransition(model.PayStateOrdered))
	assert.False(t, model.PayStatePaying.CanTransition(model.PayStateOrdered))
}
