package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shinyyama/takeout-backend/internal/kintone"
	"github.com/shinyyama/takeout-backend/internal/model"
)

// ErrNotFound reports that a query matched no record. Store failures are
// returned as-is so callers can tell "no such row" from "store is down".
var ErrNotFound = errors.New("not_found")

// TransactionPatch is a partial update applied by update-key. Nil fields are
// left untouched in the store.
type TransactionPatch struct {
	PayState          *model.PayState
	DeliveryState     *model.DeliveryState
	PaidAt            *time.Time
	DeliveredAt       *time.Time
	ShippingMethod    *string
	ShippingFeeAmount *int64
}

type TransactionRepository interface {
	// Find returns the most recently ordered transaction for orderID, or
	// ErrNotFound.
	Find(ctx context.Context, orderID string) (*model.Transaction, error)
	// Create persists a fresh ORDERED transaction and returns the stored
	// record.
	Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error)
	// UpdateByTransactionID patches the record keyed by the gateway
	// transaction id. Callers re-read via Find to observe the result.
	UpdateByTransactionID(ctx context.Context, transactionID string, patch TransactionPatch) error
}

type kintoneTransactionRepository struct {
	client *kintone.Client
	appID  string
	appURL string
}

func NewTransactionRepository(client *kintone.Client, appID, appURL string) TransactionRepository {
	return &kintoneTransactionRepository{client: client, appID: appID, appURL: appURL}
}

func (r *kintoneTransactionRepository) Find(ctx context.Context, orderID string) (*model.Transaction, error) {
	query := fmt.Sprintf(`order_id = "%s" order by ordered_at desc limit 1`, orderID)
	records, err := r.client.GetRecords(ctx, r.appID, query)
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return transactionFromRecord(records[0])
}

func (r *kintoneTransactionRepository) Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
	record := kintone.Record{
		"order_id":       {Value: t.OrderID},
		"user_id":        {Value: t.UserID},
		"title":          {Value: t.Title},
		"amount":         {Value: strconv.FormatInt(t.Amount, 10)},
		"transaction_id": {Value: t.TransactionID},
		"currency":       {Value: model.CurrencyJPY},
		"pay_state":      {Value: string(model.PayStateOrdered)},
		"delivery_state": {Value: string(model.DeliveryStatePreparing)},
		"ordered_at":     {Value: time.Now().Format(time.RFC3339)},
		"app_url":        {Value: r.appURL},
	}
	if err := r.client.AddRecord(ctx, r.appID, record); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return r.Find(ctx, t.OrderID)
}

func (r *kintoneTransactionRepository) UpdateByTransactionID(ctx context.Context, transactionID string, patch TransactionPatch) error {
	record := kintone.Record{}
	if patch.PayState != nil {
		record["pay_state"] = kintone.Field{Value: string(*patch.PayState)}
	}
	if patch.DeliveryState != nil {
		record["delivery_state"] = kintone.Field{Value: string(*patch.DeliveryState)}
	}
	if patch.PaidAt != nil {
		record["paid_at"] = kintone.Field{Value: patch.PaidAt.Format(time.RFC3339)}
	}
	if patch.DeliveredAt != nil {
		record["delivered_at"] = kintone.Field{Value: patch.DeliveredAt.Format(time.RFC3339)}
	}
	if patch.ShippingMethod != nil {
		record["shipping_method"] = kintone.Field{Value: *patch.ShippingMethod}
	}
	if patch.ShippingFeeAmount != nil {
		record["shipping_fee_amount"] = kintone.Field{Value: strconv.FormatInt(*patch.ShippingFeeAmount, 10)}
	}
	if len(record) == 0 {
		return nil
	}
	if err := r.client.UpdateRecordByKey(ctx, r.appID, "transaction_id", transactionID, record); err != nil {
		return fmt.Errorf("update transaction %s: %w", transactionID, err)
	}
	return nil
}

func transactionFromRecord(rec kintone.Record) (*model.Transaction, error) {
	amount, err := strconv.ParseInt(rec.Str("amount"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("transaction record: bad amount %q", rec.Str("amount"))
	}
	t := &model.Transaction{
		OrderID:        rec.Str("order_id"),
		UserID:         rec.Str("user_id"),
		Title:          rec.Str("title"),
		Amount:         amount,
		Currency:       rec.Str("currency"),
		TransactionID:  rec.Str("transaction_id"),
		PayState:       model.PayState(rec.Str("pay_state")),
		DeliveryState:  model.DeliveryState(rec.Str("delivery_state")),
		ShippingMethod: rec.Str("shipping_method"),
		RecordID:       rec.Str("レコード番号"),
	}
	if v := rec.Str("shipping_fee_amount"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transaction record: bad shipping fee %q", v)
		}
		t.ShippingFeeAmount = fee
	}
	if ts := parseTime(rec.Str("ordered_at")); ts != nil {
		t.OrderedAt = ts
	}
	if ts := parseTime(rec.Str("paid_at")); ts != nil {
		t.PaidAt = ts
	}
	if ts := parseTime(rec.Str("delivered_at")); ts != nil {
		t.DeliveredAt = ts
	}
	return t, nil
}

func parseTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &ts
}
