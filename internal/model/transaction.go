package model

import "time"

type PayState string

const (
	PayStateOrdered PayState = "ORDERED"
	PayStatePaying  PayState = "PAYING"
	PayStatePaid    PayState = "PAID"
)

type DeliveryState string

const (
	DeliveryStatePreparing DeliveryState = "PREPARING"
	DeliveryStateReady     DeliveryState = "READY"
	DeliveryStateDelivered DeliveryState = "DELIVERED"
)

// payTransitions lists the forward-only edges of the payment axis.
var payTransitions = map[PayState][]PayState{
	PayStateOrdered: {PayStatePaying},
	PayStatePaying:  {PayStatePaid},
	PayStatePaid:    {},
}

var deliveryTransitions = map[DeliveryState][]DeliveryState{
	DeliveryStatePreparing: {DeliveryStateReady},
	DeliveryStateReady:     {DeliveryStateDelivered},
	DeliveryStateDelivered: {},
}

func (s PayState) CanTransition(to PayState) bool {
	for _, next := range payTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s DeliveryState) CanTransition(to DeliveryState) bool {
	for _, next := range deliveryTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func ParseDeliveryState(v string) (DeliveryState, bool) {
	switch DeliveryState(v) {
	case DeliveryStatePreparing, DeliveryStateReady, DeliveryStateDelivered:
		return DeliveryState(v), true
	}
	return "", false
}

const CurrencyJPY = "JPY"

// Transaction is the persisted payment/delivery projection of one order.
// The record store is the source of truth; instances are snapshots and are
// re-read before every mutation.
type Transaction struct {
	OrderID           string
	UserID            string
	Title             string
	Amount            int64
	Currency          string
	TransactionID     string // assigned by the pay gateway at reservation
	PayState          PayState
	DeliveryState     DeliveryState
	OrderedAt         *time.Time
	PaidAt            *time.Time
	DeliveredAt       *time.Time
	ShippingMethod    string
	ShippingFeeAmount int64
	RecordID          string // record number in the store, printed on the pickup ticket
}

// TotalAmount is the charged amount: item amount plus shipping fee when a
// shipping method was chosen.
func (t *Transaction) TotalAmount() int64 {
	if t.ShippingMethod != "" && t.ShippingFeeAmount > 0 {
		return t.Amount + t.ShippingFeeAmount
	}
	return t.Amount
}
