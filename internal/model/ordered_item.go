package model

// OrderedItem is the order-line record written alongside a Transaction when
// an order is initiated.
type OrderedItem struct {
	OrderID   string
	UserID    string
	ItemID    string
	ItemName  string
	UnitPrice int64
	Quantity  int64
}
