package intent

// Type selects the conversational branch encoded in a postback payload.
type Type string

const (
	TypeMenu            Type = "menu"
	TypeSelect          Type = "select"
	TypeOrder           Type = "order"
	TypeAccess          Type = "access"
	TypeBusinessHour    Type = "business-hour"
	TypeCustomerSupport Type = "customer-support"
	TypeSend            Type = "send"
	TypeCancel          Type = "cancel"
)

// Intent is the validated form of a postback payload. Exactly the variant
// matching Type is populated.
type Intent struct {
	Type   Type
	Select *Select
	Order  *Order
}

// Select carries an item the user tapped in the menu.
type Select struct {
	ItemID string
}

// Order carries a confirmed item+quantity selection.
type Order struct {
	ItemID   string
	Quantity int64
}
