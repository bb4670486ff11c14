package intent

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var ErrInvalidPayload = errors.New("invalid_payload")

// Parse turns a URL-encoded postback payload (e.g. "type=order&item=burger01
// &quantity=2") into a validated Intent. Everything the payload can get
// wrong is rejected here so the services never see raw query strings.
func Parse(data string) (*Intent, error) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	typ := Type(values.Get("type"))
	switch typ {
	case TypeMenu, TypeAccess, TypeBusinessHour, TypeCustomerSupport, TypeSend, TypeCancel:
		return &Intent{Type: typ}, nil
	case TypeSelect:
		itemID := values.Get("item")
		if itemID == "" {
			return nil, fmt.Errorf("%w: select without item", ErrInvalidPayload)
		}
		return &Intent{Type: typ, Select: &Select{ItemID: itemID}}, nil
	case TypeOrder:
		itemID := values.Get("item")
		if itemID == "" {
			return nil, fmt.Errorf("%w: order without item", ErrInvalidPayload)
		}
		quantity, err := strconv.ParseInt(values.Get("quantity"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad quantity %q", ErrInvalidPayload, values.Get("quantity"))
		}
		if quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidPayload)
		}
		return &Intent{Type: typ, Order: &Order{ItemID: itemID, Quantity: quantity}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidPayload, values.Get("type"))
	}
}
