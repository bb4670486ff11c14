package service

import "time"

// ShippingMethod is one delivery option offered to the gateway's
// shipping-fee inquiry. Fees are integer yen.
type ShippingMethod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Amount        int64  `json:"amount"`
	ToDeliveryYmd string `json:"toDeliveryYmd"`
}

var shippingMethods = []ShippingMethod{
	{ID: "shipping_01", Name: "ウーハーイート", Amount: 2},
	{ID: "shipping_02", Name: "出前便", Amount: 1},
}

// ShippingMethods returns the catalog with the delivery date set to today.
func ShippingMethods(now time.Time) []ShippingMethod {
	ymd := now.Format("20060102")
	out := make([]ShippingMethod, len(shippingMethods))
	copy(out, shippingMethods)
	for i := range out {
		out[i].ToDeliveryYmd = ymd
	}
	return out
}

func ShippingMethodByID(id string) (ShippingMethod, bool) {
	for _, m := range shippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}
