package model

// Item is one purchasable catalog entry. Prices are integer yen.
type Item struct {
	ID        string
	Name      string
	UnitPrice int64
}
