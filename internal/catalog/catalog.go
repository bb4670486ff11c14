package catalog

import (
	"errors"

	"github.com/shinyyama/takeout-backend/internal/model"
)

var ErrUnknownItem = errors.New("unknown_item")

// items is the fixed takeout menu. The catalog is immutable and safe for
// concurrent reads.
var items = map[string]model.Item{
	"burger01": {ID: "burger01", Name: "LDCバーガー", UnitPrice: 800},
	"burger02": {ID: "burger02", Name: "チーズバーガー", UnitPrice: 650},
	"set01":    {ID: "set01", Name: "LDCバーガーセット", UnitPrice: 1200},
	"drink01":  {ID: "drink01", Name: "アイスコーヒー", UnitPrice: 300},
	"side01":   {ID: "side01", Name: "フライドポテト", UnitPrice: 400},
}

// Find resolves an item id. Unknown ids return ErrUnknownItem.
func Find(itemID string) (model.Item, error) {
	item, ok := items[itemID]
	if !ok {
		return model.Item{}, ErrUnknownItem
	}
	return item, nil
}

// List returns the menu in a stable order for rendering.
func List() []model.Item {
	ids := []string{"burger01", "burger02", "set01", "side01", "drink01"}
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, items[id])
	}
	return out
}
