package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shinyyama/takeout-backend/internal/kintone"
	"github.com/shinyyama/takeout-backend/internal/model"
)

type OrderedItemRepository interface {
	Create(ctx context.Context, item *model.OrderedItem) error
}

type kintoneOrderedItemRepository struct {
	client *kintone.Client
	appID  string
}

func NewOrderedItemRepository(client *kintone.Client, appID string) OrderedItemRepository {
	return &kintoneOrderedItemRepository{client: client, appID: appID}
}

func (r *kintoneOrderedItemRepository) Create(ctx context.Context, item *model.OrderedItem) error {
	record := kintone.Record{
		"order_id":   {Value: item.OrderID},
		"user_id":    {Value: item.UserID},
		"item_id":    {Value: item.ItemID},
		"item_name":  {Value: item.ItemName},
		"unit_price": {Value: strconv.FormatInt(item.UnitPrice, 10)},
		"quantity":   {Value: strconv.FormatInt(item.Quantity, 10)},
	}
	if err := r.client.AddRecord(ctx, r.appID, record); err != nil {
		return fmt.Errorf("create ordered item: %w", err)
	}
	return nil
}
