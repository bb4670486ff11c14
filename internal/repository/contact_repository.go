package repository

import (
	"context"
	"fmt"

	"github.com/shinyyama/takeout-backend/internal/kintone"
	"github.com/shinyyama/takeout-backend/internal/model"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}

type kintoneContactRepository struct {
	client *kintone.Client
	appID  string
}

func NewContactRepository(client *kintone.Client, appID string) ContactRepository {
	return &kintoneContactRepository{client: client, appID: appID}
}

func (r *kintoneContactRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	record := kintone.Record{
		"user_id":     {Value: msg.UserID},
		"message":     {Value: msg.Message},
		"category":    {Value: msg.Category},
		"translation": {Value: msg.Translation},
		"order_id":    {Value: msg.OrderID},
	}
	if err := r.client.AddRecord(ctx, r.appID, record); err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}
