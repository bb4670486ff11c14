package notify

import (
	"context"
	"time"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/shinyyama/takeout-backend/internal/model"
)

// Notifier sends outbound chat messages. Implementations must be safe for
// concurrent use; every method honours the context deadline.
type Notifier interface {
	PushReceipt(ctx context.Context, userID string, tx *model.Transaction) error
	PushReady(ctx context.Context, userID string, tx *model.Transaction) error
	PushThanks(ctx context.Context, userID string) error
	Multicast(ctx context.Context, userIDs []string, title, body string) error
}

type LineNotifier struct {
	bot *linebot.Client
}

func NewLineNotifier(bot *linebot.Client) *LineNotifier {
	return &LineNotifier{bot: bot}
}

// pushes should not hang the payment flow behind a slow messaging API
func withPushDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 10*time.Second)
}

func (n *LineNotifier) PushReceipt(ctx context.Context, userID string, tx *model.Transaction) error {
	ctx, cancel := withPushDeadline(ctx)
	defer cancel()
	_, err := n.bot.PushMessage(userID, ReceiptMessage(tx)).WithContext(ctx).Do()
	return err
}

func (n *LineNotifier) PushReady(ctx context.Context, userID string, tx *model.Transaction) error {
	ctx, cancel := withPushDeadline(ctx)
	defer cancel()
	_, err := n.bot.PushMessage(userID, ReadyMessage(tx)).WithContext(ctx).Do()
	return err
}

func (n *LineNotifier) PushThanks(ctx context.Context, userID string) error {
	ctx, cancel := withPushDeadline(ctx)
	defer cancel()
	_, err := n.bot.PushMessage(userID, ThanksMessage()).WithContext(ctx).Do()
	return err
}

func (n *LineNotifier) Multicast(ctx context.Context, userIDs []string, title, body string) error {
	ctx, cancel := withPushDeadline(ctx)
	defer cancel()
	_, err := n.bot.Multicast(userIDs, AnnouncementMessage(title, body)).WithContext(ctx).Do()
	return err
}
