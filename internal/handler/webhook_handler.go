package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"golang.org/x/sync/errgroup"

	"github.com/shinyyama/takeout-backend/internal/catalog"
	"github.com/shinyyama/takeout-backend/internal/intent"
	"github.com/shinyyama/takeout-backend/internal/notify"
	"github.com/shinyyama/takeout-backend/internal/service"
)

// WebhookHandler turns inbound LINE events into conversational flows. The
// postback payload is parsed into an Intent before anything else runs.
type WebhookHandler struct {
	bot           *linebot.Client
	channelSecret string
	orders        service.OrderService
	contacts      service.ContactService
}

func NewWebhookHandler(bot *linebot.Client, channelSecret string, orders service.OrderService, contacts service.ContactService) *WebhookHandler {
	return &WebhookHandler{
		bot:           bot,
		channelSecret: channelSecret,
		orders:        orders,
		contacts:      contacts,
	}
}

func (h *WebhookHandler) Handle(c echo.Context) error {
	events, err := linebot.ParseRequest(h.channelSecret, c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			return c.NoContent(http.StatusBadRequest)
		}
		return c.NoContent(http.StatusInternalServerError)
	}

	// one delivery carries a batch; events are independent tasks
	g, ctx := errgroup.WithContext(c.Request().Context())
	for _, event := range events {
		event := event
		g.Go(func() error {
			return h.handleEvent(ctx, event)
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[bot] stage=event_fail err=%v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

func (h *WebhookHandler) handleEvent(ctx context.Context, event *linebot.Event) error {
	switch event.Type {
	case linebot.EventTypeFollow:
		return h.reply(ctx, event.ReplyToken, notify.FollowMessage())
	case linebot.EventTypePostback:
		return h.handlePostback(ctx, event)
	case linebot.EventTypeMessage:
		if text, ok := event.Message.(*linebot.TextMessage); ok {
			return h.handleText(ctx, event, text.Text)
		}
		return nil
	default:
		log.Printf("[bot] stage=ignored_event type=%s", event.Type)
		return nil
	}
}

func (h *WebhookHandler) handlePostback(ctx context.Context, event *linebot.Event) error {
	in, err := intent.Parse(event.Postback.Data)
	if err != nil {
		log.Printf("[bot] stage=intent_reject data=%q err=%v", event.Postback.Data, err)
		return h.reply(ctx, event.ReplyToken, notify.RetryMessage())
	}
	switch in.Type {
	case intent.TypeMenu:
		return h.reply(ctx, event.ReplyToken, notify.MenuMessage(catalog.List()))
	case intent.TypeSelect:
		item, err := catalog.Find(in.Select.ItemID)
		if err != nil {
			return h.reply(ctx, event.ReplyToken, notify.RetryMessage())
		}
		return h.reply(ctx, event.ReplyToken, notify.QuantityMessage(item))
	case intent.TypeOrder:
		return h.handleOrder(ctx, event, in.Order)
	case intent.TypeAccess:
		return h.reply(ctx, event.ReplyToken,
			linebot.NewTextMessage("東京都渋谷区道玄坂1-2-3 LDCビル1F\n渋谷駅から徒歩5分です。"))
	case intent.TypeBusinessHour:
		return h.reply(ctx, event.ReplyToken,
			linebot.NewTextMessage("営業時間は 11:00〜21:00（ラストオーダー 20:30）です。"))
	case intent.TypeCustomerSupport, intent.TypeSend:
		return h.reply(ctx, event.ReplyToken,
			linebot.NewTextMessage("お問い合わせ内容をこのトークにそのままお送りください。担当者が確認します。"))
	case intent.TypeCancel:
		return h.reply(ctx, event.ReplyToken,
			linebot.NewTextMessage("注文をキャンセルしました。またのご利用をお待ちしております。"))
	default:
		return nil
	}
}

func (h *WebhookHandler) handleOrder(ctx context.Context, event *linebot.Event, order *intent.Order) error {
	userID := ""
	if event.Source != nil {
		userID = event.Source.UserID
	}
	conf, err := h.orders.InitiateOrder(ctx, userID, order.ItemID, order.Quantity)
	if err != nil {
		log.Printf("[bot] stage=order_fail user=%s item=%s err=%v", userID, order.ItemID, err)
		return h.reply(ctx, event.ReplyToken, notify.RetryMessage())
	}
	return h.reply(ctx, event.ReplyToken, notify.PaymentMessage(conf.Transaction, conf.PaymentURL))
}

func (h *WebhookHandler) handleText(ctx context.Context, event *linebot.Event, text string) error {
	userID := ""
	if event.Source != nil {
		userID = event.Source.UserID
	}
	if err := h.contacts.RecordInquiry(ctx, userID, text); err != nil {
		return h.reply(ctx, event.ReplyToken,
			linebot.NewTextMessage("申し訳ありません、お問い合わせを受け付けられませんでした。もう一度お試しください。"))
	}
	return h.reply(ctx, event.ReplyToken,
		linebot.NewTextMessage("お問い合わせありがとうございます。担当者が確認のうえご連絡します。"))
}

func (h *WebhookHandler) reply(ctx context.Context, replyToken string, messages ...linebot.SendingMessage) error {
	if replyToken == "" {
		return nil
	}
	_, err := h.bot.ReplyMessage(replyToken, messages...).WithContext(ctx).Do()
	return err
}
