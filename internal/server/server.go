package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/shinyyama/takeout-backend/internal/config"
	"github.com/shinyyama/takeout-backend/internal/handler"
	"github.com/shinyyama/takeout-backend/internal/kintone"
	"github.com/shinyyama/takeout-backend/internal/linepay"
	appmw "github.com/shinyyama/takeout-backend/internal/middleware"
	"github.com/shinyyama/takeout-backend/internal/notify"
	"github.com/shinyyama/takeout-backend/internal/repository"
	"github.com/shinyyama/takeout-backend/internal/service"
)

type Server struct {
	e *echo.Echo
}

// New wires the whole application: clients come from the composition root,
// repositories/services/handlers are assembled here.
func New(cfg *config.Config, bot *linebot.Client, store *kintone.Client, pay *linepay.Client, analyzer service.InquiryAnalyzer) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	txRepo := repository.NewTransactionRepository(store, cfg.KintoneTransactionAppID, cfg.BaseURL)
	itemRepo := repository.NewOrderedItemRepository(store, cfg.KintoneOrderItemAppID)
	contactRepo := repository.NewContactRepository(store, cfg.KintoneInquiryAppID)

	notifier := notify.NewLineNotifier(bot)
	orderSvc := service.NewOrderService(txRepo, itemRepo, pay, notifier, cfg.BaseURL, cfg.LinePayUseCheckout)
	contactSvc := service.NewContactService(contactRepo, analyzer)

	webhookHandler := handler.NewWebhookHandler(bot, cfg.LineBotChannelSecret, orderSvc, contactSvc)
	payHandler := handler.NewPayHandler(orderSvc)
	opsHandler := handler.NewOpsHandler(orderSvc, notifier)
	apiKey := appmw.NewAPIKeyMiddleware(cfg.NotifyAPIKey)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	e.POST("/bot/webhook", webhookHandler.Handle)

	pays := e.Group("/pay")
	pays.GET("/confirm", payHandler.Confirm)
	pays.GET("/cancel", payHandler.Cancel)
	pays.POST("/shipping_methods", payHandler.ShippingMethods)

	api := e.Group("/api")
	api.POST("/notifyOrderDeliveryState", opsHandler.NotifyOrderDeliveryState, apiKey.Require)
	api.POST("/sendMulticastMessage", opsHandler.SendMulticastMessage, apiKey.Require)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
