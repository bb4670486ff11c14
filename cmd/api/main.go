package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/shinyyama/takeout-backend/internal/ai"
	"github.com/shinyyama/takeout-backend/internal/config"
	"github.com/shinyyama/takeout-backend/internal/kintone"
	"github.com/shinyyama/takeout-backend/internal/linepay"
	"github.com/shinyyama/takeout-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	bot, err := linebot.New(cfg.LineBotChannelSecret, cfg.LineBotChannelAccessToken)
	if err != nil {
		log.Fatalf("line bot init error: %v", err)
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	store := kintone.NewClient(cfg.KintoneDomainName, cfg.KintoneUserID, cfg.KintoneUserPassword, httpClient)
	pay := linepay.NewClient(cfg.LinePayChannelID, cfg.LinePayChannelSecret, !cfg.LinePayUseCheckout, httpClient)
	analyzer := ai.NewInquiryClient(cfg.GeminiTranslateModel)

	srv := server.New(cfg, bot, store, pay, analyzer)

	addr := ":" + cfg.Port
	log.Printf("starting server on %s (checkout=%v)", addr, cfg.LinePayUseCheckout)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
