package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL,required"` // public origin the pay gateway redirects back to

	LineBotChannelAccessToken string `env:"LINE_BOT_CHANNEL_ACCESS_TOKEN,required"`
	LineBotChannelSecret      string `env:"LINE_BOT_CHANNEL_SECRET,required"`

	LinePayChannelID     string `env:"LINE_PAY_CHANNEL_ID,required"`
	LinePayChannelSecret string `env:"LINE_PAY_CHANNEL_SECRET,required"`
	// Checkout mode uses the production LINE Pay API and enables the
	// shipping-fee inquiry flow; off means sandbox.
	LinePayUseCheckout bool `env:"LINE_PAY_USE_CHECKOUT" envDefault:"false"`

	KintoneDomainName       string `env:"KINTONE_DOMAIN_NAME,required"`
	KintoneUserID           string `env:"KINTONE_USER_ID,required"`
	KintoneUserPassword     string `env:"KINTONE_USER_PASSWORD,required"`
	KintoneTransactionAppID string `env:"KINTONE_TRANSACTION_APP_ID,required"`
	KintoneOrderItemAppID   string `env:"KINTONE_ORDER_ITEM_APP_ID,required"`
	KintoneInquiryAppID     string `env:"KINTONE_INQUIRY_APP_ID,required"`

	NotifyAPIKey string `env:"NOTIFY_API_KEY,required"`

	GeminiTranslateModel string `env:"GEMINI_TRANSLATE_MODEL" envDefault:"gemini-2.5-flash"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
