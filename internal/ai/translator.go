package ai

import (
	"context"
	"log"
	"time"

	"google.golang.org/genai"
)

// Analysis is what the model extracts from one inquiry: a Japanese
// translation and a coarse routing category.
type Analysis struct {
	Translation string
	Category    string
}

type InquiryClient struct {
	model string
}

func NewInquiryClient(model string) *InquiryClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &InquiryClient{model: model}
}

const inquiryPrompt = `あなたは飲食店の問い合わせ窓口の仕分け係です。
入力されたお客様メッセージを処理し、必ず次の2行だけを出力してください。
1行目: メッセージの日本語訳（すでに日本語ならそのまま）
2行目: 分類ラベル。ORDER / PAYMENT / DELIVERY / COMPLAINT / OTHER のいずれか1語
説明や記号、空行は出力しないでください。`

// Analyze translates the message to Japanese and labels it. Callers must
// treat failure as non-fatal; the raw message is still worth storing.
func (c *InquiryClient) Analyze(ctx context.Context, message string) (*Analysis, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		log.Printf("[inquiry] stage=client_init err=%v", err)
		return nil, err
	}
	parts := []*genai.Part{
		genai.NewPartFromText(inquiryPrompt),
		genai.NewPartFromText("メッセージ: " + message),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		log.Printf("[inquiry] stage=generate_fail model=%s err=%v", c.model, err)
		return nil, err
	}
	rawText := res.Text()
	analysis, err := ParseAnalysis(rawText)
	if err != nil {
		log.Printf("[inquiry] stage=parse_fail len=%d err=%v", len(rawText), err)
		return nil, err
	}
	log.Printf("[inquiry] stage=done category=%s totalMs=%d", analysis.Category, time.Since(start).Milliseconds())
	return analysis, nil
}
