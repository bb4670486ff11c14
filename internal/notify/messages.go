package notify

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/shinyyama/takeout-backend/internal/model"
)

const shopName = "LDC テイクアウト"

// ReceiptMessage renders the payment receipt. Content is a pure function of
// the transaction: item line, shipping fee, charged total, payment id.
func ReceiptMessage(tx *model.Transaction) *linebot.FlexMessage {
	receiptRow := func(label, value string) *linebot.BoxComponent {
		return &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeHorizontal,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:  linebot.FlexComponentTypeText,
					Text:  label,
					Size:  linebot.FlexTextSizeTypeSm,
					Color: "#555555",
					Flex:  linebot.IntPtr(0),
				},
				&linebot.TextComponent{
					Type:  linebot.FlexComponentTypeText,
					Text:  value,
					Size:  linebot.FlexTextSizeTypeSm,
					Color: "#111111",
					Align: linebot.FlexComponentAlignTypeEnd,
				},
			},
		}
	}

	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "領収書",
					Weight: linebot.FlexTextWeightTypeBold,
					Color:  "#1DB446",
					Size:   linebot.FlexTextSizeTypeSm,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   shopName,
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeXxl,
					Margin: linebot.FlexComponentMarginTypeMd,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "お買い上げありがとうございました！",
					Size:   linebot.FlexTextSizeTypeSm,
					Margin: linebot.FlexComponentMarginTypeSm,
				},
				&linebot.SeparatorComponent{
					Type:   linebot.FlexComponentTypeSeparator,
					Margin: linebot.FlexComponentMarginTypeXxl,
				},
				&linebot.BoxComponent{
					Type:    linebot.FlexComponentTypeBox,
					Layout:  linebot.FlexBoxLayoutTypeVertical,
					Margin:  linebot.FlexComponentMarginTypeXxl,
					Spacing: linebot.FlexComponentSpacingTypeSm,
					Contents: []linebot.FlexComponent{
						receiptRow(tx.Title, fmt.Sprintf("%d 円", tx.Amount)),
						receiptRow("送料", fmt.Sprintf("%d 円", tx.ShippingFeeAmount)),
					},
				},
				&linebot.SeparatorComponent{
					Type:   linebot.FlexComponentTypeSeparator,
					Margin: linebot.FlexComponentMarginTypeXxl,
				},
				&linebot.BoxComponent{
					Type:   linebot.FlexComponentTypeBox,
					Layout: linebot.FlexBoxLayoutTypeHorizontal,
					Margin: linebot.FlexComponentMarginTypeMd,
					Contents: []linebot.FlexComponent{
						&linebot.TextComponent{
							Type:  linebot.FlexComponentTypeText,
							Text:  "合計",
							Size:  linebot.FlexTextSizeTypeMd,
							Color: "#555555",
						},
						&linebot.TextComponent{
							Type:   linebot.FlexComponentTypeText,
							Text:   fmt.Sprintf("%d 円", tx.TotalAmount()),
							Size:   linebot.FlexTextSizeTypeLg,
							Color:  "#111111",
							Align:  linebot.FlexComponentAlignTypeEnd,
							Weight: linebot.FlexTextWeightTypeBold,
						},
					},
				},
				&linebot.BoxComponent{
					Type:   linebot.FlexComponentTypeBox,
					Layout: linebot.FlexBoxLayoutTypeHorizontal,
					Margin: linebot.FlexComponentMarginTypeMd,
					Contents: []linebot.FlexComponent{
						&linebot.TextComponent{
							Type:  linebot.FlexComponentTypeText,
							Text:  "PAYMENT ID",
							Size:  linebot.FlexTextSizeTypeXs,
							Color: "#aaaaaa",
							Flex:  linebot.IntPtr(0),
						},
						&linebot.TextComponent{
							Type:  linebot.FlexComponentTypeText,
							Text:  tx.TransactionID,
							Size:  linebot.FlexTextSizeTypeXs,
							Color: "#aaaaaa",
							Align: linebot.FlexComponentAlignTypeEnd,
						},
					},
				},
			},
		},
		Styles: &linebot.BubbleStyle{
			Footer: &linebot.BlockStyle{Separator: true},
		},
	}
	return linebot.NewFlexMessage("領収書", bubble)
}

// ReadyMessage is the pickup ticket: record number and item name.
func ReadyMessage(tx *model.Transaction) *linebot.FlexMessage {
	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   tx.RecordID,
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeXxl,
					Align:  linebot.FlexComponentAlignTypeCenter,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "商品の準備ができました",
					Size:   linebot.FlexTextSizeTypeMd,
					Margin: linebot.FlexComponentMarginTypeMd,
					Align:  linebot.FlexComponentAlignTypeCenter,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   tx.Title,
					Size:   linebot.FlexTextSizeTypeSm,
					Color:  "#555555",
					Margin: linebot.FlexComponentMarginTypeMd,
					Align:  linebot.FlexComponentAlignTypeCenter,
				},
			},
		},
	}
	return linebot.NewFlexMessage("商品の準備ができました", bubble)
}

func ThanksMessage() *linebot.FlexMessage {
	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "ご利用ありがとうございました",
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeLg,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "またのご注文をお待ちしております。",
					Size:   linebot.FlexTextSizeTypeSm,
					Margin: linebot.FlexComponentMarginTypeMd,
				},
			},
		},
	}
	return linebot.NewFlexMessage("ご利用ありがとうございました", bubble)
}

// AnnouncementMessage is the staff-triggered multicast notice.
func AnnouncementMessage(title, body string) *linebot.FlexMessage {
	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   title,
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeLg,
				},
				&linebot.BoxComponent{
					Type:   linebot.FlexComponentTypeBox,
					Layout: linebot.FlexBoxLayoutTypeVertical,
					Margin: linebot.FlexComponentMarginTypeMd,
					Contents: []linebot.FlexComponent{
						&linebot.TextComponent{
							Type: linebot.FlexComponentTypeText,
							Text: body,
							Size: linebot.FlexTextSizeTypeSm,
							Wrap: true,
						},
					},
				},
			},
		},
	}
	return linebot.NewFlexMessage(title, bubble)
}

// PaymentMessage carries the payment URL for a freshly reserved order.
func PaymentMessage(tx *model.Transaction, paymentURL string) *linebot.FlexMessage {
	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "ご注文内容",
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeSm,
					Color:  "#1DB446",
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   tx.Title,
					Size:   linebot.FlexTextSizeTypeMd,
					Margin: linebot.FlexComponentMarginTypeMd,
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   fmt.Sprintf("%d 円", tx.Amount),
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeLg,
					Margin: linebot.FlexComponentMarginTypeSm,
				},
			},
		},
		Footer: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.ButtonComponent{
					Type:   linebot.FlexComponentTypeButton,
					Style:  linebot.FlexButtonStyleTypePrimary,
					Action: linebot.NewURIAction("LINE Payで支払う", paymentURL),
				},
			},
		},
	}
	return linebot.NewFlexMessage("お支払いへ進んでください", bubble)
}

// MenuMessage lists the catalog as postback quick replies (select branch).
func MenuMessage(items []model.Item) linebot.SendingMessage {
	buttons := make([]*linebot.QuickReplyButton, 0, len(items))
	for _, item := range items {
		label := fmt.Sprintf("%s %d円", item.Name, item.UnitPrice)
		if len([]rune(label)) > 20 {
			label = string([]rune(label)[:20])
		}
		buttons = append(buttons, linebot.NewQuickReplyButton("", &linebot.PostbackAction{
			Label:       label,
			Data:        "type=select&item=" + item.ID,
			DisplayText: item.Name,
		}))
	}
	return linebot.NewTextMessage("メニューからお選びください").
		WithQuickReplies(linebot.NewQuickReplyItems(buttons...))
}

// QuantityMessage asks for a quantity after an item was selected.
func QuantityMessage(item model.Item) linebot.SendingMessage {
	buttons := make([]*linebot.QuickReplyButton, 0, 5)
	for q := 1; q <= 5; q++ {
		buttons = append(buttons, linebot.NewQuickReplyButton("", &linebot.PostbackAction{
			Label:       fmt.Sprintf("%d個", q),
			Data:        fmt.Sprintf("type=order&item=%s&quantity=%d", item.ID, q),
			DisplayText: fmt.Sprintf("%sを%d個", item.Name, q),
		}))
	}
	text := fmt.Sprintf("%s(%d円)ですね。個数をお選びください", item.Name, item.UnitPrice)
	return linebot.NewTextMessage(text).
		WithQuickReplies(linebot.NewQuickReplyItems(buttons...))
}

func FollowMessage() linebot.SendingMessage {
	return linebot.NewTextMessage("友だち追加ありがとうございます！メニューから注文、決済、受け取り通知までこのトークで完結します。")
}

func RetryMessage() linebot.SendingMessage {
	return linebot.NewTextMessage("申し訳ありません、注文を完了できませんでした。時間をおいてもう一度お試しください。")
}
