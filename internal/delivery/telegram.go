// Package delivery publishes the selected post to the downstream channel.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Message is one formatted outbound publication.
type Message struct {
	MediaURL  string
	Caption   string
	Animation bool
}

// Sink publishes a formatted message to a downstream channel.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// TelegramSink posts via the Telegram Bot API. Images go out as photos,
// gif targets as animations so they play inline.
type TelegramSink struct {
	client *resty.Client
	chatID string
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewTelegramSink(token, chatID string) *TelegramSink {
	client := resty.New()
	client.SetBaseURL("https://api.telegram.org/bot" + token)
	client.SetTimeout(30 * time.Second)

	return &TelegramSink{client: client, chatID: chatID}
}

func (t *TelegramSink) Deliver(ctx context.Context, msg Message) error {
	method := "/sendPhoto"
	mediaKey := "photo"
	if msg.Animation {
		method = "/sendAnimation"
		mediaKey = "animation"
	}

	var result telegramResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id":    t.chatID,
			mediaKey:     msg.MediaURL,
			"caption":    msg.Caption,
			"parse_mode": "HTML",
		}).
		SetResult(&result).
		SetError(&result).
		Post(method)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram %s failed (status %d): %s",
			method, resp.StatusCode(), result.Description)
	}
	return nil
}
