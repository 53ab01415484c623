package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// TelegramNotifier sends best-effort alerts to a chat. Failures are
// logged and never propagated to the caller
type TelegramNotifier struct {
	BotToken string
	ChatID   string
}

func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{BotToken: botToken, ChatID: chatID}
}

func (n *TelegramNotifier) Send(text string) {
	if n.BotToken == "" || n.ChatID == "" {
		return
	}

	go func() {
		body, err := json.Marshal(telegramMessage{
			ChatID:    n.ChatID,
			Text:      text,
			ParseMode: "HTML",
		})
		if err != nil {
			log.Printf("Failed to marshal telegram message: %v\n", err)
			return
		}

		resp, err := http.Post(
			fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.BotToken),
			"application/json",
			bytes.NewBuffer(body),
		)
		if err != nil {
			log.Printf("Telegram send failed: %v\n", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("Telegram returned status %d", resp.StatusCode)
		}
	}()
}
