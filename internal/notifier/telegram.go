package notifier

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TelegramNotifier announces through the Telegram bot API.
type TelegramNotifier struct {
	Token   string
	ChatID  string
	Retries int
	Delay   time.Duration

	// BaseURL overrides the API host in tests.
	BaseURL string

	client *http.Client
}

func NewTelegramNotifier(token, chatID string, retries int, delay time.Duration) *TelegramNotifier {
	if retries < 1 {
		retries = 1
	}
	return &TelegramNotifier{
		Token:   token,
		ChatID:  chatID,
		Retries: retries,
		Delay:   delay,
		BaseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Send(message string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.Token)
	resp, err := t.client.PostForm(apiURL, url.Values{
		"chat_id": {t.ChatID},
		"text":    {message},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send failed: %s", resp.Status)
	}
	return nil
}

func (t *TelegramNotifier) SendWithRetry(message string) error {
	var err error
	for i := 0; i < t.Retries; i++ {
		if err = t.Send(message); err == nil {
			return nil
		}
		time.Sleep(t.Delay)
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", t.Retries, err)
}
