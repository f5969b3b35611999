package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultTelegramURL is the Bot API root.
const DefaultTelegramURL = "https://api.telegram.org"

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewTelegram returns a Telegram notifier for the bot token. An empty
// baseURL uses DefaultTelegramURL.
func NewTelegram(token, baseURL string, client *http.Client) *Telegram {
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Telegram{token: token, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type sendMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify calls sendMessage with handle as the chat id. A missing "@" is
// added.
func (t *Telegram) Notify(ctx context.Context, handle, message string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return fmt.Errorf("telegram: empty handle")
	}
	if !strings.HasPrefix(handle, "@") && !isNumeric(handle) {
		handle = "@" + handle
	}

	body, err := json.Marshal(sendMessage{ChatID: handle, Text: message})
	if err != nil {
		return fmt.Errorf("telegram: encode: %w", err)
	}
	endpoint := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &SendError{Handle: handle, Err: errors.New("build request")}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &SendError{Handle: handle, Err: withoutURL(err)}
	}
	defer resp.Body.Close()

	var out apiResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK || !out.OK {
		return &SendError{Handle: handle, Status: resp.StatusCode, Err: errors.New(out.Description)}
	}
	return nil
}

// withoutURL drops the request URL, which carries the bot token, from a
// transport error.
func withoutURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

func isNumeric(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
