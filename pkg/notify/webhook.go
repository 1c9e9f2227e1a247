package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// webhookSender POSTs a JSON payload to a generic or Discord webhook. Both
// accept the same {"content": ...} body.
type webhookSender struct {
	channel string
	url     string
	client  *http.Client
}

func newWebhookSender(channel, url string) *webhookSender {
	return &webhookSender{
		channel: channel,
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *webhookSender) name() string {
	return s.channel
}

func (s *webhookSender) send(game, message string) error {
	payload, err := json.Marshal(map[string]string{
		"content": fmt.Sprintf("[%s] %s", game, message),
	})
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
