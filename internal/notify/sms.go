package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// smsAPIURL is the sms.ru send endpoint.
const smsAPIURL = "https://sms.ru/sms/send"

// SMSSender delivers short messages through the sms.ru HTTP API.
type SMSSender struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewSMSSender constructs an SMSSender. An empty apiKey puts the sender in
// dev mode.
func NewSMSSender(apiKey string) *SMSSender {
	return &SMSSender{
		apiKey: apiKey,
		apiURL: smsAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// smsResponse is the subset of the sms.ru JSON reply the sender checks.
type smsResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
}

// cleanPhone strips everything but digits from a phone number.
func cleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Send delivers message to the given phone number. In dev mode the message
// is logged and the call succeeds.
func (s *SMSSender) Send(ctx context.Context, to, message string) error {
	if s.apiKey == "" {
		log.Info().Str("to", to).Str("message", message).Msg("sms (dev mode)")
		return nil
	}

	params := url.Values{}
	params.Set("api_id", s.apiKey)
	params.Set("to", cleanPhone(to))
	params.Set("msg", message)
	params.Set("json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms to %s: %w", to, err)
	}
	defer resp.Body.Close()

	var body smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode sms.ru response: %w", err)
	}
	if body.Status != "OK" {
		return fmt.Errorf("sms.ru rejected message: status %d", body.StatusCode)
	}
	return nil
}
