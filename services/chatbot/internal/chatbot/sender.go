package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
)

// SendTimeout bounds one outbound bot-API call. A send that takes longer
// counts as failed.
const SendTimeout = 10 * time.Second

// BotSender delivers text to a chat channel.
type BotSender interface {
	Send(ctx context.Context, channelID, text string) error
}

// HTTPBotSender posts messages to the chat platform's bot API.
type HTTPBotSender struct {
	baseURL string
	client  *http.Client
	logger  aqm.Logger
}

func NewHTTPBotSender(config *aqm.Config, logger aqm.Logger) (*HTTPBotSender, error) {
	baseURL, _ := config.GetString("bot.api.url")
	if baseURL == "" {
		return nil, fmt.Errorf("bot.api.url is required")
	}
	return &HTTPBotSender{
		baseURL: baseURL,
		client:  &http.Client{Timeout: SendTimeout},
		logger:  logger,
	}, nil
}

type sendMessageRequest struct {
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

func (s *HTTPBotSender) Send(ctx context.Context, channelID, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChannelID: channelID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("cannot encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("bot API call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bot API returned status %d", resp.StatusCode)
	}
	return nil
}
