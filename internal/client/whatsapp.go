// Package client talks to the WhatsApp HTTP gateway that fronts the actual
// chat session. The gateway exposes a send endpoint and a status endpoint
// reporting whether the underlying session is connected.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/whatsheet/whatsheet/internal/model"
)

type WhatsAppClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewWhatsAppClient(baseURL string, timeout time.Duration, logger *slog.Logger) *WhatsAppClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WhatsAppClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type sendRequest struct {
	Phone    string `json:"phone"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type sendResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

type statusResponse struct {
	Connected bool   `json:"connected"`
	Phone     string `json:"phone"`
	State     string `json:"state"`
}

// Deliver sends one message to one target. When an image URL is present the
// image is attempted first with the message as caption; if that fails the
// same message is re-sent text-only. Image hosting is unreliable, so the
// fallback is unconditional.
func (c *WhatsAppClient) Deliver(ctx context.Context, target, body, imageURL string) (model.Outcome, error) {
	if imageURL != "" {
		if err := c.send(ctx, target, body, DirectDriveLink(imageURL)); err == nil {
			return model.SentWithImage, nil
		} else {
			c.logger.Warn("image send failed, falling back to text-only",
				"target", target, "error", err)
		}
	}

	if err := c.send(ctx, target, body, ""); err != nil {
		return model.Failed, err
	}
	return model.SentTextOnly, nil
}

// Ready probes the gateway's session state. Callers poll this before
// starting a pass.
func (c *WhatsAppClient) Ready(ctx context.Context) error {
	st, err := c.Status(ctx)
	if err != nil {
		return err
	}
	if !st.Connected {
		return fmt.Errorf("gateway session not connected (state=%s)", st.State)
	}
	return nil
}

// Status returns the raw gateway session state.
func (c *WhatsAppClient) Status(ctx context.Context) (ChannelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return ChannelStatus{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ChannelStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ChannelStatus{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return ChannelStatus{}, fmt.Errorf("failed to decode status: %w", err)
	}
	return ChannelStatus{Connected: sr.Connected, Phone: sr.Phone, State: sr.State}, nil
}

// ChannelStatus is the gateway session state surfaced to operators.
type ChannelStatus struct {
	Connected bool
	Phone     string
	State     string
}

func (c *WhatsAppClient) send(ctx context.Context, target, body, imageURL string) error {
	reqBody, err := json.Marshal(sendRequest{
		Phone:    target,
		Message:  body,
		ImageURL: imageURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(respBody))
	}

	var sr sendResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return fmt.Errorf("failed to decode json: %w body=%q", err, string(respBody))
	}
	return nil
}
