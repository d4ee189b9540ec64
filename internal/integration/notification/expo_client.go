package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/owninstead/backend/internal/application/adapter"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

const expoDeviceNotRegistered = "DeviceNotRegistered"

// ExpoClient implements adapter.PushSender using the Expo push API.
type ExpoClient struct {
	httpClient  *http.Client
	url         string
	accessToken string
}

// NewExpoClient creates a new Expo push client.
func NewExpoClient(url, accessToken string) *ExpoClient {
	return &ExpoClient{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		url:         url,
		accessToken: accessToken,
	}
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

// Send pushes a single message. Unknown devices and 4xx responses are permanent failures.
func (c *ExpoClient) Send(ctx context.Context, message adapter.PushMessage) (*adapter.PushResult, error) {
	payload, err := json.Marshal([]expoMessage{{
		To:    message.To,
		Title: message.Title,
		Body:  message.Body,
		Data:  message.Data,
		Sound: "default",
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, temporary("push request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, temporary("failed to read push response", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("expo returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, temporary("push provider unavailable", err)
		}
		return nil, permanent("push rejected", err)
	}

	var decoded expoResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, temporary("failed to decode push response", err)
	}
	if len(decoded.Data) == 0 {
		return nil, temporary("push response has no ticket", fmt.Errorf("empty ticket list"))
	}

	ticket := decoded.Data[0]
	if ticket.Status != "ok" {
		if ticket.Details.Error == expoDeviceNotRegistered {
			return nil, permanent("push token is no longer valid", domainerror.ErrDeviceNotRegistered)
		}
		return nil, permanent("push rejected", fmt.Errorf("%s: %s", ticket.Details.Error, ticket.Message))
	}

	return &adapter.PushResult{TicketID: ticket.ID}, nil
}

func permanent(msg string, err error) error {
	return domainerror.NewNotificationError(domainerror.ErrCodePermanentDeliveryFailure, msg, err)
}

func temporary(msg string, err error) error {
	return domainerror.NewNotificationError(domainerror.ErrCodeTemporaryDeliveryFailure, msg, err)
}

var _ adapter.PushSender = (*ExpoClient)(nil)
