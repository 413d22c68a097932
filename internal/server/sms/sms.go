// Package sms delivers one-time sign-in codes.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/logging"
)

const defaultTimeout = 15 * time.Second

type Sender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// GatewayClient posts codes as JSON to an HTTP SMS gateway.
type GatewayClient struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

func NewGatewayClient(apiKey, baseURL, sender string) *GatewayClient {
	return &GatewayClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type gatewayRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// SendOTP never logs the code.
func (c *GatewayClient) SendOTP(ctx context.Context, phone, code string) error {
	raw, err := json.Marshal(gatewayRequest{
		To:      phone,
		From:    c.Sender,
		Message: fmt.Sprintf("%s is your MedTrack verification code.", code),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// LogSender writes codes to the log; for development without a gateway.
type LogSender struct {
	Logger logging.Logger
}

func (s LogSender) SendOTP(ctx context.Context, phone, code string) error {
	s.Logger.Info(ctx, "sms not configured, printing code", "phone", phone, "code", code)
	return nil
}

// New picks the gateway when a URL is configured.
func New(baseURL, apiKey, sender string, logger logging.Logger) Sender {
	if baseURL == "" {
		return LogSender{Logger: logger}
	}
	return NewGatewayClient(apiKey, baseURL, sender)
}
