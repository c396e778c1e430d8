package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/valyala/fasthttp"
)

var ErrWebhookRejected = errors.New("webhook endpoint rejected the notification")

type WebhookClientConfig struct {
	URL      string
	Timeout  time.Duration
	MaxConns int
}

// WebhookClient delivers notifications to the configured endpoint as JSON
// POSTs. Any 2xx status counts as delivered.
type WebhookClient struct {
	config WebhookClientConfig
	client *fasthttp.Client
}

func NewWebhookClient(config WebhookClientConfig) (*WebhookClient, error) {
	if config.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.MaxConns <= 0 {
		config.MaxConns = 64
	}

	return &WebhookClient{
		config: config,
		client: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}, nil
}

func (c *WebhookClient) Deliver(ctx context.Context, notification *model.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: status %d, body: %s", ErrWebhookRejected, status, resp.Body())
	}
	return nil
}
