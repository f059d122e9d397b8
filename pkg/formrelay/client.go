package formrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

var errEndpointRequired = errors.New("form relay endpoint is required")

// Client posts structured order emails to a form-to-email webhook
// (Formspree-style). Any 2xx response counts as accepted.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the relay client for the given webhook endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errEndpointRequired
	}

	client := &Client{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// OrderEmailPayload is the flat JSON document the webhook provider expects:
// a preformatted to/subject/body block plus the individual fields as strings.
type OrderEmailPayload struct {
	To                  string `json:"to"`
	Subject             string `json:"subject"`
	Body                string `json:"body"`
	CustomerName        string `json:"customerName"`
	CustomerEmail       string `json:"customerEmail"`
	CustomerPhone       string `json:"customerPhone"`
	CustomerAddress     string `json:"customerAddress"`
	DeliveryOption      string `json:"deliveryOption"`
	SpecialInstructions string `json:"specialInstructions"`
	OrderItems          string `json:"orderItems"`
	Subtotal            string `json:"subtotal"`
	DeliveryFee         string `json:"deliveryFee"`
	Total               string `json:"total"`
	OrderDate           string `json:"orderDate"`
	OrderTime           string `json:"orderTime"`
}

// StatusError reports a webhook response outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("form relay rejected submission: status %d: %s", e.StatusCode, e.Body)
}

// Submit posts the payload to the webhook. A non-2xx response returns a
// *StatusError; transport failures return the wrapped network error.
func (c *Client) Submit(ctx context.Context, payload OrderEmailPayload) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "form relay client not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal relay payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build relay request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute relay request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	return nil
}
