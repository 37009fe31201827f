// Package client calls the inventory and payment services on behalf of the
// order-processing service. Requests go through an otelhttp transport, so each
// call is a client span and carries the W3C trace headers the mesh propagates.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"meshdemo/internal/http/middleware"
	"meshdemo/internal/model"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// InventoryClient checks stock for a product.
type InventoryClient interface {
	Check(ctx context.Context, productID string, quantity int) (*model.InventoryCheckResult, error)
}

// PaymentClient charges an order.
type PaymentClient interface {
	Process(ctx context.Context, req model.PaymentRequest) (*model.PaymentResponse, error)
}

// NewHTTPClient returns an http.Client with the given timeout and a tracing transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "HTTP " + r.Method + " " + r.URL.Host
			}),
		),
	}
}

type inventoryHTTP struct {
	base string
	hc   *http.Client
}

// NewInventoryClient builds an InventoryClient for the service at baseURL.
func NewInventoryClient(baseURL string, hc *http.Client) InventoryClient {
	return &inventoryHTTP{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

// Check calls GET {base}/check/{productId}?quantity={quantity}.
func (c *inventoryHTTP) Check(ctx context.Context, productID string, quantity int) (*model.InventoryCheckResult, error) {
	u := c.base + "/check/" + url.PathEscape(productID) + "?" + url.Values{"quantity": {strconv.Itoa(quantity)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build inventory request: %w", err)
	}

	var out model.InventoryCheckResult
	if err := do(c.hc, req, &out); err != nil {
		return nil, fmt.Errorf("inventory check %s: %w", productID, err)
	}
	return &out, nil
}

type paymentHTTP struct {
	base string
	hc   *http.Client
}

// NewPaymentClient builds a PaymentClient for the service at baseURL.
func NewPaymentClient(baseURL string, hc *http.Client) PaymentClient {
	return &paymentHTTP{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

// Process calls POST {base}/process with the payment request as JSON.
func (c *paymentHTTP) Process(ctx context.Context, pr model.PaymentRequest) (*model.PaymentResponse, error) {
	body, err := json.Marshal(pr)
	if err != nil {
		return nil, fmt.Errorf("encode payment request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/process", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out model.PaymentResponse
	if err := do(c.hc, req, &out); err != nil {
		return nil, fmt.Errorf("payment for order %s: %w", pr.OrderID, err)
	}
	return &out, nil
}

// do sends req and decodes a 2xx JSON body into out.
func do(hc *http.Client, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if id := middleware.RequestIDFromContext(req.Context()); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
