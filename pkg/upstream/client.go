package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tokopos/terminal-api/pkg/config"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/logger"
)

var errBaseURLRequired = errors.New("upstream base url is required")

// StatusError carries a non-2xx upstream reply.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// StatusCode implements pkgerrors.UpstreamStatusError.
func (e *StatusError) StatusCode() int { return e.Status }

// UpstreamMessage implements pkgerrors.UpstreamStatusError.
func (e *StatusError) UpstreamMessage() string { return e.Message }

// Client talks to the POS backend that owns products, tokos, and orders.
// It never retries writes on its own; retry policy belongs to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient validates the configuration and builds the REST client.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}, nil
}

// Login exchanges cashier credentials for an upstream bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Products fetches the full product catalog visible to the token.
func (c *Client) Products(ctx context.Context, token string) ([]Product, error) {
	var result []Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Categories fetches the product categories.
func (c *Client) Categories(ctx context.Context, token string) ([]Category, error) {
	var result []Category
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Tokos fetches the stores the cashier may sell for.
func (c *Client) Tokos(ctx context.Context, token string) ([]Toko, error) {
	var result []Toko
	if err := c.do(ctx, http.MethodGet, "/api/v1/tokos", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PaymentMethods fetches the accepted payment methods.
func (c *Client) PaymentMethods(ctx context.Context, token string) ([]PaymentMethod, error) {
	var result []PaymentMethod
	if err := c.do(ctx, http.MethodGet, "/api/v1/payment-methods", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitOrder posts a finalized order and returns the confirmed record.
func (c *Client) SubmitOrder(ctx context.Context, token string, req OrderRequest) (*OrderResult, error) {
	var result OrderResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", token, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Orders fetches the order history for the token's toko.
func (c *Client) Orders(ctx context.Context, token string) ([]OrderResult, error) {
	var result []OrderResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/orders", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// OrderDetail fetches a single confirmed order.
func (c *Client) OrderDetail(ctx context.Context, token string, orderID int64) (*OrderResult, error) {
	var result OrderResult
	path := fmt.Sprintf("/api/v1/orders/%d", orderID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks upstream reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upstream request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.rejectionError(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response")
	}
	return nil
}

func (c *Client) rejectionError(resp *http.Response) error {
	statusErr := &StatusError{Status: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil {
		if payload.Message != "" {
			statusErr.Message = payload.Message
		} else if payload.Error.Message != "" {
			statusErr.Message = payload.Error.Message
		}
	}

	code := pkgerrors.CodeUpstream
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	}

	msg := statusErr.Message
	if msg == "" {
		msg = "upstream request failed"
	}
	return pkgerrors.Wrap(code, statusErr, msg)
}
