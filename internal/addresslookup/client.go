package addresslookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portal_backend/internal/config"
	"portal_backend/internal/logger"
)

const (
	serviceName     = "address_lookup"
	maxResponseBody = 1 << 20
)

// ErrDisabled - базовый URL сервиса не настроен
var ErrDisabled = errors.New("address lookup service is not configured")

// Request - тело POST /api/fetch-address
type Request struct {
	AccountName string `json:"account_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// Address - адрес, найденный по сайту. Raw - ответ сервиса как есть.
type Address struct {
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Country  string
	ShipTo   string
	Raw      json.RawMessage
}

// Lookup - внешний сервис адресов и дашборда сайтов
type Lookup interface {
	FetchAddress(ctx context.Context, req Request) (*Address, error)
	Dashboard(ctx context.Context, siteCode string) (json.RawMessage, error)
}

type Client struct {
	baseURL          string
	client           *http.Client
	timeout          time.Duration
	dashboardTimeout time.Duration
}

// NewClient создает клиента. С пустым base_url все вызовы возвращают ErrDisabled.
func NewClient(cfg config.AddressLookupConfig) *Client {
	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		client:           &http.Client{},
		timeout:          cfg.Timeout,
		dashboardTimeout: cfg.DashboardTimeout,
	}
}

func (c *Client) FetchAddress(ctx context.Context, req Request) (*Address, error) {
	if c.baseURL == "" {
		return nil, ErrDisabled
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	raw, err := c.do(ctx, c.timeout, "fetch_address", http.MethodPost, c.baseURL+"/api/fetch-address", body)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode address response: %w", err)
	}

	return &Address{
		Address1: str(fields["address1"]),
		Address2: str(fields["address2"]),
		City:     str(fields["city"]),
		State:    str(fields["state"]),
		Zip:      str(fields["zip"]),
		Country:  str(fields["country"]),
		ShipTo:   str(fields["shipto"]),
		Raw:      raw,
	}, nil
}

// Dashboard - данные дашборда по коду сайта (best effort для PUT /auth/profile)
func (c *Client) Dashboard(ctx context.Context, siteCode string) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, ErrDisabled
	}

	target := c.baseURL + "/api/dashboard?" + url.Values{"site_code": {siteCode}}.Encode()
	raw, err := c.do(ctx, c.dashboardTimeout, "dashboard", http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return json.RawMessage(`{"status":"ok"}`), nil
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, timeout time.Duration, op, method, target string, body []byte) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		err = fmt.Errorf("%s request failed: %w", op, err)
		logger.ExternalCallLog(serviceName, op, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		err = fmt.Errorf("%s read body: %w", op, err)
		logger.ExternalCallLog(serviceName, op, time.Since(start), err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("%s failed with status %d", op, resp.StatusCode)
		logger.ExternalCallLog(serviceName, op, time.Since(start), err)
		return nil, err
	}

	logger.ExternalCallLog(serviceName, op, time.Since(start), nil)
	return raw, nil
}

func str(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		// zip может прийти числом
		return strings.TrimSpace(fmt.Sprintf("%.0f", t))
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
