package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeevanteja1304/VitalValue/internal/config"
)

// ErrNetwork wraps transport failures: unreachable host, timeout, broken
// response body.
var ErrNetwork = errors.New("network failure")

// StatusError is a non-2xx response from the vitals endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, e.Body)
}

// HTTPClient makes JSON calls to the vitals and auth endpoints. Each
// endpoint has its own URL; they need not share a host.
type HTTPClient struct {
	vitalsURL string
	signupURL string
	loginURL  string
	client    *http.Client
}

// NewHTTPClient creates a client for the configured endpoints.
func NewHTTPClient(cfg config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		vitalsURL: cfg.VitalsURL,
		signupURL: cfg.SignupURL,
		loginURL:  cfg.LoginURL,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Process sends POST /process. A nil signal sends an empty body. Any
// non-2xx response is returned as *StatusError.
func (c *HTTPClient) Process(ctx context.Context, signal []float64) (*Vitals, error) {
	var body io.Reader
	if signal != nil {
		data, err := json.Marshal(ProcessRequest{RawSignal: signal})
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.vitalsURL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}

	var v Vitals
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: decode vitals: %v", ErrNetwork, err)
	}
	return &v, nil
}

// Signup sends POST /signup. Non-2xx responses are not errors: the body
// carries the server's message and the caller inspects AuthResponse.OK.
func (c *HTTPClient) Signup(ctx context.Context, r SignupRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, c.signupURL, r)
}

// Login sends POST /login.
func (c *HTTPClient) Login(ctx context.Context, r LoginRequest) (*AuthResponse, error) {
	return c.postAuth(ctx, c.loginURL, r)
}

func (c *HTTPClient) postAuth(ctx context.Context, url string, body interface{}) (*AuthResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode %s response (%d): %v", ErrNetwork, url, resp.StatusCode, err)
	}
	out.HTTPStatus = resp.StatusCode
	return &out, nil
}
