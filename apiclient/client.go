// Package apiclient calls the authenticated backend-for-frontend API with the
// credentials the host shares with the remote.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-mfe-bridge/credentials"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/internal/config"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Header names set on every downstream request.
const (
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "x-api-key"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "x-request-id"
	HeaderHSTS          = "strict-transport-security"
	HeaderXSSProtection = "x-xss-protection"
)

var securityHeaders = map[string]string{
	HeaderHSTS:          "max-age=15768000",
	HeaderXSSProtection: "1; mode=block",
}

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// CredentialSource resolves and refreshes the credential bundle.
// *credentials.Resolver implements it.
type CredentialSource interface {
	GetCredentials(ctx context.Context) (*hostdata.APICredentials, error)
	Refresh(ctx context.Context) (*hostdata.APICredentials, error)
	Status(ctx context.Context) credentials.Status
}

var _ CredentialSource = (*credentials.Resolver)(nil)

// Client makes authenticated calls to the BFF.
type Client struct {
	creds      CredentialSource
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

func New(creds CredentialSource, options ...Option) (*Client, error) {
	if creds == nil {
		return nil, fmt.Errorf("[apiclient.New] credential source is required")
	}
	c := &Client{
		creds:      creds,
		httpClient: http.DefaultClient,
		timeout:    config.DefaultHTTPTimeout,
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Response is a completed downstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// StatusError is returned for any non-2xx response other than an unrecoverable 401.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Endpoint, e.StatusCode)
}

// Call sends an authenticated request to endpoint, relative to the bundle's
// baseUrlBFF. A 401 triggers one credential refresh and one retry with the
// refreshed bundle. A second 401 fails with ErrUnauthorized.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any, headers map[string]string) (*Response, error) {
	method = strings.ToUpper(method)
	if !supportedMethods[method] {
		return nil, errors.Wrapf(errors.ErrUnsupportedMethod, "%s", method)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "encode request body")
		}
		payload = b
	}

	creds, err := c.creds.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, creds, method, endpoint, payload, headers)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn().Str("method", method).Str("endpoint", endpoint).Msg("Unauthorized, refreshing credentials")
		fresh, err := c.creds.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrUnauthorized, err)
		}
		resp, err = c.do(ctx, fresh, method, endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "%s %s still unauthorized after refresh", method, endpoint)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &StatusError{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, creds *hostdata.APICredentials, method, endpoint string, payload []byte, headers map[string]string) (*Response, error) {
	if creds.BaseURLBFF == "" {
		return nil, errors.Wrapf(errors.ErrCredentialsMissing, "bundle has no baseUrlBFF")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(creds.BaseURLBFF, "/")+endpoint, reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "build request")
	}

	requestID := uuid.New().String()
	req.Header.Set(HeaderAuthorization, "Bearer "+creds.AccessToken)
	req.Header.Set(HeaderAPIKey, creds.XAPIKey)
	req.Header.Set(HeaderContentType, "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	for k, v := range securityHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", errors.ErrNetwork, method, endpoint, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", errors.ErrNetwork, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Downstream call")

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}
