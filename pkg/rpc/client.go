package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Client calls a remote Handler over HTTP.
type Client struct {
	http     *http.Client
	headers  http.Header
	endpoint string
	seq      atomic.Uint64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header sent with every call.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// NewClient creates a client posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		headers:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes method with positional args.
func (c *Client) Call(ctx context.Context, method string, args ...any) (Result, error) {
	if err := ValidateMethod(method); err != nil {
		return nil, toError(err)
	}
	params, err := EncodeArgs(args...)
	if err != nil {
		return nil, toError(err)
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, toError(fmt.Errorf("%w: %w", ErrInvalidParams, err))
	}

	id := strconv.FormatUint(c.seq.Add(1), 10)
	body, err := json.Marshal(request{
		JSONRPC: version,
		ID:      json.RawMessage(id),
		Method:  method,
		Params:  rawParams,
	})
	if err != nil {
		return nil, fmt.Errorf("rpc: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, res.StatusCode)
	}

	var resp response
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if len(resp.Result) == 0 {
		return Result("null"), nil
	}
	return Result(resp.Result), nil
}
