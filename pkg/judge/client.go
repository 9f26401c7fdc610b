package judge

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
)

const (
	maxResponseBytes = 4 << 20
	resultFields     = "token,stdout,stderr,compile_output,message,time,memory,exit_code,status"
)

// ClientConfig describes how to reach the judge.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	// HostHeader switches authentication to the RapidAPI header pair when set.
	HostHeader string
	// Wait asks the judge to answer synchronously when it supports it.
	Wait       bool
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Response is a decoded submission payload.
type Response struct {
	Result    Result
	TokenOnly bool
}

// Client talks to a Judge0 compatible REST API.
type Client struct {
	baseURL    *url.URL
	cfg        ClientConfig
	httpClient *http.Client
	schemas    *schemas
}

// NewClient constructs a judge client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("judge base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse judge base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	compiled, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    base,
		cfg:        cfg,
		httpClient: httpClient,
		schemas:    compiled,
	}, nil
}

// Submit creates a judge submission.
func (c *Client) Submit(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode judge request: %w", err)
	}

	query := url.Values{}
	query.Set("base64_encoded", "false")
	query.Set("wait", strconv.FormatBool(c.cfg.Wait))

	body, err := c.do(ctx, http.MethodPost, "/submissions", query, payload)
	if err != nil {
		return Response{}, err
	}
	return c.decodeResult(body)
}

// Fetch retrieves a submission by token.
func (c *Client) Fetch(ctx context.Context, token string) (Response, error) {
	if strings.TrimSpace(token) == "" {
		return Response{}, fmt.Errorf("%w: empty token", ErrInvalidRequest)
	}

	query := url.Values{}
	query.Set("base64_encoded", "false")
	query.Set("fields", resultFields)

	body, err := c.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(token), query, nil)
	if err != nil {
		return Response{}, err
	}
	return c.decodeResult(body)
}

// Language looks up a language descriptor by id.
func (c *Client) Language(ctx context.Context, id int) (Language, error) {
	if id <= 0 {
		return Language{}, fmt.Errorf("%w: language id must be positive", ErrInvalidRequest)
	}

	body, err := c.do(ctx, http.MethodGet, "/languages/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return Language{}, err
	}

	var language Language
	if err := decodeValidated(c.schemas.language, body, &language); err != nil {
		return Language{}, err
	}
	return language, nil
}

func (c *Client) decodeResult(body []byte) (Response, error) {
	var raw rawResult
	if err := decodeValidated(c.schemas.result, body, &raw); err != nil {
		return Response{}, err
	}
	return Response{Result: raw.result(), TokenOnly: raw.tokenOnly()}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build judge request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ErrTimeout, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey == "" {
		return
	}
	if c.cfg.HostHeader != "" {
		req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
		req.Header.Set("X-RapidAPI-Host", c.cfg.HostHeader)
		return
	}
	req.Header.Set("X-Auth-Token", c.cfg.APIKey)
}
