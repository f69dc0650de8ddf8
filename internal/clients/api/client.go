package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://resumegraderapi.onrender.com"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL     string
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	validate    *validator.Validate
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		validate:   validator.New(),
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) sendRequest(ctx context.Context, op, method, path string, payload any) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, &models.TransportError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: error encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: error creating request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return nil, &models.TransportError{Op: op, Err: fmt.Errorf("error sending request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := c.handleResponse(op, resp)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.APIRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	return data, err
}

func (c *Client) handleResponse(op string, resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransportError{Op: op, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("error reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(errorDetail(body))}
	}

	return body, nil
}

// decode unmarshals a response record and validates it, so partial records never leave the client.
func (c *Client) decode(op string, body []byte, record any) error {
	if err := json.Unmarshal(body, record); err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}
	if err := c.validate.Struct(record); err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

type errorResponse struct {
	Detail  any    `json:"detail"`
	Message string `json:"message"`
}

func errorDetail(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Detail != nil {
			return fmt.Sprint(parsed.Detail)
		}
	}
	message := strings.TrimSpace(string(body))
	if message == "" {
		return "empty response body"
	}
	return message
}
