package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/filswan/go-swan-lib/logs"
)

// HTTPClient is a thin wrapper over net/http with bearer auth, bounded
// retries on transient failures and translation into the closed error
// taxonomy. The underlying http.Client is safe for concurrent use.
type HTTPClient struct {
	baseUrl    string
	token      string
	maxRetries int
	client     *http.Client
}

func NewHTTPClient(baseUrl, token string, timeoutSeconds, maxRetries int) *HTTPClient {
	return &HTTPClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		token:      token,
		maxRetries: maxRetries,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// Request sends one API call and returns the response body. A non-2xx
// status becomes an AuthError (401/403) or APIError; connection and
// timeout failures become NetworkError/TimeoutError after retries are
// exhausted. Retries apply to transient transport failures and 5xx/429
// responses only.
func (c *HTTPClient) Request(method, path string, body interface{}, headers map[string]string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed convert request body to json, error: %w", err)
		}
	}

	url := c.baseUrl + path
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 3 * time.Second
			logs.GetLogger().Debugf("retrying %s %s in %s (attempt %d/%d)", method, path, backoff, attempt, c.maxRetries)
			time.Sleep(backoff)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed create request, error: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = translateTransportError(url, err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &NetworkError{Message: fmt.Sprintf("failed read response from %s", url), Err: readErr}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &AuthError{Message: fmt.Sprintf("unauthorized while calling %s", path)}
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = apiErr
			continue
		}
		return nil, apiErr
	}
	return nil, lastErr
}

func translateTransportError(url string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Message: fmt.Sprintf("calling %s", url), Err: err}
	}
	return &NetworkError{Message: fmt.Sprintf("calling %s", url), Err: err}
}

// ParseJSON decodes a response body, naming the context in the error so
// callers can tell which call produced malformed data.
func ParseJSON(data []byte, out interface{}, context string) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{StatusCode: 0, Body: fmt.Sprintf("invalid JSON response for %s", context), Err: err}
	}
	return nil
}
