package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"resty.dev/v3"
)

type HTTPClientOptions struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	TimeOut          time.Duration
	UserAgent        string
}

func NewHTTPClient(t *HTTPClientOptions) *resty.Client {
	return resty.New().
		SetRetryCount(t.RetryCount).
		SetRetryWaitTime(t.RetryWaitTime).
		SetRetryMaxWaitTime(t.RetryMaxWaitTime).
		SetTimeout(t.TimeOut).
		SetHeader("User-Agent", t.UserAgent)
}

// rawResponse is a drained response: status plus body.
type rawResponse struct {
	status int
	body   []byte
}

func (r rawResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

// postJSON sends body (already encoded) and drains the response.
func postJSON(ctx context.Context, client *resty.Client, url string, body []byte, headers map[string]string) (rawResponse, error) {
	req := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	response, err := req.Post(url)
	if err != nil {
		return rawResponse{}, fmt.Errorf("failed to POST %s: %w", url, err)
	}
	if response.Body == nil {
		return rawResponse{status: response.StatusCode()}, nil
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return rawResponse{status: response.StatusCode()}, fmt.Errorf("failed to read response body: %w", err)
	}
	return rawResponse{status: response.StatusCode(), body: data}, nil
}

// statusReason explains statuses that point at throttling or an outage
// rather than a bad request.
func statusReason(status int) (bool, string) {
	switch status {
	case http.StatusTooManyRequests:
		return true, "rate limited: Too Many Requests (429)"
	case http.StatusUnauthorized:
		return true, "unauthorized: check the API token (401)"
	case http.StatusForbidden:
		return true, "forbidden: token lacks access (403)"
	case http.StatusServiceUnavailable:
		return true, "service unavailable (503)"
	}
	return false, ""
}
