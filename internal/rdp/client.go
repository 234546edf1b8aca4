package rdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/httpclient"
)

const (
	tokenPath  = "/auth/oauth2/v1/token"
	eventsPath = "/data/historical-pricing/v1/views/events/"
)

// EventsRequest is a fully resolved historical-pricing request.
type EventsRequest struct {
	Universe    string
	EventTypes  []EventType
	Adjustments []Adjustment
	Start       time.Time
	Count       int
}

// Query encodes the request parameters in the order the platform documents them:
// eventTypes, adjustments, start, count. Commas and colons are left literal.
func (r EventsRequest) Query() string {
	params := []struct{ key, val string }{
		{"eventTypes", joinEventTypes(r.EventTypes)},
		{"adjustments", joinAdjustments(r.Adjustments)},
		{"start", FormatStart(r.Start)},
		{"count", strconv.Itoa(r.Count)},
	}

	var b strings.Builder
	for _, p := range params {
		if p.val == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(queryEscape(p.val))
	}
	return b.String()
}

func queryEscape(s string) string {
	return strings.NewReplacer("%2C", ",", "%3A", ":").Replace(url.QueryEscape(s))
}

// Client wraps low-level HTTP communication with the RDP REST API.
// Both call paths go through it.
type Client struct {
	logger  *zap.Logger
	exec    *httpclient.Executor
	baseURL string
}

// NewClient constructs a new RDP HTTP client rooted at baseURL.
func NewClient(logger *zap.Logger, httpClient *http.Client, baseURL string) *Client {
	exec := httpclient.New(logger, httpClient, "rdp", func(se *httpclient.StatusError) error {
		se.Message = parseAPIError(se.Body)
		return se
	})
	return &Client{
		logger:  logger,
		exec:    exec,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetEvents fetches historical pricing events and returns the body unmodified.
// GET /data/historical-pricing/v1/views/events/{universe}
func (c *Client) GetEvents(ctx context.Context, accessToken string, req EventsRequest) ([]byte, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrAuthentication)
	}

	u := c.baseURL + eventsPath + url.PathEscape(req.Universe) + "?" + req.Query()
	httpReq, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Accept", "application/json")

	body, err := c.exec.Do(ctx, httpReq, "events")
	if err != nil {
		return nil, fmt.Errorf("historical pricing %s: %w", req.Universe, err)
	}
	return body, nil
}

// parseAPIError extracts a human-readable message from an error body.
// Returns "" when the body is not a recognised error document.
func parseAPIError(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil || len(e.Error) == 0 {
		return ""
	}

	var code string
	if err := json.Unmarshal(e.Error, &code); err == nil {
		if e.ErrorDescription != "" {
			return code + ": " + e.ErrorDescription
		}
		return code
	}

	var detail apiErrorDetail
	if err := json.Unmarshal(e.Error, &detail); err == nil && detail.Message != "" {
		if detail.Code != "" {
			return detail.Code + ": " + detail.Message
		}
		return detail.Message
	}
	return ""
}

// IsStatus reports whether err carries an HTTP status error with the given code.
func IsStatus(err error, code int) bool {
	var se *httpclient.StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
