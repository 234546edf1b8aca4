package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/metrics"
)

// StatusError describes a non-2xx response. Body is kept verbatim for reporting.
type StatusError struct {
	Venue      string
	Endpoint   string
	StatusCode int
	Reason     string
	Body       []byte
	// Message is an optional venue-specific description parsed from Body.
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Body)
	}
	return fmt.Sprintf("%s %s returned %d %s: %s", e.Venue, e.Endpoint, e.StatusCode, e.Reason, msg)
}

// Executor handles single-attempt HTTP execution with status branching and JSON decoding.
type Executor struct {
	logger       *zap.Logger
	http         *http.Client
	venueTag     string
	errorHandler func(se *StatusError) error
}

// New creates an Executor. errorHandler is called on non-2xx responses to produce a
// venue-specific error. If nil, the *StatusError itself is returned.
func New(
	logger *zap.Logger,
	httpClient *http.Client,
	venueTag string,
	errorHandler func(se *StatusError) error,
) *Executor {
	return &Executor{
		logger:       logger,
		http:         httpClient,
		venueTag:     venueTag,
		errorHandler: errorHandler,
	}
}

// Do executes req once and returns the body of a 2xx response.
// endpoint labels logs and metrics (e.g. "token", "events").
func (e *Executor) Do(ctx context.Context, req *http.Request, endpoint string) ([]byte, error) {
	req = req.WithContext(ctx)
	start := time.Now()
	defer metrics.ObserveDuration(metrics.RequestDuration, start, endpoint, req.Method)

	resp, err := e.http.Do(req)
	if err != nil {
		metrics.IncRequest(endpoint, req.Method, "error")
		e.logger.Warn(e.venueTag+".http_failed",
			zap.String("endpoint", endpoint),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", e.venueTag, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.IncRequest(endpoint, req.Method, strconv.Itoa(resp.StatusCode))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", e.venueTag, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{
			Venue:      e.venueTag,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			Body:       body,
		}
		e.logger.Warn(e.venueTag+".request_failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", se.Reason),
			zap.String("body", string(body)),
			zap.Duration("latency", elapsed))
		if e.errorHandler != nil {
			return nil, e.errorHandler(se)
		}
		return nil, se
	}

	e.logger.Debug(e.venueTag+".http_success",
		zap.String("endpoint", endpoint),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", elapsed))

	return body, nil
}

// DoJSON executes req once, then JSON-decodes a 2xx response into out.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, endpoint string, out any) error {
	body, err := e.Do(ctx, req, endpoint)
	if err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			e.logger.Warn(e.venueTag+".decode_failed",
				zap.String("endpoint", endpoint),
				zap.Error(err),
				zap.String("body", string(body)))
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

// reasonPhrase extracts the reason phrase from the status line, falling back to
// the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
