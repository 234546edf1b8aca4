package rdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/metrics"
)

// Call path names.
const (
	PathLibrary = "library"
	PathDirect  = "direct"
)

// EventsFetcher fetches historical pricing events for an instrument.
type EventsFetcher interface {
	Name() string
	FetchEvents(ctx context.Context, p EventsParams) (*EventsResult, error)
}

// EventsResult carries the response of either call path. Data is only set by
// the library path, which also offers the tabular view.
type EventsResult struct {
	Path string
	Raw  json.RawMessage
	Data *EventsData
}

// LibraryFetcher fetches through a session and the content layer.
type LibraryFetcher struct {
	session *Session
	pricing *HistoricalPricing
}

// NewLibraryFetcher wires a session and its historical-pricing content object.
func NewLibraryFetcher(session *Session, pricing *HistoricalPricing) *LibraryFetcher {
	return &LibraryFetcher{session: session, pricing: pricing}
}

func (f *LibraryFetcher) Name() string { return PathLibrary }

// FetchEvents opens the session if needed, then issues the content-layer request.
// A failed open stops the flow before any pricing request.
func (f *LibraryFetcher) FetchEvents(ctx context.Context, p EventsParams) (*EventsResult, error) {
	if f.session.OpenState() != SessionOpened {
		if err := f.session.Open(ctx); err != nil {
			metrics.IncAuthFailure(PathLibrary)
			return nil, fmt.Errorf("open session: %w", err)
		}
	}

	resp, err := f.pricing.GetEvents(ctx, p)
	if err != nil {
		return nil, err
	}
	return &EventsResult{Path: PathLibrary, Raw: resp.Data.Raw(), Data: resp.Data}, nil
}

// DirectFetcher performs the token exchange and the REST call itself.
type DirectFetcher struct {
	logger *zap.Logger
	client *Client
	auth   AuthConfig
	now    func() time.Time
}

// NewDirectFetcher creates a fetcher that signs on for every request.
func NewDirectFetcher(logger *zap.Logger, client *Client, auth AuthConfig) *DirectFetcher {
	return &DirectFetcher{logger: logger, client: client, auth: auth, now: time.Now}
}

func (f *DirectFetcher) Name() string { return PathDirect }

// FetchEvents exchanges credentials for a token and uses it once. The pricing
// request is never sent without a token.
func (f *DirectFetcher) FetchEvents(ctx context.Context, p EventsParams) (*EventsResult, error) {
	token, err := f.client.RequestToken(ctx, f.auth)
	if err != nil {
		metrics.IncAuthFailure(PathDirect)
		return nil, err
	}

	req := p.Resolve(f.now())
	f.logger.Debug("rdp.direct.request",
		zap.String("universe", req.Universe),
		zap.String("query", req.Query()))

	body, err := f.client.GetEvents(ctx, token.AccessToken, req)
	if err != nil {
		return nil, err
	}
	return &EventsResult{Path: PathDirect, Raw: body}, nil
}
