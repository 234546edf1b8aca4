package rdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventsParams describe a historical events request with a start relative to now,
// e.g. -24h for "yesterday".
type EventsParams struct {
	Universe    string
	EventTypes  []EventType
	Adjustments []Adjustment
	Start       time.Duration
	Count       int
}

// Resolve pins the relative start against now.
func (p EventsParams) Resolve(now time.Time) EventsRequest {
	return EventsRequest{
		Universe:    p.Universe,
		EventTypes:  p.EventTypes,
		Adjustments: p.Adjustments,
		Start:       now.Add(p.Start),
		Count:       p.Count,
	}
}

// EventsData is the content-layer view of an events response.
type EventsData struct {
	raw json.RawMessage
	doc EventsDocument
}

// NewEventsData pairs a raw events document with its decoded form.
func NewEventsData(raw json.RawMessage, doc EventsDocument) *EventsData {
	return &EventsData{raw: raw, doc: doc}
}

// Raw returns the JSON document exactly as received.
func (d *EventsData) Raw() json.RawMessage { return d.raw }

// Document returns the decoded envelopes.
func (d *EventsData) Document() EventsDocument { return d.doc }

// Table returns the tabular view of the first universe in the response.
func (d *EventsData) Table() (*Table, error) {
	if len(d.doc) == 0 {
		return &Table{}, nil
	}
	return NewTable(d.doc[0])
}

// ContentResponse is returned by content-layer calls.
type ContentResponse struct {
	Data *EventsData
}

// HistoricalPricing is the content-layer entry point for historical pricing.
type HistoricalPricing struct {
	session *Session
	now     func() time.Time
}

// NewHistoricalPricing binds the content object to an open session.
func NewHistoricalPricing(session *Session) *HistoricalPricing {
	return &HistoricalPricing{session: session, now: time.Now}
}

// GetEvents retrieves pricing events for one universe.
func (h *HistoricalPricing) GetEvents(ctx context.Context, p EventsParams) (*ContentResponse, error) {
	body, err := h.session.getEvents(ctx, p.Resolve(h.now()))
	if err != nil {
		return nil, err
	}

	var doc EventsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode events for %s: %w", p.Universe, err)
	}
	for _, env := range doc {
		if env.Status != nil && len(env.Data) == 0 {
			return nil, fmt.Errorf("historical pricing %s: %s: %s", p.Universe, env.Status.Code, env.Status.Message)
		}
	}

	return &ContentResponse{Data: NewEventsData(body, doc)}, nil
}
