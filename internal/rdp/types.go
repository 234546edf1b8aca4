package rdp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication marks any failure to obtain a usable access token.
	ErrAuthentication = errors.New("rdp: authentication failed")
	// ErrSessionNotOpen is returned when a content-layer call is made on a session that is not open.
	ErrSessionNotOpen = errors.New("rdp: session not open")
)

//
// ────────────────────────────────────────────────
//   Credentials & auth configuration
// ────────────────────────────────────────────────
//

// Credentials are the platform credentials shared by both call paths.
// ClientSecret may be empty; the platform accepts an empty basic-auth password.
type Credentials struct {
	AppKey       string
	Username     string
	Password     string
	ClientSecret string
}

// Validate reports missing required credential fields.
func (c Credentials) Validate() error {
	var missing []string
	if c.AppKey == "" {
		missing = append(missing, "app_key")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AuthConfig is everything the password grant needs.
type AuthConfig struct {
	Credentials
	Scope               string
	TakeExclusiveSignOn bool
}

// Token is the parsed body of a successful token exchange.
// expires_in arrives as a quoted number; json.Number accepts both forms.
type Token struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    json.Number `json:"expires_in,omitempty"`
	Scope        string      `json:"scope,omitempty"`
}

//
// ────────────────────────────────────────────────
//   Request enums
// ────────────────────────────────────────────────
//

// EventType selects which pricing events are returned.
type EventType string

const (
	EventTypeTrade      EventType = "trade"
	EventTypeQuote      EventType = "quote"
	EventTypeCorrection EventType = "correction"
)

var knownEventTypes = map[EventType]struct{}{
	EventTypeTrade:      {},
	EventTypeQuote:      {},
	EventTypeCorrection: {},
}

// ParseEventTypes converts raw names into EventTypes, rejecting unknown values.
func ParseEventTypes(names []string) ([]EventType, error) {
	out := make([]EventType, 0, len(names))
	for _, n := range names {
		et := EventType(n)
		if _, ok := knownEventTypes[et]; !ok {
			return nil, fmt.Errorf("unknown event type %q", n)
		}
		out = append(out, et)
	}
	return out, nil
}

// Adjustment is a price-correction flag applied to historical events.
type Adjustment string

const (
	AdjustmentUnadjusted         Adjustment = "unadjusted"
	AdjustmentExchangeCorrection Adjustment = "exchangeCorrection"
	AdjustmentManualCorrection   Adjustment = "manualCorrection"
	AdjustmentCCH                Adjustment = "CCH"
	AdjustmentCRE                Adjustment = "CRE"
	AdjustmentRPO                Adjustment = "RPO"
	AdjustmentRTS                Adjustment = "RTS"
	AdjustmentQualifiers         Adjustment = "qualifiers"
)

var knownAdjustments = map[Adjustment]struct{}{
	AdjustmentUnadjusted:         {},
	AdjustmentExchangeCorrection: {},
	AdjustmentManualCorrection:   {},
	AdjustmentCCH:                {},
	AdjustmentCRE:                {},
	AdjustmentRPO:                {},
	AdjustmentRTS:                {},
	AdjustmentQualifiers:         {},
}

// ParseAdjustments converts raw names into Adjustments, rejecting unknown values
// and dropping duplicates while keeping first-seen order.
func ParseAdjustments(names []string) ([]Adjustment, error) {
	out := make([]Adjustment, 0, len(names))
	seen := make(map[Adjustment]struct{}, len(names))
	for _, n := range names {
		adj := Adjustment(n)
		if _, ok := knownAdjustments[adj]; !ok {
			return nil, fmt.Errorf("unknown adjustment %q", n)
		}
		if _, dup := seen[adj]; dup {
			continue
		}
		seen[adj] = struct{}{}
		out = append(out, adj)
	}
	return out, nil
}

func joinEventTypes(v []EventType) string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = string(e)
	}
	return strings.Join(parts, ",")
}

func joinAdjustments(v []Adjustment) string {
	parts := make([]string, len(v))
	for i, a := range v {
		parts[i] = string(a)
	}
	return strings.Join(parts, ",")
}

//
// ────────────────────────────────────────────────
//   Historical pricing response
// ────────────────────────────────────────────────
//

// EventsDocument is the JSON array returned by the events view, one element per universe.
type EventsDocument []EventsEnvelope

// EventsEnvelope holds the events for a single universe.
type EventsEnvelope struct {
	Universe            Universe          `json:"universe"`
	Adjustments         []string          `json:"adjustments,omitempty"`
	DefaultPricingField string            `json:"defaultPricingField,omitempty"`
	Headers             []Header          `json:"headers,omitempty"`
	Data                []json.RawMessage `json:"data,omitempty"`
	Status              *Status           `json:"status,omitempty"`
}

// Universe identifies the instrument an envelope belongs to.
type Universe struct {
	RIC string `json:"ric"`
}

// Header describes one column of the data rows.
type Header struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DecimalChar string `json:"decimalChar,omitempty"`
}

// Status is set by the platform when a universe could not be served.
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError covers both error shapes: the OAuth form
// {"error":"invalid_grant","error_description":"..."} and the data form
// {"error":{"id":"...","code":"...","message":"..."}}.
type apiError struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

type apiErrorDetail struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
