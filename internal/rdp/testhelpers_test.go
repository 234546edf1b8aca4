package rdp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// sampleEvents is a trimmed events response for IBM.N.
const sampleEvents = `[{"universe":{"ric":"IBM.N"},"adjustments":["exchangeCorrection","manualCorrection"],"defaultPricingField":"TRDPRC_1","headers":[{"name":"DATE_TIME","type":"string"},{"name":"EVENT_TYPE","type":"string"},{"name":"TRDPRC_1","type":"number","decimalChar":"."},{"name":"TRDVOL_1","type":"number","decimalChar":"."}],"data":[["2020-07-13T08:54:53.619177000Z","trade",118.79,100],["2020-07-13T08:54:54.001000000Z","trade",118.8,null]]}]`

// writeJSON encodes v as JSON into w.
func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic("test helper writeJSON: " + err.Error())
	}
}

func testAuth() AuthConfig {
	return AuthConfig{
		Credentials: Credentials{
			AppKey:       "app-key-123",
			Username:     "rdp-user",
			Password:     "rdp-pass",
			ClientSecret: "client-secret",
		},
		Scope:               "trapi",
		TakeExclusiveSignOn: true,
	}
}

func testParams() EventsParams {
	return EventsParams{
		Universe:    "IBM.N",
		EventTypes:  []EventType{EventTypeTrade},
		Adjustments: []Adjustment{AdjustmentExchangeCorrection, AdjustmentManualCorrection},
		Start:       -24 * time.Hour,
		Count:       15,
	}
}

// fixedNow is the clock used by fetchers under test.
var fixedNow = time.Date(2020, 7, 14, 8, 54, 53, 619177000, time.UTC)

// mockPlatform records what the fake platform saw.
type mockPlatform struct {
	tokenCalls  atomic.Int32
	eventsCalls atomic.Int32
	lastAuth    atomic.Value // string
	lastQuery   atomic.Value // string
	lastPath    atomic.Value // string
	lastForm    atomic.Value // map[string][]string
	lastBasic   atomic.Value // [2]string
}

func (m *mockPlatform) str(v *atomic.Value) string {
	s, _ := v.Load().(string)
	return s
}

// newMockPlatform returns a server with a token endpoint and an events endpoint.
// tokenStatus/tokenBody control the token response; eventsStatus/eventsBody the events one.
func newMockPlatform(t *testing.T, tokenStatus int, tokenBody string, eventsStatus int, eventsBody string) (*httptest.Server, *mockPlatform) {
	t.Helper()
	m := &mockPlatform{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == tokenPath:
			m.tokenCalls.Add(1)
			_ = r.ParseForm()
			m.lastForm.Store(map[string][]string(r.PostForm))
			user, pass, _ := r.BasicAuth()
			m.lastBasic.Store([2]string{user, pass})
			w.WriteHeader(tokenStatus)
			_, _ = w.Write([]byte(tokenBody))

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, eventsPath):
			m.eventsCalls.Add(1)
			m.lastAuth.Store(r.Header.Get("Authorization"))
			m.lastQuery.Store(r.URL.RawQuery)
			m.lastPath.Store(r.URL.EscapedPath())
			w.WriteHeader(eventsStatus)
			_, _ = w.Write([]byte(eventsBody))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, m
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(zap.NewNop(), srv.Client(), srv.URL)
}

func tokenJSON(token string) string {
	b, _ := json.Marshal(map[string]string{
		"access_token":  token,
		"refresh_token": "refresh-" + token,
		"token_type":    "Bearer",
		"expires_in":    "300",
		"scope":         "trapi",
	})
	return string(b)
}
