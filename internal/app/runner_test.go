package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/rdp"
	"github.com/Checker-Finance/rdp-pricing/internal/secrets"
	"github.com/Checker-Finance/rdp-pricing/pkg/config"
)

const pricingBody = `[{"universe":{"ric":"IBM.N"},"headers":[{"name":"DATE_TIME","type":"string"},{"name":"EVENT_TYPE","type":"string"},{"name":"TRDPRC_1","type":"number"}],"data":[["2020-07-13T08:54:53.619177000Z","trade",118.79]]}]`

type platform struct {
	tokenCalls  atomic.Int32
	eventsCalls atomic.Int32
	badAuth     atomic.Int32
}

// newPlatform serves the token endpoint with tokenStatus and checks the bearer
// header on the events endpoint before answering with pricingBody.
func newPlatform(t *testing.T, tokenStatus int) (*httptest.Server, *platform) {
	t.Helper()
	p := &platform{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/oauth2/v1/token":
			p.tokenCalls.Add(1)
			w.WriteHeader(tokenStatus)
			if tokenStatus == http.StatusOK {
				_, _ = w.Write([]byte(`{"access_token":"known-token","expires_in":"300","token_type":"Bearer"}`))
				return
			}
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"bad credentials"}`))

		case strings.HasPrefix(r.URL.Path, "/data/historical-pricing/v1/views/events/"):
			p.eventsCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer known-token" {
				p.badAuth.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(pricingBody))

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, p
}

func testConfig(baseURL, mode string) *config.Config {
	return &config.Config{
		BaseURL:             baseURL,
		Scope:               "trapi",
		TakeExclusiveSignOn: true,
		Universe:            "IBM.N",
		Mode:                mode,
		EventTypes:          []string{"trade"},
		Adjustments:         []string{"exchangeCorrection", "manualCorrection"},
		StartOffset:         -24 * time.Hour,
		Count:               15,
		CredentialSource:    config.CredentialSourceEnv,
	}
}

func envResolver() secrets.CredentialResolver {
	return secrets.NewEnvResolver(rdp.Credentials{AppKey: "key", Username: "user", Password: "pass"})
}

// countingResolver wraps a resolver and counts invalidations.
type countingResolver struct {
	secrets.CredentialResolver
	invalidated int
}

func (c *countingResolver) Invalidate() { c.invalidated++ }

func TestRun_DirectPrintsArrayUnmodified(t *testing.T) {
	srv, p := newPlatform(t, http.StatusOK)
	var out bytes.Buffer

	r := NewRunner(zap.NewNop(), testConfig(srv.URL, config.ModeDirect), envResolver(), srv.Client(), &out)
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "\n"+pricingBody+"\n")
	assert.EqualValues(t, 1, p.tokenCalls.Load())
	assert.EqualValues(t, 1, p.eventsCalls.Load())
	assert.Zero(t, p.badAuth.Load())
}

func TestRun_BothPathsInOrder(t *testing.T) {
	srv, p := newPlatform(t, http.StatusOK)
	var out bytes.Buffer

	r := NewRunner(zap.NewNop(), testConfig(srv.URL, config.ModeBoth), envResolver(), srv.Client(), &out)
	require.NoError(t, r.Run(context.Background()))

	s := out.String()
	libIdx := strings.Index(s, "Tabular view (IBM.N):")
	directIdx := strings.Index(s, "REST call:")
	require.NotEqual(t, -1, libIdx)
	require.NotEqual(t, -1, directIdx)
	assert.Less(t, libIdx, directIdx, "library path runs first")
	assert.Contains(t, s, "118.79")
	assert.EqualValues(t, 2, p.tokenCalls.Load(), "each path signs on independently")
	assert.EqualValues(t, 2, p.eventsCalls.Load())
}

func TestRun_AuthFailureStopsBeforePricing(t *testing.T) {
	srv, p := newPlatform(t, http.StatusUnauthorized)
	var out bytes.Buffer
	resolver := &countingResolver{CredentialResolver: envResolver()}

	r := NewRunner(zap.NewNop(), testConfig(srv.URL, config.ModeBoth), resolver, srv.Client(), &out)
	err := r.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, rdp.ErrAuthentication)
	assert.Contains(t, err.Error(), "library path")
	assert.Contains(t, err.Error(), "direct path")
	assert.Zero(t, p.eventsCalls.Load(), "no pricing call without a token")
	assert.Equal(t, 2, resolver.invalidated)

	assert.Contains(t, out.String(), "[library] authentication failure: 401 Unauthorized")
	assert.Contains(t, out.String(), "[direct] authentication failure: 401 Unauthorized")
	assert.Contains(t, out.String(), "bad credentials")
}

func TestRun_CredentialFailure(t *testing.T) {
	srv, p := newPlatform(t, http.StatusOK)
	var out bytes.Buffer

	r := NewRunner(zap.NewNop(), testConfig(srv.URL, config.ModeDirect), secrets.NewEnvResolver(rdp.Credentials{}), srv.Client(), &out)
	err := r.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credentials")
	assert.Zero(t, p.tokenCalls.Load())
}

func TestRun_InvalidParams(t *testing.T) {
	cfg := testConfig("http://unused", config.ModeDirect)
	cfg.Adjustments = []string{"splits"}

	err := NewRunner(zap.NewNop(), cfg, envResolver(), http.DefaultClient, &bytes.Buffer{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request parameters")
}

func TestRun_CanceledContext(t *testing.T) {
	srv, p := newPlatform(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(zap.NewNop(), testConfig(srv.URL, config.ModeBoth), envResolver(), srv.Client(), &bytes.Buffer{}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.tokenCalls.Load())
}

func TestParams(t *testing.T) {
	r := NewRunner(zap.NewNop(), testConfig("http://unused", config.ModeBoth), envResolver(), http.DefaultClient, &bytes.Buffer{})

	p, err := r.Params()
	require.NoError(t, err)
	assert.Equal(t, "IBM.N", p.Universe)
	assert.Equal(t, []rdp.EventType{rdp.EventTypeTrade}, p.EventTypes)
	assert.Equal(t, []rdp.Adjustment{rdp.AdjustmentExchangeCorrection, rdp.AdjustmentManualCorrection}, p.Adjustments)
	assert.Equal(t, -24*time.Hour, p.Start)
	assert.Equal(t, 15, p.Count)
}
