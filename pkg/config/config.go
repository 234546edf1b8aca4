package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Fetch modes select which call style(s) the runner executes.
const (
	ModeLibrary = "library"
	ModeDirect  = "direct"
	ModeBoth    = "both"
)

// Credential sources.
const (
	CredentialSourceEnv = "env"
	CredentialSourceAWS = "aws"
)

// MaxCount is the largest row count the historical-pricing endpoint accepts.
const MaxCount = 10000

// Config holds the runtime configuration for rdp-pricing.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	// Platform credentials. Ignored when CredentialSource is "aws".
	AppKey       string
	Username     string
	Password     string
	ClientSecret string

	BaseURL             string
	Scope               string
	TakeExclusiveSignOn bool
	Universe            string
	Mode                string

	EventTypes  []string
	Adjustments []string
	StartOffset time.Duration
	Count       int

	HTTPTimeout time.Duration

	CredentialSource  string
	CredentialProfile string
	AWSRegion         string
	CacheTTL          time.Duration

	MetricsTextfile string
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:         GetEnv("SERVICE_NAME", "rdp-pricing"),
		Env:                 GetEnv("ENV", "dev"),
		LogLevel:            GetEnv("LOG_LEVEL", "info"),
		AppKey:              GetEnv("RDP_APP_KEY", ""),
		Username:            GetEnv("RDP_USERNAME", ""),
		Password:            GetEnv("RDP_PASSWORD", ""),
		ClientSecret:        GetEnv("RDP_CLIENT_SECRET", ""),
		BaseURL:             GetEnv("RDP_BASE_URL", "https://api.refinitiv.com"),
		Scope:               GetEnv("RDP_SCOPE", "trapi"),
		TakeExclusiveSignOn: GetEnvBool("RDP_TAKE_EXCLUSIVE_SIGNON", true),
		Universe:            GetEnv("RDP_UNIVERSE", "IBM.N"),
		Mode:                GetEnv("RDP_MODE", ModeBoth),
		EventTypes:          GetEnvList("RDP_EVENT_TYPES", "trade"),
		Adjustments:         GetEnvList("RDP_ADJUSTMENTS", "exchangeCorrection,manualCorrection"),
		StartOffset:         GetEnvDuration("RDP_START_OFFSET", -24*time.Hour),
		Count:               GetEnvInt("RDP_COUNT", 15),
		HTTPTimeout:         GetEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		CredentialSource:    GetEnv("RDP_CREDENTIAL_SOURCE", CredentialSourceEnv),
		CredentialProfile:   GetEnv("RDP_CREDENTIAL_PROFILE", "default"),
		AWSRegion:           GetEnv("AWS_REGION", "us-east-2"),
		CacheTTL:            GetEnvDuration("CACHE_TTL", 1*time.Hour),
		MetricsTextfile:     GetEnv("METRICS_TEXTFILE", ""),
	}
}

// Validate checks the configuration for values the runner cannot work with.
// Enumerated request fields (event types, adjustments) are checked where they are parsed.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeLibrary, ModeDirect, ModeBoth:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q (want %s, %s or %s)", c.Mode, ModeLibrary, ModeDirect, ModeBoth))
	}

	if c.Universe == "" {
		errs = append(errs, errors.New("universe is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.Count < 1 || c.Count > MaxCount {
		errs = append(errs, fmt.Errorf("count %d out of range 1..%d", c.Count, MaxCount))
	}
	if len(c.EventTypes) == 0 {
		errs = append(errs, errors.New("at least one event type is required"))
	}

	switch c.CredentialSource {
	case CredentialSourceEnv:
		if c.AppKey == "" {
			errs = append(errs, errors.New("RDP_APP_KEY is required"))
		}
		if c.Username == "" {
			errs = append(errs, errors.New("RDP_USERNAME is required"))
		}
		if c.Password == "" {
			errs = append(errs, errors.New("RDP_PASSWORD is required"))
		}
	case CredentialSourceAWS:
		if c.CredentialProfile == "" {
			errs = append(errs, errors.New("RDP_CREDENTIAL_PROFILE is required for aws credentials"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown credential source %q", c.CredentialSource))
	}

	return errors.Join(errs...)
}

// RunLibrary reports whether the library path should run.
func (c *Config) RunLibrary() bool { return c.Mode == ModeLibrary || c.Mode == ModeBoth }

// RunDirect reports whether the direct path should run.
func (c *Config) RunDirect() bool { return c.Mode == ModeDirect || c.Mode == ModeBoth }
