package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/rdp"
	pkgsecrets "github.com/Checker-Finance/rdp-pricing/pkg/secrets"
)

// venue is the last segment of every secret name this resolver reads.
const venue = "rdp"

// CredentialResolver supplies platform credentials to a call path.
type CredentialResolver interface {
	// Resolve returns the credentials for the configured profile.
	Resolve(ctx context.Context) (rdp.Credentials, error)

	// Invalidate forgets any cached credentials so the next Resolve re-reads them.
	Invalidate()
}

// EnvResolver serves credentials taken from the process configuration.
type EnvResolver struct {
	creds rdp.Credentials
}

// NewEnvResolver wraps static credentials.
func NewEnvResolver(creds rdp.Credentials) *EnvResolver {
	return &EnvResolver{creds: creds}
}

func (r *EnvResolver) Resolve(context.Context) (rdp.Credentials, error) {
	if err := r.creds.Validate(); err != nil {
		return rdp.Credentials{}, err
	}
	return r.creds, nil
}

func (r *EnvResolver) Invalidate() {}

// AWSResolver resolves credentials for one profile from AWS Secrets Manager,
// caching results locally to reduce API calls.
//
// Secret naming convention: {env}/{profile}/rdp
// Secret JSON format:       {"app_key": "...", "username": "...", "password": "...", "client_secret": "..."}
type AWSResolver struct {
	logger   *zap.Logger
	env      string
	profile  string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[rdp.Credentials]
}

// NewAWSResolver constructs a credential resolver for the given env and profile.
func NewAWSResolver(
	logger *zap.Logger,
	env string,
	profile string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[rdp.Credentials],
) *AWSResolver {
	return &AWSResolver{
		logger:   logger,
		env:      env,
		profile:  profile,
		provider: provider,
		cache:    cache,
	}
}

// secretName builds the AWS Secrets Manager key for the profile.
func (r *AWSResolver) secretName() string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, r.profile, venue))
}

// Resolve fetches or caches the credentials for the profile.
func (r *AWSResolver) Resolve(ctx context.Context) (rdp.Credentials, error) {
	key := r.secretName()

	if creds, ok := r.cache.Get(key); ok {
		return creds, nil
	}

	secretMap, err := r.provider.GetSecret(ctx, key)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", key),
			zap.Error(err))
		return rdp.Credentials{}, fmt.Errorf("resolve credentials for profile %q: %w", r.profile, err)
	}

	creds, err := parseCredentials(secretMap)
	if err != nil {
		return rdp.Credentials{}, fmt.Errorf("parse secret %q: %w", key, err)
	}

	r.cache.Put(key, creds)

	r.logger.Info("aws.credentials_resolved",
		zap.String("profile", r.profile),
		zap.String("venue", venue),
	)
	return creds, nil
}

// Invalidate drops the cached credentials, e.g. after the platform rejected them.
func (r *AWSResolver) Invalidate() {
	r.cache.Bust(r.secretName())
}

// DiscoverProfiles lists all profiles that have RDP secrets configured for the env.
// It searches for secrets matching "{env}/" and ending with "/rdp".
func (r *AWSResolver) DiscoverProfiles(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(r.env + "/")
	suffix := "/" + venue

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover profiles: %w", err)
	}

	var profiles []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, suffix) {
			continue
		}
		trimmed := strings.TrimSuffix(strings.TrimPrefix(lower, prefix), suffix)
		if trimmed != "" && !strings.Contains(trimmed, "/") {
			profiles = append(profiles, trimmed)
		}
	}

	r.logger.Info("aws.profiles_discovered",
		zap.Int("count", len(profiles)),
		zap.Strings("profiles", profiles),
	)
	return profiles, nil
}

// parseCredentials extracts Credentials from the raw secret map.
func parseCredentials(m map[string]string) (rdp.Credentials, error) {
	creds := rdp.Credentials{
		AppKey:       m["app_key"],
		Username:     m["username"],
		Password:     m["password"],
		ClientSecret: m["client_secret"],
	}
	if err := creds.Validate(); err != nil {
		return rdp.Credentials{}, err
	}
	return creds, nil
}
