package rdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/pkg/utils"
)

// RequestToken performs the OAuth2 password grant against the token endpoint.
// Any failure, including a 200 without an access token, wraps ErrAuthentication.
// Tokens are not cached or refreshed; each call is a fresh sign-on.
// POST /auth/oauth2/v1/token
func (c *Client) RequestToken(ctx context.Context, cfg AuthConfig) (*Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	form := url.Values{
		"username":                   {cfg.Username},
		"password":                   {cfg.Password},
		"grant_type":                 {"password"},
		"scope":                      {cfg.Scope},
		"takeExclusiveSignOnControl": {strconv.FormatBool(cfg.TakeExclusiveSignOn)},
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cfg.AppKey, cfg.ClientSecret)

	body, err := c.exec.Do(ctx, req, "token")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: decode token response: %w", ErrAuthentication, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has empty access_token", ErrAuthentication)
	}

	c.logger.Info("rdp.auth.token_acquired",
		zap.String("app_key", utils.MaskSecret(cfg.AppKey)),
		zap.String("username", cfg.Username),
		zap.String("token", utils.MaskSecret(token.AccessToken)),
		zap.String("expires_in", token.ExpiresIn.String()))

	return &token, nil
}
