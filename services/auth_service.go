package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/upb/todo-app/config"
)

// maxUserInfoBytes bounds how much of a provider response is read.
const maxUserInfoBytes = 1 << 20

// UserInfo is the identity returned by the provider's user-info endpoint
type UserInfo struct {
	OpenID      string  `json:"openId"`
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	LoginMethod *string `json:"loginMethod,omitempty"`
}

// ProviderUserInfoClient exchanges a one-time callback token for identity claims
type ProviderUserInfoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProviderUserInfoClient creates a client for {OAUTH_SERVER_URL}/api/userinfo
func NewProviderUserInfoClient(cfg config.OAuthConfig) *ProviderUserInfoClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProviderUserInfoClient{
		baseURL: cfg.ServerURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchUserInfo calls the provider once. Any non-2xx status is a failure and is not retried.
func (c *ProviderUserInfoClient) FetchUserInfo(ctx context.Context, token string) (*UserInfo, error) {
	if c.baseURL == "" {
		return nil, WrapExternal("identity provider not configured", nil)
	}

	endpoint := c.baseURL + "/api/userinfo?" + url.Values{"token": {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewDomainError(ErrorTypeExternal, ErrProviderUnavailable.Message, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return nil, WrapExternal("read userinfo response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrProviderRejected.WithDetail("status", resp.StatusCode)
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, WrapExternal("parse userinfo response", err)
	}
	if info.OpenID == "" {
		return nil, WrapExternal("userinfo response has no openId", nil)
	}

	return &info, nil
}
