// Package kakao implements the OAuth 2.0 code flow against Kakao.
// Kakao returns the profile nested under "properties" and "kakao_account";
// the raw map is passed through to the social normalizer as-is.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthEndpoint    = "https://kauth.kakao.com/oauth/authorize"
	defaultTokenEndpoint   = "https://kauth.kakao.com/oauth/token"
	defaultProfileEndpoint = "https://kapi.kakao.com/v2/user/me"
)

// OAuth is the Kakao OAuth 2.0 client.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthEndpoint    string
	TokenEndpoint   string
	ProfileEndpoint string

	http *http.Client
}

// New creates a new Kakao OAuth client.
func New(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{
		ClientID:        clientID,
		ClientSecret:    clientSecret,
		RedirectURL:     redirectURL,
		AuthEndpoint:    defaultAuthEndpoint,
		TokenEndpoint:   defaultTokenEndpoint,
		ProfileEndpoint: defaultProfileEndpoint,
		http:            &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL builds the authorization URL.
func (k *OAuth) AuthURL(state string) string {
	u, _ := url.Parse(k.AuthEndpoint)
	q := u.Query()
	q.Set("client_id", k.ClientID)
	q.Set("redirect_uri", k.RedirectURL)
	q.Set("response_type", "code")
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// ExchangeCode exchanges an authorization code for an access token.
func (k *OAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", k.ClientID)
	if k.ClientSecret != "" {
		form.Set("client_secret", k.ClientSecret)
	}
	form.Set("code", code)
	form.Set("redirect_uri", k.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := k.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.Error != "" {
		return "", fmt.Errorf("kakao oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("no access_token in response")
	}
	return tr.AccessToken, nil
}

// FetchProfile fetches the raw profile map ("id", "properties", "kakao_account").
func (k *OAuth) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.ProfileEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := k.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao profile returned status %d", resp.StatusCode)
	}
	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return attrs, nil
}
