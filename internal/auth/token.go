package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"uploadapi/internal/config"
)

// driveScope grants full Drive access; folder creation under arbitrary roots
// needs more than drive.file.
const driveScope = "https://www.googleapis.com/auth/drive"

// TokenProvider exchanges long-lived credentials for a short-lived bearer
// token usable against the storage API. The token is also handed back to the
// browser for the direct upload, so it is returned as a plain string.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenError reports a refused or empty credential exchange.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("access token exchange failed: %v", e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// googleTokenProvider implements TokenProvider via the OAuth2 refresh-token
// grant. A fresh token is obtained on every call; nothing is cached.
type googleTokenProvider struct {
	cfg    config.GoogleConfig
	client *http.Client
}

// NewGoogleTokenProvider builds a TokenProvider from the configured client
// id/secret/refresh token. client is used for the token endpoint call; pass
// nil to use http.DefaultClient.
func NewGoogleTokenProvider(cfg config.GoogleConfig, client *http.Client) TokenProvider {
	return &googleTokenProvider{cfg: cfg, client: client}
}

func (p *googleTokenProvider) AccessToken(ctx context.Context) (string, error) {
	switch {
	case p.cfg.ClientID == "":
		return "", &config.MissingError{Name: "GOOGLE_CLIENT_ID"}
	case p.cfg.ClientSecret == "":
		return "", &config.MissingError{Name: "GOOGLE_CLIENT_SECRET"}
	case p.cfg.RefreshToken == "":
		return "", &config.MissingError{Name: "GOOGLE_REFRESH_TOKEN"}
	}

	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Scopes:       []string{driveScope},
		Endpoint:     google.Endpoint,
	}
	if p.cfg.TokenURL != "" {
		conf.Endpoint = oauth2.Endpoint{TokenURL: p.cfg.TokenURL}
	}

	if p.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}

	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: p.cfg.RefreshToken}).Token()
	if err != nil {
		return "", &TokenError{Err: err}
	}
	if tok.AccessToken == "" {
		return "", &TokenError{Err: errors.New("backend returned no access token")}
	}
	return tok.AccessToken, nil
}
