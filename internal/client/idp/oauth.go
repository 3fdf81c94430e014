package idp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OAuthConfig configures the authorization-code-with-PKCE connector.
type OAuthConfig struct {
	ClientID string
	AuthURL  string
	TokenURL string
	Scopes   []string
	// ListenAddr is the loopback address for the redirect listener.
	// Defaults to 127.0.0.1:0 (ephemeral port).
	ListenAddr string
	// OpenBrowser launches the user's browser at the consent URL.
	OpenBrowser func(url string) error
}

// OAuthConnector implements Connector with the provider's recommended
// authorization-code + PKCE flow over a loopback redirect.
type OAuthConnector struct {
	cfg    OAuthConfig
	logger *zap.Logger

	mu          sync.Mutex
	authorizing bool
	token       *oauth2.Token
	source      oauth2.TokenSource
	profile     Profile
}

var _ Connector = (*OAuthConnector)(nil)

// NewOAuthConnector constructs an OAuth connector.
func NewOAuthConnector(cfg OAuthConfig, logger *zap.Logger) (*OAuthConnector, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("auth and token endpoints are required")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthConnector{cfg: cfg, logger: logger}, nil
}

// Authorize runs the interactive consent flow. A second call while one is in
// flight fails with ErrTransactionActive.
func (c *OAuthConnector) Authorize(ctx context.Context) (Credentials, error) {
	c.mu.Lock()
	if c.authorizing {
		c.mu.Unlock()
		return Credentials{}, ErrTransactionActive
	}
	c.authorizing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.authorizing = false
		c.mu.Unlock()
	}()

	listener, err := net.Listen("tcp", c.cfg.ListenAddr)
	if err != nil {
		return Credentials{}, fmt.Errorf("listen for redirect: %w", err)
	}
	defer listener.Close()

	conf := &oauth2.Config{
		ClientID:    c.cfg.ClientID,
		Scopes:      c.cfg.Scopes,
		RedirectURL: fmt.Sprintf("http://%s/callback", listener.Addr().String()),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.cfg.AuthURL,
			TokenURL: c.cfg.TokenURL,
		},
	}

	state, err := randomState()
	if err != nil {
		return Credentials{}, err
	}
	verifier := oauth2.GenerateVerifier()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization state mismatch")
			return
		}
		if errCode := query.Get("error"); errCode != "" {
			http.Error(w, "authorization failed", http.StatusBadRequest)
			if errCode == "access_denied" {
				errCh <- ErrAuthorizeCancelled
			} else {
				errCh <- fmt.Errorf("authorization failed: %s", errCode)
			}
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this window.")
		codeCh <- query.Get("code")
	})}
	go func() { _ = srv.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	if c.cfg.OpenBrowser != nil {
		if err := c.cfg.OpenBrowser(authURL); err != nil {
			return Credentials{}, fmt.Errorf("open browser: %w", err)
		}
	} else {
		c.logger.Info("open this URL to continue", zap.String("url", authURL))
	}

	var code string
	select {
	case <-ctx.Done():
		return Credentials{}, ErrAuthorizeCancelled
	case err := <-errCh:
		return Credentials{}, err
	case code = <-codeCh:
	}

	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Credentials{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	profile := decodeIDTokenProfile(token)

	c.mu.Lock()
	c.token = token
	c.source = conf.TokenSource(context.Background(), token)
	c.profile = profile
	c.mu.Unlock()

	return Credentials{
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
		Profile:     profile,
	}, nil
}

// Credentials returns the held credential set, refreshing through the token
// source when the access token has expired.
func (c *OAuthConnector) Credentials(ctx context.Context) (Credentials, error) {
	c.mu.Lock()
	source := c.source
	profile := c.profile
	c.mu.Unlock()

	if source == nil {
		return Credentials{}, ErrNoCredentials
	}

	token, err := source.Token()
	if err != nil {
		return Credentials{}, fmt.Errorf("refresh credentials: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	return Credentials{
		AccessToken: token.AccessToken,
		Expiry:      token.Expiry,
		Profile:     profile,
	}, nil
}

// ClearCredentials drops the held token and its refresh source.
func (c *OAuthConnector) ClearCredentials(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	c.source = nil
	c.profile = Profile{}
	return nil
}

// decodeIDTokenProfile extracts display claims from the ID token without
// verifying its signature. The backend re-verifies every request; these
// values are never a trust decision.
func decodeIDTokenProfile(token *oauth2.Token) Profile {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return Profile{}
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Profile{}
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Profile{}
	}

	var profile Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return Profile{}
	}
	return profile
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
