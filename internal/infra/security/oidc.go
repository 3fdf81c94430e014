package security

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
)

// ErrTokenInvalid covers every verification failure: bad signature, wrong
// issuer or audience, disallowed algorithm, expiry, or a malformed token.
// Callers must not distinguish between causes.
var ErrTokenInvalid = errors.New("oidc: token invalid")

const (
	defaultJWKSCacheTTL = 10 * time.Minute
	defaultHTTPTimeout  = 5 * time.Second
	jwksPath            = ".well-known/jwks.json"
)

// RemoteVerifierConfig configures verification against the identity provider's tenant.
type RemoteVerifierConfig struct {
	Issuer       string
	Audience     string
	EmailClaim   string
	HTTPTimeout  time.Duration
	JWKSCacheTTL time.Duration
}

// RemoteVerifier validates RS256 bearer tokens against the provider's
// published JWKS. Keys are cached and refreshed on unknown kid or TTL expiry.
type RemoteVerifier struct {
	cfg    RemoteVerifierConfig
	client *http.Client
	parser *jwt.Parser

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

var _ port.TokenVerifier = (*RemoteVerifier)(nil)

// NewRemoteVerifier constructs a RemoteVerifier for the supplied tenant.
func NewRemoteVerifier(cfg RemoteVerifierConfig) (*RemoteVerifier, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("oidc: issuer is required")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, fmt.Errorf("oidc: audience is required")
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.JWKSCacheTTL <= 0 {
		cfg.JWKSCacheTTL = defaultJWKSCacheTTL
	}
	if !strings.HasSuffix(cfg.Issuer, "/") {
		cfg.Issuer += "/"
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)

	return &RemoteVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		parser: parser,
		keys:   make(map[string]*rsa.PublicKey),
	}, nil
}

// Verify checks the token's signature, issuer, audience, algorithm and expiry,
// returning the verified claim set or ErrTokenInvalid.
func (v *RemoteVerifier) Verify(ctx context.Context, rawToken string) (*domain.Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrTokenInvalid
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrKeyIDMissing
		}
		return v.verificationKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &domain.Claims{
		Subject:    subject,
		Email:      v.emailFromClaims(subject, claims),
		Name:       stringClaim(claims, "name"),
		GivenName:  stringClaim(claims, "given_name"),
		FamilyName: stringClaim(claims, "family_name"),
	}, nil
}

// emailFromClaims resolves the account email: standard claim first, then the
// tenant's namespaced custom claim, then a synthetic address derived from the
// subject so provisioning never stalls on a missing email.
func (v *RemoteVerifier) emailFromClaims(subject string, claims jwt.MapClaims) string {
	if email := stringClaim(claims, "email"); email != "" {
		return email
	}
	if v.cfg.EmailClaim != "" {
		if email := stringClaim(claims, v.cfg.EmailClaim); email != "" {
			return email
		}
	}
	return subject + "@auth0.user"
}

func stringClaim(claims jwt.MapClaims, key string) string {
	val, _ := claims[key].(string)
	return strings.TrimSpace(val)
}

// ErrKeyIDMissing indicates the token header carries no kid.
var ErrKeyIDMissing = errors.New("oidc: missing key identifier")

// ErrKeyNotFound indicates the provider's JWKS does not list the requested kid.
var ErrKeyNotFound = errors.New("oidc: key not found")

func (v *RemoteVerifier) verificationKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < v.cfg.JWKSCacheTTL
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		// A stale key beats no key when the provider is briefly unreachable.
		if ok {
			return key, nil
		}
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	return key, nil
}

func (v *RemoteVerifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.Issuer+jwksPath, nil)
	if err != nil {
		return fmt.Errorf("build jwks request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read jwks body: %w", err)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Use string `json:"use"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || jwk.Kid == "" {
			continue
		}
		if jwk.Use != "" && jwk.Use != "sig" {
			continue
		}
		key, err := parseRSAKey(jwk.N, jwk.E)
		if err != nil {
			continue
		}
		keys[jwk.Kid] = key
	}

	if len(keys) == 0 {
		return fmt.Errorf("jwks contains no usable RSA keys")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	return nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
