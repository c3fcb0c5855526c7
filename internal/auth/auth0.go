package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

// Auth0Verifier validates RS256 access tokens against an Auth0 tenant's JWKS.
type Auth0Verifier struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
}

type auth0Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// NewAuth0Verifier fetches https://<domain>/.well-known/jwks.json and keeps
// it refreshed in the background.
func NewAuth0Verifier(ctx context.Context, domain, audience string, log logrus.FieldLogger) (*Auth0Verifier, error) {
	domain = strings.TrimSuffix(strings.TrimPrefix(domain, "https://"), "/")
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
	return NewJWKSVerifier(ctx, jwksURL, "https://"+domain+"/", audience, log)
}

// NewJWKSVerifier builds a verifier from an explicit JWKS URL and issuer.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string, log logrus.FieldLogger) (*Auth0Verifier, error) {
	if audience == "" {
		return nil, fmt.Errorf("token audience is required")
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.WithError(err).Warn("Auth.JWKS.RefreshError")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	return &Auth0Verifier{jwks: jwks, issuer: issuer, audience: audience}, nil
}

// VerifyToken checks signature, expiry, issuer and audience.
func (v *Auth0Verifier) VerifyToken(ctx context.Context, raw string) (*UserClaims, error) {
	claims := &auth0Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("invalid token issuer %q", claims.Issuer)
	}
	if !claims.VerifyAudience(v.audience, true) {
		return nil, fmt.Errorf("invalid token audience")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &UserClaims{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Picture:     claims.Picture,
		Verified:    claims.EmailVerified,
	}, nil
}

// Close stops the background JWKS refresh.
func (v *Auth0Verifier) Close() {
	v.jwks.EndBackground()
}
