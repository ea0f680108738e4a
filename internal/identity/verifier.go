package identity

import (
	"context"
	"fmt"
	"strings"

	"animalrescue/pkg/types"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// TokenVerifier turns an access token into a session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*types.Session, error)
}

// KeySetSource is satisfied by *jwk.Cache.
type KeySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

// JWKSVerifier validates Cognito access tokens against the user pool's
// published keys.
type JWKSVerifier struct {
	keys     KeySetSource
	jwksURL  string
	issuer   string
	clientID string
}

// NewJWKSCache registers the issuer's key set with a background refreshing
// cache and returns both.
func NewJWKSCache(ctx context.Context, issuerURL string) (*jwk.Cache, string, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := JWKSURL(issuerURL)
	if err := cache.Register(ctx, jwksURL); err != nil {
		return nil, "", fmt.Errorf("failed to register %s with jwk cache: %w", jwksURL, err)
	}

	return cache, jwksURL, nil
}

func JWKSURL(issuerURL string) string {
	return fmt.Sprintf("%s/.well-known/jwks.json", strings.TrimSuffix(issuerURL, "/"))
}

// NewJWKSVerifier checks the token issuer and, when clientID is set, the
// client_id claim Cognito puts on access tokens.
func NewJWKSVerifier(keys KeySetSource, issuerURL, clientID string) *JWKSVerifier {
	return &JWKSVerifier{
		keys:     keys,
		jwksURL:  JWKSURL(issuerURL),
		issuer:   strings.TrimSuffix(issuerURL, "/"),
		clientID: clientID,
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, accessToken string) (*types.Session, error) {
	set, err := v.keys.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	reviewerID, ok := token.Subject()
	if !ok || reviewerID == "" {
		return nil, fmt.Errorf("%w: token has no subject", types.ErrUnauthorized)
	}

	if v.clientID != "" {
		var clientID string
		if err := token.Get("client_id", &clientID); err != nil || clientID != v.clientID {
			return nil, fmt.Errorf("%w: token was issued to another client", types.ErrUnauthorized)
		}
	}

	session := &types.Session{
		ReviewerID:  reviewerID,
		AccessToken: accessToken,
	}

	// access tokens carry username, id tokens carry email
	if err := token.Get("email", &session.Email); err != nil {
		_ = token.Get("username", &session.Email)
	}

	if exp, ok := token.Expiration(); ok {
		session.ExpiresAt = exp
	}

	return session, nil
}
