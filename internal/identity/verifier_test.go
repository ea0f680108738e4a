package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"animalrescue/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const testIssuer = "https://cognito-idp.ap-south-1.amazonaws.com/ap-south-1_test"

type staticKeys struct {
	set jwk.Set
	url string
}

func (s *staticKeys) Lookup(ctx context.Context, u string) (jwk.Set, error) {
	s.url = u
	return s.set, nil
}

func signingKey(t *testing.T) (jwk.Key, jwk.Set) {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	key, err := jwk.Import(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := key.Set(jwk.KeyIDKey, "test-key"); err != nil {
		t.Fatal(err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		t.Fatal(err)
	}

	public, err := jwk.PublicKeyOf(key)
	if err != nil {
		t.Fatal(err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(public); err != nil {
		t.Fatal(err)
	}

	return key, set
}

func accessToken(t *testing.T, key jwk.Key, issuer, clientID string, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Subject("ngo-1").
		Issuer(issuer).
		Expiration(exp).
		Claim("client_id", clientID).
		Claim("username", "ngo@example.org").
		Build()
	if err != nil {
		t.Fatal(err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), key))
	if err != nil {
		t.Fatal(err)
	}
	return string(signed)
}

func TestJWKSVerifier(t *testing.T) {
	key, set := signingKey(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: accessToken(t, key, testIssuer, "client-abc", exp)},
		{name: "expired", token: accessToken(t, key, testIssuer, "client-abc", time.Now().Add(-time.Hour)), wantErr: true},
		{name: "wrong issuer", token: accessToken(t, key, "https://evil.example", "client-abc", exp), wantErr: true},
		{name: "wrong client", token: accessToken(t, key, testIssuer, "client-other", exp), wantErr: true},
		{name: "garbage", token: "not.a.jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := &staticKeys{set: set}
			v := NewJWKSVerifier(keys, testIssuer+"/", "client-abc")

			session, err := v.Verify(context.Background(), tt.token)
			if keys.url != testIssuer+"/.well-known/jwks.json" {
				t.Errorf("looked up %q", keys.url)
			}

			if tt.wantErr {
				if !errors.Is(err, types.ErrUnauthorized) {
					t.Errorf("Verify() error = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if session.ReviewerID != "ngo-1" || session.Email != "ngo@example.org" || session.AccessToken != tt.token {
				t.Errorf("session = %+v", session)
			}
			if !session.ExpiresAt.Equal(exp) {
				t.Errorf("ExpiresAt = %s, want %s", session.ExpiresAt, exp)
			}
		})
	}
}
