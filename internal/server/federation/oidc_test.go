package federation

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testIssuer   = "https://issuer.example.com"
	testClientID = "medtrack"
)

func newTestProvider(t *testing.T, idTokenFor func(form url.Values) string) *OIDCProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		claims := jwt.MapClaims{
			"iss": testIssuer,
			"aud": testClientID,
			"sub": "subject-1",
			"exp": time.Now().Add(time.Hour).Unix(),
			"iat": time.Now().Unix(),
		}
		for k, v := range parseClaims(idTokenFor(r.PostForm)) {
			claims[k] = v
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     signed,
		})
	}))
	t.Cleanup(srv.Close)

	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:    testClientID,
			Endpoint:    oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token"},
			RedirectURL: "http://127.0.0.1:8080/auth/callback",
			Scopes:      []string{oidc.ScopeOpenID, "email"},
		},
		verifier: oidc.NewVerifier(testIssuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}},
			&oidc.Config{ClientID: testClientID}),
	}
}

func parseClaims(s string) map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func TestAuthCodeURL_CarriesStateNonceAndChallenge(t *testing.T) {
	p := newTestProvider(t, func(url.Values) string { return "{}" })

	raw := p.AuthCodeURL("st", "n1", NewVerifier())
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "n1", q.Get("nonce"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
}

func TestExchange_Success(t *testing.T) {
	var sentVerifier string
	p := newTestProvider(t, func(form url.Values) string {
		sentVerifier = form.Get("code_verifier")
		return `{"nonce":"n1","email":"ann@example.com","email_verified":true,"name":"Ann"}`
	})

	id, err := p.Exchange(context.Background(), "code", "verifier-1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "verifier-1", sentVerifier)
	assert.Equal(t, &Identity{Subject: "subject-1", Email: "ann@example.com", EmailVerified: true, Name: "Ann"}, id)
}

func TestExchange_NonceMismatch(t *testing.T) {
	p := newTestProvider(t, func(url.Values) string { return `{"nonce":"other"}` })

	_, err := p.Exchange(context.Background(), "code", "v", "n1")
	assert.ErrorIs(t, err, ErrNonceMismatch)
}
