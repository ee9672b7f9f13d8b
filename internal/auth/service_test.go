package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

func newTestService(now time.Time) *Service {
	return &Service{
		secret:    []byte("test-secret-test-secret-test-1234"),
		accessTTL: time.Hour,
		now:       func() time.Time { return now },
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    "backend-electro",
			Audience:  "electro-admin",
			ClockSkew: 30 * time.Second,
			Algorithm: jwa.HS256,
		},
		issuer:   "backend-electro",
		audience: "electro-admin",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)
	user := AdminUser{ID: "3f6d2b1e-0000-0000-0000-000000000001", Role: "admin"}

	signed, expiresAt, err := svc.issueToken(user)
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), expiresAt)

	id, role, err := svc.ParseAccessToken(signed)
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
	require.Equal(t, "admin", role)
}

func TestParseAccessTokenExpired(t *testing.T) {
	issuedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(issuedAt)
	signed, _, err := svc.issueToken(AdminUser{ID: "abc", Role: "admin"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, _, err = svc.ParseAccessToken(signed)
	require.Error(t, err)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(now)
	signed, _, err := issuer.issueToken(AdminUser{ID: "abc", Role: "root"})
	require.NoError(t, err)

	verifier := newTestService(now)
	verifier.secret = []byte("another-secret-entirely-0123456789")
	_, _, err = verifier.ParseAccessToken(signed)
	require.Error(t, err)
}

func TestParseAccessTokenWrongAlgorithm(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	tok, err := jwt.NewBuilder().
		Issuer("backend-electro").
		Audience([]string{"electro-admin"}).
		Subject("abc").
		IssuedAt(now).
		Expiration(now.Add(time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS512, svc.secret))
	require.NoError(t, err)

	_, _, err = svc.ParseAccessToken(string(signed))
	require.Error(t, err)
}

func TestParseAccessTokenGarbage(t *testing.T) {
	svc := newTestService(time.Now())
	_, _, err := svc.ParseAccessToken("not-a-token")
	require.Error(t, err)
}
