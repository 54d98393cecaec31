package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewTokenIssuer(key, "khmerai-test", "khmerai-test")
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueAccessToken("user-42", "google", "admin", 900)
	require.NoError(t, err)

	userID, provider, role, err := issuer.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
	require.Equal(t, "google", provider)
	require.Equal(t, "admin", role)
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueAccessToken("user-42", "password", "user", -60)
	require.NoError(t, err)

	_, _, _, err = issuer.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(t)
	other := newTestIssuer(t)

	token, err := other.IssueAccessToken("user-42", "password", "user", 900)
	require.NoError(t, err)

	_, _, _, err = issuer.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t)
	_, _, _, err := issuer.ValidateAccessToken("not.a.jwt")
	require.Error(t, err)
}

func TestTokenIssuer_RoleClaimIsIssuedFresh(t *testing.T) {
	issuer := newTestIssuer(t)

	before, err := issuer.IssueAccessToken("user-42", "password", "user", 900)
	require.NoError(t, err)
	after, err := issuer.IssueAccessToken("user-42", "password", "admin", 900)
	require.NoError(t, err)

	_, _, roleBefore, err := issuer.ValidateAccessToken(before)
	require.NoError(t, err)
	_, _, roleAfter, err := issuer.ValidateAccessToken(after)
	require.NoError(t, err)
	require.Equal(t, "user", roleBefore)
	require.Equal(t, "admin", roleAfter)
}
