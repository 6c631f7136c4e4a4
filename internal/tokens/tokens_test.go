package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer(
		[]byte("test-access-secret"),
		[]byte("test-refresh-secret"),
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()

	token, err := issuer.IssueAccess(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.VerifyAccess(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, SubjectAccess, claims.Subject)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()

	token, err := issuer.IssueRefresh(42)
	require.NoError(t, err)

	claims, err := issuer.VerifyRefresh(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, SubjectRefresh, claims.Subject)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_RejectsCrossClassTokens(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()

	access, err := issuer.IssueAccess(1)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh(1)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalid)
}

// Even with a single shared secret the subject claim keeps the classes apart.
func TestVerify_SubjectDiscriminatorWithSharedSecret(t *testing.T) {
	t.Parallel()

	secret := []byte("shared-by-mistake")
	issuer := NewIssuer(secret, secret, 15*time.Minute, 24*time.Hour)

	refresh, err := issuer.IssueRefresh(7)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer(
		[]byte("test-access-secret"),
		[]byte("test-refresh-secret"),
		-time.Minute,
		-time.Minute,
	)

	access, err := issuer.IssueAccess(1)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefresh(1)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = issuer.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	other := NewIssuer([]byte("other-access"), []byte("other-refresh"), 15*time.Minute, 24*time.Hour)

	access, err := issuer.IssueAccess(1)
	require.NoError(t, err)

	_, err = other.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()

	_, err := issuer.VerifyAccess("not.a.token")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = issuer.VerifyRefresh("")
	assert.ErrorIs(t, err, ErrInvalid)
}
