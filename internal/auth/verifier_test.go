package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maxaizer/jobmatch/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Verifier_WhenTokenValid_ShouldReturnSubject(t *testing.T) {

	verifier := NewVerifier("secret", "identity")
	token, err := verifier.Issue("u1", time.Hour)
	require.NoError(t, err)

	uid, err := verifier.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func Test_Verifier_WhenTokenInvalid_ShouldReturnUnauthenticated(t *testing.T) {

	verifier := NewVerifier("secret", "identity")
	foreign, err := NewVerifier("other", "identity").Issue("u1", time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := NewVerifier("secret", "someone-else").Issue("u1", time.Hour)
	require.NoError(t, err)
	noSubject, err := verifier.Issue("", time.Hour)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-token", foreign, wrongIssuer, noSubject, unsigned} {
		_, err := verifier.Verify(token)
		assert.ErrorIs(t, err, models.ErrUnauthenticated, token)
	}
}

func Test_Verifier_WhenTokenExpired_ShouldReturnExpired(t *testing.T) {

	verifier := NewVerifier("secret", "")
	token, err := verifier.Issue("u1", time.Minute)
	require.NoError(t, err)

	verifier.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
