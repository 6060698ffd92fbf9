package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	raw, err := svc.Issue("user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	subject, err := svc.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", subject)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := &Service{Secret: []byte("test-secret"), TTL: -time.Minute}

	raw, err := svc.Issue("user@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	raw, err := NewService([]byte("secret-one")).Issue("user@example.com")
	require.NoError(t, err)

	_, err = NewService([]byte("secret-two")).Verify(raw)
	require.Error(t, err)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	_, err := svc.Verify("not.a.jwt")
	require.Error(t, err)

	_, err = svc.Verify("")
	require.Error(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	claims := jwt.MapClaims{
		"sub": "user@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.Error(t, err)
}

func TestVerifyMissingSubject(t *testing.T) {
	svc := NewService([]byte("test-secret"))

	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := signed.SignedString(svc.Secret)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	require.Error(t, err)
}
