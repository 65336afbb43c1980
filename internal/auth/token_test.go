package auth

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator_RoundTrip(t *testing.T) {
	a := NewAuthenticator("secret")

	token, err := a.Issue(42, time.Hour)
	require.NoError(t, err)

	systemID, err := a.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, 42, systemID)
}

func TestAuthenticator_Rejects(t *testing.T) {
	a := NewAuthenticator("secret")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewAuthenticator("other").Issue(42, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		past := NewAuthenticator("secret")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.Issue(42, time.Hour)
		require.NoError(t, err)

		_, err = a.Authenticate(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.Authenticate("not-a-jwt")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{SystemID: 42})
		signed, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = a.Authenticate(signed)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("missing system", func(t *testing.T) {
		_, err := a.Issue(0, time.Hour)
		assert.Error(t, err)
	})
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "abc", token: "abc", ok: true},
		{header: "", ok: false},
		{header: "   ", ok: false},
		{header: "Basic a b", token: "Basic a b", ok: true},
		{header: "Bearer a b", token: "Bearer a b", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := TokenFromHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}
