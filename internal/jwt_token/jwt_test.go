package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "familydir/pkg/domain"
	dErrors "familydir/pkg/domain-errors"
)

var personID = id.NewPersonID()

func newService(ttl time.Duration) *JWTService {
	return NewJWTService("test-signing-key", "test-issuer", ttl)
}

func Test_GenerateSessionToken(t *testing.T) {
	svc := newService(30 * 24 * time.Hour)
	token, expiresAt, err := svc.GenerateSessionToken(personID, "ann@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, personID.String(), claims.PersonID)
	assert.Equal(t, personID.String(), claims.Subject)
	assert.Equal(t, "ann@example.com", claims.Email)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := newService(time.Hour).ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	svc := newService(-time.Hour)
	token, _, err := svc.GenerateSessionToken(personID, "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	token, _, err := newService(time.Hour).GenerateSessionToken(personID, "")
	require.NoError(t, err)

	other := NewJWTService("another-key", "test-issuer", time.Hour)
	_, err = other.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	token, _, err := newService(time.Hour).GenerateSessionToken(personID, "")
	require.NoError(t, err)

	other := NewJWTService("test-signing-key", "someone-else", time.Hour)
	_, err = other.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Adapter(t *testing.T) {
	svc := newService(time.Hour)
	token, _, err := svc.GenerateSessionToken(personID, "ann@example.com")
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(svc).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, personID.String(), claims.PersonID)
	assert.Equal(t, "ann@example.com", claims.Email)
}
