package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() Identity {
	return Identity{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Email:    "ana@example.com",
		Role:     "admin",
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	id := testIdentity()

	token, err := GenerateToken(id, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testIdentity(), "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other")
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(testIdentity(), "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	id := testIdentity()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: id.UserID, TenantID: id.TenantID})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(signed, "secret")
	assert.Error(t, err)
}

func TestParseTokenRequiresTenant(t *testing.T) {
	id := testIdentity()
	id.TenantID = uuid.Nil
	token, err := GenerateToken(id, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}
