package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewMaker(secretKey, "", tokenTTL)

	tests := []struct {
		name     string
		userID   string
		tenantID string
		email    string
		roles    []string
	}{
		{
			name:     "student with single role",
			userID:   "user-1",
			tenantID: "tenant-a",
			email:    "student@contoso.com",
			roles:    []string{"Student"},
		},
		{
			name:     "admin with several roles",
			userID:   "user-2",
			tenantID: "tenant-b",
			email:    "admin@contoso.com",
			roles:    []string{"Admin", "LabOwner"},
		},
		{
			name:     "user without roles",
			userID:   "user-3",
			tenantID: "tenant-a",
			email:    "norole@contoso.com",
			roles:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenStr, err := maker.GenerateToken(tt.userID, tt.tenantID, tt.email, "Test User", tt.roles)
			require.NoError(t, err)
			assert.NotEmpty(t, tokenStr)

			auth, err := maker.ParseToken(tokenStr)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, auth.UserID)
			assert.Equal(t, tt.tenantID, auth.TenantID)
			assert.Equal(t, tt.email, auth.Email)
			assert.Equal(t, tt.roles, auth.Roles)
		})
	}
}

func TestMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewMaker(secretKey, "", 15*time.Minute)

	validToken, err := maker.GenerateToken("user-1", "tenant-a", "", "", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: createExpiredToken(t, secretKey)},
		{name: "wrong secret key", token: createTokenWithWrongSecret(t)},
		{name: "tampered token", token: validToken + "tampered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, auth)
		})
	}
}

func TestMaker_AudienceCheck(t *testing.T) {
	secretKey := "test_secret_key"
	issuer := NewMaker(secretKey, "api://ailab", 15*time.Minute)
	otherAudience := NewMaker(secretKey, "api://other", 15*time.Minute)
	noAudience := NewMaker(secretKey, "", 15*time.Minute)

	tokenStr, err := issuer.GenerateToken("user-1", "tenant-a", "", "", nil)
	require.NoError(t, err)

	auth, err := issuer.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", auth.TenantID)

	auth, err = otherAudience.ParseToken(tokenStr)
	assert.Error(t, err)
	assert.Nil(t, auth)

	// без настроенной аудитории проверка отключена
	_, err = noAudience.ParseToken(tokenStr)
	assert.NoError(t, err)
}

func TestMaker_MissingTenantClaim(t *testing.T) {
	maker := NewMaker("test_secret_key", "", 15*time.Minute)

	tokenStr, err := maker.GenerateToken("user-1", "", "", "", nil)
	require.NoError(t, err)

	auth, err := maker.ParseToken(tokenStr)
	assert.Error(t, err)
	assert.Nil(t, auth)
	assert.Contains(t, err.Error(), "missing user or tenant claim")
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewMaker(secretKey, "", -time.Hour)
	tokenStr, err := maker.GenerateToken("user-1", "tenant-a", "", "", nil)
	require.NoError(t, err)
	return tokenStr
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewMaker("wrong_secret_key", "", 15*time.Minute)
	tokenStr, err := wrongMaker.GenerateToken("user-1", "tenant-a", "", "", nil)
	require.NoError(t, err)
	return tokenStr
}
