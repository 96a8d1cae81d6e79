package utils

import (
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testUser() *models.User {
	phone := "9876543210"
	return &models.User{
		Model:       gorm.Model{ID: 42},
		Email:       "rider@thapar.edu",
		FullName:    "Test Rider",
		PhoneNumber: &phone,
		Gender:      models.GenderFemale,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	user := testUser()

	tokenString, err := GenerateAccessToken(user)
	require.NoError(t, err)

	token, err := ValidateToken(tokenString)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["id"])
	assert.Equal(t, "rider@thapar.edu", claims["email"])
	assert.Equal(t, ScopeSession, claims["scope"])
	assert.Equal(t, true, claims["profileComplete"])
}

func TestTempTokenScope(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	user := testUser()
	user.PhoneNumber = nil

	tokenString, err := GenerateTempToken(user)
	require.NoError(t, err)

	token, err := ValidateToken(tokenString)
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, ScopeProfile, claims["scope"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TempTokenLifetime), exp.Time, time.Minute)

	// A temp token is not a refresh token.
	_, err = ParseRefreshToken(tokenString)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	user := testUser()

	tokenString, err := GenerateRefreshToken(user)
	require.NoError(t, err)

	claims, err := ParseRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenLifetime), claims.ExpiresAt, time.Minute)

	// Distinct tokens carry distinct jtis.
	second, err := GenerateRefreshToken(user)
	require.NoError(t, err)
	secondClaims, err := ParseRefreshToken(second)
	require.NoError(t, err)
	assert.NotEqual(t, claims.JTI, secondClaims.JTI)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	tokenString, err := GenerateAccessToken(testUser())
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	token, err := ValidateToken(tokenString)
	assert.True(t, err != nil || !token.Valid)
}
