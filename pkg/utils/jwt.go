package utils

import (
	"errors"
	"os"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token scopes. Session tokens carry full API access, profile tokens allow
// reads and finishing the two-step signup but no pool mutations, refresh
// tokens only mint new session tokens.
const (
	ScopeSession = "session"
	ScopeProfile = "profile"
	ScopeRefresh = "refresh"
)

const (
	AccessTokenLifetime  = 24 * time.Hour
	RefreshTokenLifetime = 7 * 24 * time.Hour
	TempTokenLifetime    = 5 * time.Minute
)

func GenerateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":              user.ID,
		"email":           user.Email,
		"scope":           ScopeSession,
		"profileComplete": user.ProfileComplete(),
		"exp":             time.Now().Add(AccessTokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// GenerateTempToken issues the short-lived token handed out after Google
// auth succeeds but before the profile is complete. It passes AuthMiddleware
// like a session token, so read routes and register-info work, but it never
// clears the complete-profile gate on mutating routes.
func GenerateTempToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"scope": ScopeProfile,
		"exp":   time.Now().Add(TempTokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// GenerateRefreshToken carries a jti so logout can denylist the exact token.
func GenerateRefreshToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"jti":   uuid.NewString(),
		"scope": ScopeRefresh,
		"exp":   time.Now().Add(RefreshTokenLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
}

// RefreshTokenClaims is the subset of a refresh token the auth handlers act
// on.
type RefreshTokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// ParseRefreshToken validates a refresh token and rejects tokens of any
// other scope.
func ParseRefreshToken(tokenString string) (*RefreshTokenClaims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired refresh token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if scope, _ := claims["scope"].(string); scope != ScopeRefresh {
		return nil, errors.New("not a refresh token")
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("invalid token claims")
	}
	return &RefreshTokenClaims{
		UserID:    uint(id),
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}
