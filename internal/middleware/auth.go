package middleware

import (
	"strings"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// CurrentUserKey holds the *models.User loaded by RequireCompleteProfile.
const CurrentUserKey = "currentUser"

// AuthMiddleware validates the Bearer token and records the principal's id,
// email and token scope on the context. Profile-scoped temp tokens pass
// here; routes that need a full session add RequireCompleteProfile.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(401, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		scope, _ := claims["scope"].(string)
		if scope != utils.ScopeSession && scope != utils.ScopeProfile {
			c.JSON(401, gin.H{"error": "Invalid token scope"})
			c.Abort()
			return
		}

		id, ok := claims["id"].(float64)
		if !ok {
			c.JSON(401, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set("userId", uint(id))
		email, _ := claims["email"].(string)
		c.Set("email", email)
		c.Set("scope", scope)
		c.Next()
	}
}

// RequireCompleteProfile gates pool creation and membership behind a full
// session and a completed profile, and loads the acting user for handlers.
func RequireCompleteProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("scope") != utils.ScopeSession {
			c.JSON(403, gin.H{"error": "Complete your profile to continue", "code": "authorization_error"})
			c.Abort()
			return
		}

		userId := c.GetUint("userId")
		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(401, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		if !user.ProfileComplete() {
			c.JSON(403, gin.H{"error": "Complete your profile to continue", "code": "authorization_error"})
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireCompleteProfile.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(CurrentUserKey).(*models.User)
}
