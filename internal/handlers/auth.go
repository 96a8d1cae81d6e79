package handlers

import (
	"errors"
	"os"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/services"
	"github.com/campuspool/campuspool-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	RollNumber  string `json:"rollNumber" binding:"required"`
	Gender      string `json:"gender" binding:"required"`
}

// Register is the password signup path: campus email only, ten-digit phone
// and roll number, gender validated once here.
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !utils.EmailDomainAllowed(input.Email) {
			c.JSON(400, gin.H{"error": utils.AllowedEmailDomain() + " email accepted only"})
			return
		}
		if !utils.IsValidPhoneNumber(input.PhoneNumber) {
			c.JSON(400, gin.H{"error": "Invalid phone number"})
			return
		}
		if !utils.IsValidRollNumber(input.RollNumber) {
			c.JSON(400, gin.H{"error": "Invalid roll number"})
			return
		}
		gender, ok := models.ParseGender(input.Gender)
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid gender choice"})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		user := models.User{
			Email:        input.Email,
			FullName:     input.FullName,
			PhoneNumber:  &input.PhoneNumber,
			RollNumber:   &input.RollNumber,
			Gender:       gender,
			PasswordHash: string(hashedPassword),
		}

		if result := db.Create(&user); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				c.JSON(409, gin.H{"error": "Email, phone number or roll number already taken"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to create user"})
			return
		}

		c.JSON(201, gin.H{
			"message": "User created successfully",
			"user":    user,
		})
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", input.Email).First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		respondWithSession(c, &user)
	}
}

type GoogleLoginInput struct {
	IDToken      string `json:"idToken" binding:"required"`
	SignupIntent bool   `json:"signupIntent"`
}

// GoogleLogin verifies a Google ID token, enforces the campus domain and
// runs the two-step signup: users without a completed profile get a
// short-lived temp token good only for the register-info endpoint.
func GoogleLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input GoogleLoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		payload, err := idtoken.Validate(c.Request.Context(), input.IDToken, os.Getenv("GOOGLE_CLIENT_ID"))
		if err != nil {
			c.JSON(401, gin.H{"error": "Invalid Google ID token"})
			return
		}

		email, _ := payload.Claims["email"].(string)
		fullName, _ := payload.Claims["name"].(string)
		if email == "" || fullName == "" {
			c.JSON(400, gin.H{"error": "Email and full name are required from the Google profile"})
			return
		}
		if !utils.EmailDomainAllowed(email) {
			logrus.WithField("email", email).Warn("google login rejected: wrong domain")
			c.JSON(403, gin.H{"error": "Only " + utils.AllowedEmailDomain() + " emails are allowed"})
			return
		}

		var user models.User
		err = db.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:               email,
				FullName:            fullName,
				GoogleAuthenticated: true,
			}
			if err := db.Create(&user).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to create user"})
				return
			}
		case err != nil:
			c.JSON(500, gin.H{"error": "Failed to load user"})
			return
		default:
			if input.SignupIntent && user.GoogleAuthenticated {
				c.JSON(400, gin.H{"error": "You have already signed up. Please log in instead."})
				return
			}
			if !user.GoogleAuthenticated {
				user.GoogleAuthenticated = true
				if err := db.Save(&user).Error; err != nil {
					c.JSON(500, gin.H{"error": "Failed to update user"})
					return
				}
			}
		}

		respondWithSession(c, &user)
	}
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken mints a new access token unless the refresh token was
// revoked by logout.
func RefreshToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RefreshInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		claims, err := utils.ParseRefreshToken(input.RefreshToken)
		if err != nil {
			c.JSON(401, gin.H{"error": err.Error()})
			return
		}

		revoked, err := services.IsRefreshTokenDenylisted(c.Request.Context(), claims.JTI)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to check token"})
			return
		}
		if revoked {
			c.JSON(401, gin.H{"error": "Refresh token has been revoked"})
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.JSON(401, gin.H{"error": "User not found"})
			return
		}

		access, err := utils.GenerateAccessToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{"access": access})
	}
}

// Logout denylists the refresh token until its natural expiry.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RefreshInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Refresh token missing"})
			return
		}

		claims, err := utils.ParseRefreshToken(input.RefreshToken)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid or expired refresh token"})
			return
		}

		if err := services.DenylistRefreshToken(c.Request.Context(), claims.JTI, claims.ExpiresAt); err != nil {
			c.JSON(500, gin.H{"error": "Failed to revoke token"})
			return
		}

		c.JSON(200, gin.H{"message": "Logout successful"})
	}
}

// respondWithSession hands out the right credential for the user's signup
// stage: a temp token while the profile is incomplete, a full session pair
// once it is.
func respondWithSession(c *gin.Context, user *models.User) {
	if !user.ProfileComplete() {
		tempToken, err := utils.GenerateTempToken(user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(200, gin.H{
			"message":   "Authentication successful. Please complete your profile.",
			"email":     user.Email,
			"name":      user.FullName,
			"tempToken": tempToken,
		})
		return
	}

	access, err := utils.GenerateAccessToken(user)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}
	refresh, err := utils.GenerateRefreshToken(user)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(200, gin.H{
		"message": "Login successful",
		"email":   user.Email,
		"name":    user.FullName,
		"access":  access,
		"refresh": refresh,
	})
}
