package handlers

import (
	"errors"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProfile retrieves the current user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":              user.ID,
			"email":           user.Email,
			"fullName":        user.FullName,
			"phoneNumber":     user.PhoneNumber,
			"rollNumber":      user.RollNumber,
			"gender":          user.Gender,
			"profileComplete": user.ProfileComplete(),
		})
	}
}

// CompleteProfile is step two of the Google signup: phone number and gender
// become mandatory here, and only then does the user get a full session.
func CompleteProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if !user.GoogleAuthenticated {
			c.JSON(403, gin.H{"error": "Google authentication required before completing the profile"})
			return
		}

		var input struct {
			FullName    *string `json:"fullName"`
			PhoneNumber string  `json:"phoneNumber" binding:"required"`
			Gender      string  `json:"gender" binding:"required"`
			RollNumber  *string `json:"rollNumber"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !utils.IsValidPhoneNumber(input.PhoneNumber) {
			c.JSON(400, gin.H{"error": "Invalid phone number"})
			return
		}
		gender, ok := models.ParseGender(input.Gender)
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid gender choice"})
			return
		}
		if input.RollNumber != nil && !utils.IsValidRollNumber(*input.RollNumber) {
			c.JSON(400, gin.H{"error": "Invalid roll number"})
			return
		}

		user.PhoneNumber = &input.PhoneNumber
		user.Gender = gender
		if input.FullName != nil && *input.FullName != "" {
			user.FullName = *input.FullName
		}
		if input.RollNumber != nil {
			user.RollNumber = input.RollNumber
		}

		if err := db.Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(409, gin.H{"error": "Phone number or roll number already taken"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		access, err := utils.GenerateAccessToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}
		refresh, err := utils.GenerateRefreshToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"message": "User profile updated successfully",
			"access":  access,
			"refresh": refresh,
		})
	}
}
