package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOthers Gender = "Others"
)

// ParseGender validates a gender value at the boundary. Everything past the
// handlers works with the typed constant, never the raw string.
func ParseGender(s string) (Gender, bool) {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale, GenderOthers:
		return g, true
	}
	return "", false
}

type User struct {
	gorm.Model          // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Email               string  `json:"email" gorm:"column:email;unique;not null"`
	FullName            string  `json:"fullName" gorm:"column:full_name;not null"`
	PhoneNumber         *string `json:"phoneNumber" gorm:"column:phone_number;unique"`
	RollNumber          *string `json:"rollNumber" gorm:"column:roll_number;unique"`
	Gender              Gender  `json:"gender" gorm:"column:gender"`
	GoogleAuthenticated bool    `json:"googleAuthenticated" gorm:"column:google_authenticated;not null;default:false"`
	Password            string  `json:"-" gorm:"-"` // Temporary field for password handling
	PasswordHash        string  `json:"-" gorm:"column:password_hash"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// ProfileComplete reports whether the two-step signup finished: phone number
// and gender must both be present before the user may create or join pools.
func (u *User) ProfileComplete() bool {
	return u.PhoneNumber != nil && *u.PhoneNumber != "" && u.Gender != ""
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
