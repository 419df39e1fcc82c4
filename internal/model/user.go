package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"size:64;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	PhoneNumber  string    `json:"phoneNumber" gorm:"size:32"`
	AssetPath    string    `json:"profilePicturePath,omitempty" gorm:"size:255"`
	IsAdmin      bool      `json:"isAdmin" gorm:"default:false;index"`
	Bookings     []string  `json:"bookings" gorm:"serializer:json;type:json"`
	Reviews      []string  `json:"reviews" gorm:"serializer:json;type:json"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets the UUID and empty reference lists before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Bookings == nil {
		u.Bookings = []string{}
	}
	if u.Reviews == nil {
		u.Reviews = []string{}
	}
	return nil
}

// ApplyProfile copies the client-replaceable profile fields from src.
// Identity, credentials, role, asset and reference lists are left untouched.
func (u *User) ApplyProfile(src *User) {
	u.Username = src.Username
	u.Email = src.Email
	u.FirstName = src.FirstName
	u.LastName = src.LastName
	u.PhoneNumber = src.PhoneNumber
}
