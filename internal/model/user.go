package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	Username string `gorm:"size:255;not null"`
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	// bcrypt hash, never serialized
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"size:16;not null;default:user"`

	IsVerified        bool   `gorm:"not null;default:false"`
	VerifyToken       string `gorm:"size:128;index"`
	VerifyTokenExpiry *time.Time

	ForgotPasswordToken       string `gorm:"size:128;index"`
	ForgotPasswordTokenExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Subscriber struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
}
