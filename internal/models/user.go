package models

import "time"

// User represents application user. Login is by e-mail, like the
// original web client.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	DisplayName  string    `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"` // consecutive failed logins
	LockedUntil         *time.Time `gorm:"index"`     // account lock expiry
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`

	DeletedAt           *time.Time `gorm:"index"` // non-nil means account closed
	DeletePermanentlyAt *time.Time // closure + 7 day grace period
}
