// Package domain contains persistence models for user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is the invoice issuer. Business and banking fields are filled in
// during onboarding and become the FROM identity on every invoice and PDF.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`

	BusinessName string `gorm:"type:text" json:"business_name"`
	Address      string `gorm:"type:text" json:"address"`

	BankName        string `gorm:"type:text" json:"bank_name"`
	BankAccountName string `gorm:"type:text" json:"bank_account_name"`
	AccountNumber   string `gorm:"type:text" json:"account_number"`
	BranchCode      string `gorm:"type:text" json:"branch_code"`

	Onboarded bool      `gorm:"not null;default:false" json:"onboarded"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is a login session. Only the SHA-256 hash of the bearer token
// is stored.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"not null;index"`
	TokenHash string       `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt time.Time    `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
