package domain

import "time"

type Role string

const (
	RoleApplicant Role = "APPLICANT"
	RoleRecruiter Role = "RECRUITER"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"userId"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Role         Role      `gorm:"type:varchar(16);not null;default:'APPLICANT'" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// RefreshToken holds the fingerprint of the most recently issued refresh
// token for a user. One row per user; TokenHash is nil once revoked.
type RefreshToken struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"uniqueIndex;not null"`
	TokenHash *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RefreshToken) TableName() string { return "refresh_tokens" }
