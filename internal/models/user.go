package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// roleRank orders roles for capability checks. Higher rank wins.
var roleRank = map[UserRole]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// HasRole reports whether actual satisfies required in the
// admin > manager > user hierarchy. Unknown roles never satisfy anything.
func HasRole(actual, required UserRole) bool {
	actualRank, ok := roleRank[actual]
	if !ok {
		return false
	}
	requiredRank, ok := roleRank[required]
	if !ok {
		return false
	}
	return actualRank >= requiredRank
}

type User struct {
	ID                  uint64     `gorm:"primarykey" json:"id"`
	Username            string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	DisplayName         string     `gorm:"type:varchar(100);not null" json:"display_name"`
	PasswordHash        string     `gorm:"type:varchar(255);not null" json:"-"`
	Role                UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsActive            bool       `gorm:"not null;default:true" json:"is_active"`
	ResetToken          string     `gorm:"type:varchar(64);index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Relations
	WorkLogs    []WorkLog    `gorm:"foreignKey:UserID" json:"-"`
	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"-"`
}
