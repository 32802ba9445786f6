package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Profile   *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// Profile holds per-user forum standing. It shares its primary key with User.
type Profile struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
	Points       int       `gorm:"not null;default:0" json:"points"`
	LegionMember bool      `gorm:"not null;default:false" json:"legion_member"`
	PixelMember  bool      `gorm:"not null;default:false" json:"pixel_member"`
	Online       bool      `gorm:"not null;default:false" json:"online"`
	Banned       bool      `gorm:"not null;default:false" json:"banned"`
}
