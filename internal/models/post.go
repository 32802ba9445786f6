// Package models contains data structures for the forum's domain models.
package models

import (
	"time"
)

// PostTitleMaxLength is the column size of posts.title.
const PostTitleMaxLength = 100

// Post represents a forum post. Active is the moderation switch: inactive
// posts stay reachable by id but are hidden from listings.
type Post struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"size:100;not null" json:"title"`
	Text      string       `gorm:"type:text;not null" json:"text"`
	AuthorID  uint         `gorm:"not null;index" json:"author_id"`
	Author    User         `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
	Comments  []Comment    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Reports   []PostReport `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// OwnerID returns the author of the post.
func (p *Post) OwnerID() uint {
	if p == nil {
		return 0
	}
	return p.AuthorID
}
