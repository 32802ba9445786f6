package models

import (
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Text      string          `gorm:"type:text;not null" json:"text"`
	AuthorID  uint            `gorm:"not null;index" json:"author_id"`
	Author    User            `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	PostID    uint            `gorm:"not null;index" json:"post_id"`
	Post      *Post           `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Active    bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	Reports   []CommentReport `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}

// OwnerID returns the author of the comment.
func (c *Comment) OwnerID() uint {
	if c == nil {
		return 0
	}
	return c.AuthorID
}
