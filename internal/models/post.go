package models

import "time"

// Post is a single blog entry. CreatedAt is assigned on insert and never updated.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	AuthorID   uint      `gorm:"not null;index:idx_posts_author_created,priority:1" json:"author_id"`
	GroupID    *uint     `gorm:"index" json:"group_id,omitempty"`
	Image      string    `gorm:"size:255" json:"image,omitempty"`
	ImageThumb string    `gorm:"size:255" json:"image_thumb,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index;index:idx_posts_author_created,priority:2" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Group  *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// Excerpt returns the first n runes of the text, used for titles and list cards.
func (p Post) Excerpt(n int) string {
	runes := []rune(p.Text)
	if len(runes) <= n {
		return p.Text
	}
	return string(runes[:n])
}

// IsAuthoredBy reports whether userID owns the post.
func (p Post) IsAuthoredBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}
