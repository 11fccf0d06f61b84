package models

import "time"

// Category is the content category enum shared by posts and polls.
type Category string

// Known categories.
const (
	CategoryMaintenance Category = "Maintenance"
	CategoryBuySell     Category = "Buy/Sell"
	CategoryLostFound   Category = "Lost & Found"
	CategoryEvents      Category = "Events"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryMaintenance,
	CategoryBuySell,
	CategoryLostFound,
	CategoryEvents,
	CategoryOther,
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Post represents an announcement in the building feed.
// Building is denormalized from the author at creation so historical content
// stays scoped even if the author later relocates.
type Post struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"foreignKey:UserID" json:"user"`
	Building string   `gorm:"index;not null" json:"building"`
	Block    string   `gorm:"index;not null" json:"block"`
	Category Category `gorm:"not null" json:"category"`
	Text     string   `gorm:"type:text;not null" json:"text"`
	Images   []string `gorm:"serializer:json" json:"images"`
	IsPinned bool     `gorm:"default:false;index" json:"is_pinned"`
	Reports  []Report `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"reports,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Report records one user's abuse report on a post. A user may report a post
// at most once; the composite unique index enforces it.
type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reports_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reports_post_user" json:"user_id"`
	Reason    string    `gorm:"not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
