package models

import "time"

// Poll represents a question with a fixed option set, scoped to a building.
// Options are value objects owned by the poll; they are never addressable
// outside it, so the API refers to them by index only.
type Poll struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	User      User         `gorm:"foreignKey:UserID" json:"user"`
	Question  string       `gorm:"type:text;not null" json:"question"`
	Building  string       `gorm:"index;not null" json:"building"`
	Block     string       `gorm:"index;not null" json:"block"`
	Category  Category     `gorm:"not null" json:"category"`
	IsPinned  bool         `gorm:"default:false;index" json:"is_pinned"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Options   []PollOption `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"options"`
	// ViewerVote is the option index the requesting user voted for, if any.
	// Not persisted; computed at query time.
	ViewerVote *int      `gorm:"-" json:"viewer_vote,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Expired reports whether the poll is past its expiry at the given time.
func (p *Poll) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// PollOption is one answer of a poll, ordered by Position.
type PollOption struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PollID   uint   `gorm:"not null;uniqueIndex:idx_poll_options_poll_pos" json:"-"`
	Position int    `gorm:"not null;uniqueIndex:idx_poll_options_poll_pos" json:"position"`
	Text     string `gorm:"not null" json:"text"`
	// VoteCount is not persisted; tallies are derived from poll_votes at read time.
	VoteCount int64 `gorm:"-" json:"vote_count"`
}

// PollVote holds at most one row per (poll, user); re-voting replaces the
// row via an atomic upsert, which is what keeps the single-active-vote
// invariant under concurrent requests.
type PollVote struct {
	PollID      uint      `gorm:"primaryKey;autoIncrement:false" json:"poll_id"`
	UserID      uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	OptionIndex int       `gorm:"not null" json:"option_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
