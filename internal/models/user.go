// Package models defines the domain entities and shared error types.
package models

import "time"

// User is a resident of a building. Building and block place them in the
// community; MutedCategories controls which feed content they see and which
// push notices they receive.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"not null" json:"-"`
	Building        string     `gorm:"index;not null" json:"building"`
	Block           string     `gorm:"not null" json:"block"`
	Floor           string     `json:"floor"`
	RoomNo          string     `json:"room_no"`
	IsAdmin         bool       `gorm:"default:false" json:"is_admin"`
	MutedCategories []Category `gorm:"serializer:json" json:"muted_categories"`
	PushToken       string     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasMuted reports whether the user muted the given category.
func (u *User) HasMuted(category Category) bool {
	for _, c := range u.MutedCategories {
		if c == category {
			return true
		}
	}
	return false
}
