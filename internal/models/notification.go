package models

import "time"

// Notification is a message addressed to one user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Type      string    `gorm:"not null" json:"type"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	RelatedID *uint     `json:"related_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationEvent   = "event"
	NotificationGroup   = "group"
)

// NotificationView is the shape returned by get_user_notifications.
type NotificationView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	RelatedID *uint     `json:"related_id"`
	CreatedAt time.Time `json:"created_at"`
}
