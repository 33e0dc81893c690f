package models

import "time"

// StudyGroup is a user-created study circle.
type StudyGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `json:"subject"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudyGroupMember is the (group, user) membership pair.
type StudyGroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_members_group_user" json:"group_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_members_group_user;index" json:"user_id"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// GroupView is a study group with its member count and the viewer's membership.
type GroupView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
	IsMember    bool      `json:"is_member"`
}
