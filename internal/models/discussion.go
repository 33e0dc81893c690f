package models

import "time"

// DiscussionForum groups topics by subject.
type DiscussionForum struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	Creator     *Profile  `gorm:"foreignKey:CreatedBy" json:"-"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Subject     string    `json:"subject"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DiscussionTopic is a thread inside a forum.
type DiscussionTopic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ForumID   uint      `gorm:"not null;index" json:"forum_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *Profile  `gorm:"foreignKey:AuthorID" json:"-"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DiscussionReply is a reply to a topic.
type DiscussionReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TopicID   uint      `gorm:"not null;index" json:"topic_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *Profile  `gorm:"foreignKey:AuthorID" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ForumView is a forum with its creator and topic count.
type ForumView struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Subject       string    `json:"subject"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     uint      `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
	TopicCount    int       `json:"topic_count"`
}

// TopicView is a topic with its author and reply count.
type TopicView struct {
	ID           uint      `json:"id"`
	ForumID      uint      `json:"forum_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	ReplyCount   int       `json:"reply_count"`
}

// ReplyView is a reply with its author.
type ReplyView struct {
	ID           uint      `json:"id"`
	TopicID      uint      `json:"topic_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
}
