// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"time"
)

// AttachmentType is the kind of file attached to a post.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentDoc   AttachmentType = "doc"
)

// Valid reports whether t is one of the known attachment kinds.
func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentImage, AttachmentPDF, AttachmentDoc:
		return true
	}
	return false
}

// Post represents a post in the feed.
type Post struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Title       string           `gorm:"not null" json:"title"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	AuthorID    uint             `gorm:"not null;index" json:"author_id"`
	Author      *Profile         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags        []PostTag        `gorm:"foreignKey:PostID" json:"-"`
	Attachments []PostAttachment `gorm:"foreignKey:PostID" json:"-"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PostTag associates a tag string with a post.
type PostTag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"not null;index" json:"post_id"`
	Tag    string `gorm:"not null" json:"tag"`
}

// PostAttachment is an immutable file reference attached to a post at creation time.
type PostAttachment struct {
	ID     uint           `gorm:"primaryKey" json:"id"`
	PostID uint           `gorm:"not null;index" json:"post_id"`
	Type   AttachmentType `gorm:"type:varchar(10);not null" json:"type"`
	Name   string         `gorm:"not null" json:"name"`
	URL    string         `gorm:"not null" json:"url"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *Profile  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like is the presence of a (post, user) like.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPost is the presence of a (post, user) bookmark.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_posts_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_posts_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentView is an attachment as returned inside a post aggregate.
type AttachmentView struct {
	ID   uint           `json:"id"`
	Name string         `json:"name"`
	URL  string         `json:"url"`
	Type AttachmentType `json:"type"`
}

// PostDetails is the denormalized post aggregate returned by get_posts and get_post_details.
type PostDetails struct {
	ID               uint             `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	AuthorID         uint             `json:"author_id"`
	AuthorName       string           `json:"author_name"`
	AuthorAvatar     string           `json:"author_avatar"`
	AuthorDepartment string           `json:"author_department"`
	Tags             []string         `gorm:"-" json:"tags"`
	Attachments      []AttachmentView `gorm:"-" json:"attachments"`
	LikeCount        int              `json:"like_count"`
	CommentCount     int              `json:"comment_count"`
	Liked            bool             `json:"liked"`
	Saved            bool             `json:"saved"`
	Comments         []CommentView    `gorm:"-" json:"comments,omitempty"`
}

// Clone returns a copy of p that shares no slices with it.
func (p PostDetails) Clone() PostDetails {
	p.Tags = slices.Clone(p.Tags)
	p.Attachments = slices.Clone(p.Attachments)
	p.Comments = slices.Clone(p.Comments)
	return p
}

// CommentView is a comment joined with its author's display fields.
type CommentView struct {
	ID               uint      `json:"id"`
	PostID           uint      `json:"post_id"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	AuthorID         uint      `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	AuthorAvatar     string    `json:"author_avatar"`
	AuthorDepartment string    `json:"author_department"`
	Likes            int       `json:"likes"`
}

// NewCommentView flattens a comment with a preloaded author.
func NewCommentView(c *Comment) CommentView {
	v := CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		AuthorID:  c.AuthorID,
	}
	if c.Author != nil {
		v.AuthorName = c.Author.FullName
		v.AuthorAvatar = c.Author.AvatarURL
		v.AuthorDepartment = c.Author.Department
	} else {
		v.AuthorName = UnknownUser
	}
	return v
}
