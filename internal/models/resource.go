package models

import "time"

// LearningResource is a shared link or file.
type LearningResource struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AuthorID     uint      `gorm:"not null;index" json:"author_id"`
	Author       *Profile  `gorm:"foreignKey:AuthorID" json:"-"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ResourceType string    `gorm:"not null" json:"resource_type"`
	URL          string    `json:"url"`
	FilePath     string    `json:"file_path"`
	Subject      string    `gorm:"index" json:"subject"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ResourceView is a learning resource with its author name.
type ResourceView struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ResourceType string    `json:"resource_type"`
	URL          string    `json:"url"`
	FilePath     string    `json:"file_path"`
	Subject      string    `json:"subject"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
}
