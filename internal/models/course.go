package models

import "time"

// Course is a catalog entry taught by an instructor.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InstructorID uint      `gorm:"not null;index" json:"instructor_id"`
	Instructor   *Profile  `gorm:"foreignKey:InstructorID" json:"-"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Subject      string    `gorm:"index" json:"subject"`
	CoverImage   string    `json:"cover_image"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CourseEnrollment is the (course, user) membership pair.
type CourseEnrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollments_course_user" json:"course_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_course_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CourseView is a course joined with its instructor's display fields.
type CourseView struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Subject          string     `json:"subject"`
	CoverImage       string     `json:"cover_image"`
	CreatedAt        time.Time  `json:"created_at"`
	InstructorID     uint       `json:"instructor_id"`
	InstructorName   string     `json:"instructor_name"`
	InstructorAvatar string     `json:"instructor_avatar"`
	EnrolledAt       *time.Time `json:"enrolled_at,omitempty"`
}
