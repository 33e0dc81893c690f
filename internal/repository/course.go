package repository

import (
	"context"
	"fmt"

	"studyhub/internal/models"

	"gorm.io/gorm"
)

// CourseRepository defines the interface for course and enrollment operations
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	// GetAll returns the catalog, newest first.
	GetAll(ctx context.Context) ([]models.CourseView, error)
	// GetUserCourses returns the courses userID is enrolled in, most recent enrollment first.
	GetUserCourses(ctx context.Context, userID uint) ([]models.CourseView, error)
	Enroll(ctx context.Context, courseID, userID uint) error
	Unenroll(ctx context.Context, courseID, userID uint) error
	FindEnrollment(ctx context.Context, courseID, userID uint) (*models.CourseEnrollment, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor").Create(course).Error
}

const courseColumns = "courses.id, courses.title, courses.description, courses.subject, courses.cover_image, " +
	"courses.created_at, courses.instructor_id, "

func (r *courseRepository) baseQuery(ctx context.Context, extra string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("courses").
		Select(courseColumns + authorColumns("instructor", models.UnknownInstructor) + extra).
		Joins("LEFT JOIN profiles ON profiles.id = courses.instructor_id")
}

func (r *courseRepository) GetAll(ctx context.Context) ([]models.CourseView, error) {
	courses := []models.CourseView{}
	err := r.baseQuery(ctx, "").
		Order("courses.created_at DESC, courses.id DESC").
		Scan(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetUserCourses(ctx context.Context, userID uint) ([]models.CourseView, error) {
	courses := []models.CourseView{}
	err := r.baseQuery(ctx, ", course_enrollments.created_at AS enrolled_at").
		Joins("JOIN course_enrollments ON course_enrollments.course_id = courses.id").
		Where("course_enrollments.user_id = ?", userID).
		Order("course_enrollments.created_at DESC, courses.id DESC").
		Scan(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Enroll inserts the (course, user) pair. A repeated enrollment fails with a duplicate-key error.
func (r *courseRepository) Enroll(ctx context.Context, courseID, userID uint) error {
	return r.db.WithContext(ctx).Create(&models.CourseEnrollment{CourseID: courseID, UserID: userID}).Error
}

func (r *courseRepository) Unenroll(ctx context.Context, courseID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.CourseEnrollment{}).Error
}

func (r *courseRepository) FindEnrollment(ctx context.Context, courseID, userID uint) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error
	if err != nil {
		return nil, notFound(err, "Enrollment", fmt.Sprintf("%d/%d", courseID, userID))
	}
	return &enrollment, nil
}
