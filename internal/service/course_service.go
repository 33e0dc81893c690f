package service

import (
	"context"
	"strings"

	"studyhub/internal/cache"
	"studyhub/internal/database"
	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

type CourseService struct {
	repo repository.CourseRepository
}

// CourseInput is the payload for creating a course.
type CourseInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Subject     string `json:"subject" validate:"max=100"`
	CoverImage  string `json:"cover_image" validate:"omitempty,max=2048"`
}

func NewCourseService(repo repository.CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

// GetUserCourses returns the courses userID is enrolled in.
func (s *CourseService) GetUserCourses(ctx context.Context, userID uint) (_ []models.CourseView, err error) {
	defer observability.TrackOperation("get_user_courses")(&err)
	if err := requireUser(userID); err != nil {
		return []models.CourseView{}, err
	}
	out, err := s.repo.GetUserCourses(ctx, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching courses", err)
	}
	return out, nil
}

// GetAllCourses returns the catalog, newest first. The catalog is cached in Redis.
func (s *CourseService) GetAllCourses(ctx context.Context) (_ []models.CourseView, err error) {
	defer observability.TrackOperation("get_all_courses")(&err)
	var out []models.CourseView
	err = cache.Aside(ctx, cache.CourseCatalogKey, &out, cache.CourseCatalogTTL, func() error {
		var err error
		out, err = s.repo.GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, fail(ctx, "Error fetching all courses", err)
	}
	if out == nil {
		out = []models.CourseView{}
	}
	return out, nil
}

// CreateCourse adds a course taught by instructorID.
func (s *CourseService) CreateCourse(ctx context.Context, instructorID uint, in CourseInput) (_ *models.Course, err error) {
	defer observability.TrackOperation("create_course")(&err)
	if err := requireUser(instructorID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	course := &models.Course{
		InstructorID: instructorID,
		Title:        in.Title,
		Description:  in.Description,
		Subject:      in.Subject,
		CoverImage:   in.CoverImage,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fail(ctx, "Error creating course", err)
	}
	cache.Invalidate(ctx, cache.CourseCatalogKey)
	return course, nil
}

// EnrollInCourse enrolls userID. Enrolling twice is not an error.
func (s *CourseService) EnrollInCourse(ctx context.Context, courseID, userID uint) (err error) {
	defer observability.TrackOperation("enroll_in_course")(&err)
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Enroll(ctx, courseID, userID); err != nil {
		if database.IsDuplicateKey(err) {
			return nil
		}
		return fail(ctx, "Error enrolling in course", err)
	}
	return nil
}

func (s *CourseService) UnenrollFromCourse(ctx context.Context, courseID, userID uint) (err error) {
	defer observability.TrackOperation("unenroll_from_course")(&err)
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Unenroll(ctx, courseID, userID); err != nil {
		return fail(ctx, "Error unenrolling from course", err)
	}
	return nil
}

// IsEnrolledInCourse reports whether userID is enrolled; a missing enrollment is (false, nil).
func (s *CourseService) IsEnrolledInCourse(ctx context.Context, courseID, userID uint) (_ bool, err error) {
	defer observability.TrackOperation("is_enrolled_in_course")(&err)
	if err := requireUser(userID); err != nil {
		return false, err
	}
	if _, err := s.repo.FindEnrollment(ctx, courseID, userID); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return false, nil
		}
		return false, fail(ctx, "Error checking enrollment status", err)
	}
	return true, nil
}
