package view

import (
	"context"
	"time"

	"studyhub/internal/models"
)

// CourseAPI is the slice of the course façade the courses page needs.
type CourseAPI interface {
	GetAllCourses(ctx context.Context) ([]models.CourseView, error)
	GetUserCourses(ctx context.Context, userID uint) ([]models.CourseView, error)
	EnrollInCourse(ctx context.Context, courseID, userID uint) error
	UnenrollFromCourse(ctx context.Context, courseID, userID uint) error
}

const EmptyCourses = "No courses yet"

// CoursesView pairs the catalog with the viewer's enrollments.
type CoursesView struct {
	Catalog *Collection[models.CourseView]
	Mine    *Collection[models.CourseView]

	api    CourseAPI
	viewer Viewer
	now    func() time.Time
}

func NewCoursesView(api CourseAPI, viewer Viewer) *CoursesView {
	return &CoursesView{
		Catalog: NewCollection("all courses", api.GetAllCourses),
		Mine: NewCollection("courses", func(ctx context.Context) ([]models.CourseView, error) {
			return api.GetUserCourses(ctx, viewer.UserID())
		}),
		api:    api,
		viewer: viewer,
		now:    time.Now,
	}
}

// Load fetches both collections.
func (v *CoursesView) Load(ctx context.Context) {
	_ = v.Mine.Load(ctx)
	_ = v.Catalog.Load(ctx)
}

func byCourseID(id uint) func(models.CourseView) bool {
	return func(c models.CourseView) bool { return c.ID == id }
}

// Enroll copies the catalog entry into Mine once the enrollment is confirmed. The catalog is untouched.
func (v *CoursesView) Enroll(ctx context.Context, courseID uint) error {
	if err := v.api.EnrollInCourse(ctx, courseID, v.viewer.UserID()); err != nil {
		logFailure(ctx, "Error enrolling in course", err, "course_id", courseID)
		return err
	}
	if _, already := v.Mine.Find(byCourseID(courseID)); already {
		return nil
	}
	course, ok := v.Catalog.Find(byCourseID(courseID))
	if !ok {
		return nil
	}
	enrolledAt := v.now()
	course.EnrolledAt = &enrolledAt
	v.Mine.Append(course)
	return nil
}

// Unenroll drops the course from Mine once confirmed.
func (v *CoursesView) Unenroll(ctx context.Context, courseID uint) error {
	if err := v.api.UnenrollFromCourse(ctx, courseID, v.viewer.UserID()); err != nil {
		logFailure(ctx, "Error unenrolling from course", err, "course_id", courseID)
		return err
	}
	v.Mine.Remove(byCourseID(courseID))
	return nil
}

// EmptyMessage is shown when the viewer has no enrollments.
func (v *CoursesView) EmptyMessage() string {
	if v.Mine.Empty() {
		return EmptyCourses
	}
	return ""
}
