package service

import (
	"context"
	"testing"
	"time"

	"studyhub/internal/cache"
	"studyhub/internal/models"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseService_Enrollment(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCourseService(repository.NewCourseRepository(db))
	ctx := context.Background()
	prof := testutil.CreateProfile(t, db, "turing", "Alan Turing")
	student := testutil.CreateProfile(t, db, "ada", "Ada Lovelace")

	course, err := svc.CreateCourse(ctx, prof.ID, CourseInput{Title: "Computability", Subject: "CS"})
	require.NoError(t, err)

	enrolled, err := svc.IsEnrolledInCourse(ctx, course.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	require.NoError(t, svc.EnrollInCourse(ctx, course.ID, student.ID))
	require.NoError(t, svc.EnrollInCourse(ctx, course.ID, student.ID), "enrolling twice succeeds")

	var rows int64
	require.NoError(t, db.Model(&models.CourseEnrollment{}).Where("course_id = ?", course.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	mine, err := svc.GetUserCourses(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alan Turing", mine[0].InstructorName)
	assert.NotNil(t, mine[0].EnrolledAt)

	require.NoError(t, svc.UnenrollFromCourse(ctx, course.ID, student.ID))
	enrolled, err = svc.IsEnrolledInCourse(ctx, course.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)
}

func TestCourseService_RequiresUser(t *testing.T) {
	svc := NewCourseService(repository.NewCourseRepository(testutil.NewTestDB(t)))
	ctx := context.Background()

	courses, err := svc.GetUserCourses(ctx, 0)
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))
	assert.NotNil(t, courses)
	assert.Empty(t, courses)

	assert.True(t, models.HasCode(svc.EnrollInCourse(ctx, 1, 0), models.CodeNotAuthenticated))

	_, err = svc.CreateCourse(ctx, 1, CourseInput{})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestCourseService_CatalogCacheInvalidatedOnCreate(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewTestDB(t)
	svc := NewCourseService(repository.NewCourseRepository(db))
	ctx := context.Background()
	prof := testutil.CreateProfile(t, db, "hopper", "Grace Hopper")

	all, err := svc.GetAllCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.True(t, mr.Exists(cache.CourseCatalogKey))

	_, err = svc.CreateCourse(ctx, prof.ID, CourseInput{Title: "Compilers"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.CourseCatalogKey))

	all, err = svc.GetAllCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Compilers", all[0].Title)
}

func TestEventService_Attendance(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewEventService(repository.NewEventRepository(db))
	ctx := context.Background()
	organizer := testutil.CreateProfile(t, db, "organizer", "Olive Organizer")
	guest := testutil.CreateProfile(t, db, "guest", "Gus Guest")

	later, err := svc.CreateEvent(ctx, organizer.ID, EventInput{Title: "Hackathon", EventDate: time.Now().Add(72 * time.Hour)})
	require.NoError(t, err)
	sooner, err := svc.CreateEvent(ctx, organizer.ID, EventInput{Title: "Career fair", EventDate: time.Now().Add(24 * time.Hour)})
	require.NoError(t, err)

	all, err := svc.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, sooner.ID, all[0].ID)
	for _, e := range all {
		assert.Equal(t, models.StatusNotAttending, e.Status)
		assert.Equal(t, "Olive Organizer", e.OrganizerName)
	}

	status, err := svc.GetEventAttendanceStatus(ctx, later.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotAttending, status)

	require.NoError(t, svc.UpdateEventAttendance(ctx, later.ID, guest.ID, models.StatusInterested))
	require.NoError(t, svc.UpdateEventAttendance(ctx, later.ID, guest.ID, models.StatusAttending))
	require.NoError(t, svc.UpdateEventAttendance(ctx, later.ID, guest.ID, models.StatusAttending))

	var rows int64
	require.NoError(t, db.Model(&models.EventAttendee{}).Where("event_id = ? AND user_id = ?", later.ID, guest.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	status, err = svc.GetEventAttendanceStatus(ctx, later.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAttending, status)

	mine, err := svc.GetUserEvents(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusAttending, mine[0].Status)
}

func TestEventService_CachedCalendarReportsNotAttending(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewTestDB(t)
	svc := NewEventService(repository.NewEventRepository(db))
	ctx := context.Background()
	organizer := testutil.CreateProfile(t, db, "planner", "Pat Planner")
	guest := testutil.CreateProfile(t, db, "visitor", "Val Visitor")

	ev, err := svc.CreateEvent(ctx, organizer.ID, EventInput{Title: "Study jam", EventDate: time.Now().Add(48 * time.Hour)})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateEventAttendance(ctx, ev.ID, guest.ID, models.StatusAttending))

	all, err := svc.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusNotAttending, all[0].Status)

	cached, err := mr.Get(cache.EventCalendarKey)
	require.NoError(t, err)
	assert.Contains(t, cached, `"status":"not_attending"`)

	// An entry written without a status is still served with the default.
	require.NoError(t, mr.Set(cache.EventCalendarKey, `[{"id":99,"title":"Old entry"}]`))
	all, err = svc.GetAllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint(99), all[0].ID)
	assert.Equal(t, models.StatusNotAttending, all[0].Status)
}

func TestEventService_RejectsUnknownStatus(t *testing.T) {
	svc := NewEventService(repository.NewEventRepository(testutil.NewTestDB(t)))

	err := svc.UpdateEventAttendance(context.Background(), 1, 2, "maybe")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestGroupService_CreateAndJoin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewGroupService(repository.NewGroupRepository(db))
	ctx := context.Background()
	founder := testutil.CreateProfile(t, db, "founder", "Fay Founder")
	joiner := testutil.CreateProfile(t, db, "joiner", "Joe Joiner")

	group, err := svc.CreateGroup(ctx, founder.ID, GroupInput{Name: " Distributed Systems ", Subject: "CS"})
	require.NoError(t, err)
	assert.Equal(t, "Distributed Systems", group.Name)
	assert.Equal(t, 1, group.MemberCount)
	assert.True(t, group.IsMember)

	joined, err := svc.JoinGroup(ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, joined.MemberCount)
	assert.True(t, joined.IsMember)

	again, err := svc.JoinGroup(ctx, group.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.MemberCount)

	groups, err := svc.GetStudyGroups(ctx, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.False(t, groups[0].IsMember)
}

func TestGroupService_JoinMissingGroup(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewGroupService(repository.NewGroupRepository(db))
	user := testutil.CreateProfile(t, db, "lost", "Lost Person")

	group, err := svc.JoinGroup(context.Background(), 404, user.ID)
	assert.Nil(t, group)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
