package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"studyhub/internal/models"
	"studyhub/internal/testutil"
	"studyhub/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func smallPreset() Preset {
	return Preset{
		Name: "test", Seed: 42, Users: 3, PostsPerUser: 2, MaxPostAgeDays: 7,
		CommentsPerPost: 2, LikesPerPost: 2, Courses: 2, EnrollmentsEach: 2,
		Events: 1, AttendeesEach: 2, Groups: 1, MembersEach: 2,
		Forums: 1, TopicsPerForum: 2, RepliesPerTopic: 3, Resources: 4, NotificationsFor: 2,
	}
}

func newSeeder(db *gorm.DB) *Seeder {
	s := NewSeeder(db)
	s.BcryptCost = bcrypt.MinCost
	return s
}

func count(t *testing.T, db *gorm.DB, model any) int {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return int(n)
}

func TestParsePreset(t *testing.T) {
	raw := []byte(`
name: lab
seed: 7
users: 5
posts_per_user: 1
subjects: [Robotics, Statistics]
`)
	p, err := ParsePreset(raw)
	require.NoError(t, err)
	assert.Equal(t, "lab", p.Name)
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, 5, p.Users)
	assert.Equal(t, []string{"Robotics", "Statistics"}, p.Subjects)
	assert.Equal(t, "password123", p.Password)
	assert.Equal(t, 30, p.MaxPostAgeDays)
}

func TestParsePresetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown key", "users: 2\nfollowers: 9\n"},
		{"negative count", "users: 2\ncourses: -1\n"},
		{"content without users", "posts_per_user: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePreset([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestResolvePreset(t *testing.T) {
	p, err := ResolvePreset("Minimal")
	require.NoError(t, err)
	assert.Equal(t, "minimal", p.Name)
	assert.Equal(t, DefaultSubjects, p.Subjects)

	path := filepath.Join(t.TempDir(), "tiny.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: tiny\nusers: 1\n"), 0o600))
	p, err = ResolvePreset(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", p.Name)

	_, err = ResolvePreset("galaxy")
	assert.ErrorContains(t, err, "unknown preset")
	assert.Equal(t, []string{"campus", "crowded", "minimal"}, PresetNames())
}

func TestRunInsertsPresetContent(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := smallPreset()

	sum, err := newSeeder(db).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Users)
	assert.Equal(t, 6, sum.Posts)
	assert.Equal(t, 2, sum.Courses)
	assert.Equal(t, 4, sum.Enrollments)
	assert.Equal(t, 2, sum.Attendees)
	assert.Equal(t, 3, sum.Members)
	assert.Equal(t, 2, sum.Topics)
	assert.Equal(t, 6, sum.Replies)
	assert.Equal(t, 6, sum.Notifications)

	assert.Equal(t, sum.Users, count(t, db, &models.User{}))
	assert.Equal(t, sum.Users, count(t, db, &models.Profile{}))
	assert.Equal(t, sum.Posts, count(t, db, &models.Post{}))
	assert.Equal(t, sum.Comments, count(t, db, &models.Comment{}))
	assert.Equal(t, sum.Likes, count(t, db, &models.Like{}))
	assert.Equal(t, sum.Enrollments, count(t, db, &models.CourseEnrollment{}))
	assert.Equal(t, sum.Members, count(t, db, &models.StudyGroupMember{}))
	assert.Equal(t, sum.Replies, count(t, db, &models.DiscussionReply{}))
	assert.Equal(t, sum.Resources, count(t, db, &models.LearningResource{}))
	assert.Equal(t, sum.Notifications, count(t, db, &models.Notification{}))

	var profiles []models.Profile
	require.NoError(t, db.Find(&profiles).Error)
	for _, pr := range profiles {
		assert.NoError(t, validation.ValidateUsername(pr.Username), pr.Username)
	}

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

	var admins int64
	require.NoError(t, db.Model(&models.StudyGroupMember{}).Where("is_admin = ?", true).Count(&admins).Error)
	assert.Equal(t, int64(1), admins)
}

func TestRunIsReproducible(t *testing.T) {
	usernames := func() []string {
		db := testutil.NewTestDB(t)
		_, err := newSeeder(db).Run(context.Background(), smallPreset())
		require.NoError(t, err)
		var names []string
		require.NoError(t, db.Model(&models.Profile{}).Order("id").Pluck("username", &names).Error)
		return names
	}
	assert.Equal(t, usernames(), usernames())
}

func TestClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := newSeeder(db)
	_, err := s.Run(context.Background(), smallPreset())
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(context.Background()))
	assert.Zero(t, count(t, db, &models.User{}))
	assert.Zero(t, count(t, db, &models.Post{}))
	assert.Zero(t, count(t, db, &models.Notification{}))

	p := smallPreset()
	p.Clean = true
	sum, err := s.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, sum.Users, count(t, db, &models.User{}))
}
