// Package seed fills a database with demo data for development and tests.
package seed

import (
	"fmt"
	"strings"
	"time"

	"studyhub/internal/models"
	"studyhub/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var resourceTypes = []string{"article", "video", "book", "course", "slides", "notes"}

// Factory builds and persists domain records with fake content.
// The same seed yields the same content.
type Factory struct {
	db           *gorm.DB
	fake         *gofakeit.Faker
	passwordHash string
	subjects     []string
	now          time.Time
	seq          int
}

// NewFactory creates a Factory writing to db. passwordHash is stored for every user it creates.
func NewFactory(db *gorm.DB, seed int64, passwordHash string, subjects []string) *Factory {
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}
	return &Factory{
		db:           db,
		fake:         gofakeit.New(seed),
		passwordHash: passwordHash,
		subjects:     subjects,
		now:          time.Now(),
	}
}

func (f *Factory) subject() string {
	return f.fake.RandomString(f.subjects)
}

// pastTime returns a time within the last maxDays days.
func (f *Factory) pastTime(maxDays int) time.Time {
	return f.now.Add(-time.Duration(f.fake.Number(0, maxDays*24*60)) * time.Minute)
}

func (f *Factory) title(words int) string {
	return strings.TrimSuffix(f.fake.Sentence(words), ".")
}

// CreateUser inserts a user and its profile.
func (f *Factory) CreateUser(overrides ...func(*models.User, *models.Profile)) (*models.Profile, error) {
	f.seq++
	first, last := f.fake.FirstName(), f.fake.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s%d@studyhub.test", first, last, f.seq))
	username := validation.UsernameFromEmail(first + last + "@")
	if len(username) > 18 {
		username = username[:18]
	}
	username = fmt.Sprintf("%s%d", username, f.seq)

	user := &models.User{Email: email, Password: f.passwordHash}
	profile := &models.Profile{
		Username:   username,
		FullName:   first + " " + last,
		Department: f.subject(),
		Bio:        f.fake.Sentence(12),
		AvatarURL:  "https://i.pravatar.cc/150?u=" + f.fake.UUID(),
	}
	for _, override := range overrides {
		override(user, profile)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.ID = user.ID
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return profile, nil
}

// CreatePost inserts a post with a few tags, backdated up to maxDays.
func (f *Factory) CreatePost(authorID uint, maxDays int) (*models.Post, error) {
	post := &models.Post{
		Title:     f.title(6),
		Content:   f.fake.Paragraph(1, 4, 12, "\n"),
		AuthorID:  authorID,
		CreatedAt: f.pastTime(maxDays),
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	seen := map[string]bool{}
	var tags []models.PostTag
	for i := f.fake.Number(0, 3); i > 0; i-- {
		tag := strings.ToLower(f.fake.RandomString(append([]string{f.fake.Noun()}, f.subjects...)))
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, models.PostTag{PostID: post.ID, Tag: tag})
	}
	if len(tags) > 0 {
		if err := f.db.Create(&tags).Error; err != nil {
			return nil, fmt.Errorf("create post tags: %w", err)
		}
	}
	return post, nil
}

// CreateComment inserts a comment on postID dated after the post.
func (f *Factory) CreateComment(post *models.Post, authorID uint) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		AuthorID:  authorID,
		Content:   f.fake.Sentence(f.fake.Number(4, 18)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.fake.Number(1, 600)) * time.Minute),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Like records userID's like on postID.
func (f *Factory) Like(postID, userID uint) error {
	if err := f.db.Create(&models.Like{PostID: postID, UserID: userID}).Error; err != nil {
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

// CreateCourse inserts a course taught by instructorID.
func (f *Factory) CreateCourse(instructorID uint) (*models.Course, error) {
	subject := f.subject()
	course := &models.Course{
		InstructorID: instructorID,
		Title:        fmt.Sprintf("%s: %s", subject, f.title(3)),
		Description:  f.fake.Paragraph(1, 3, 10, " "),
		Subject:      subject,
		CoverImage:   fmt.Sprintf("https://picsum.photos/seed/%s/800/400", f.fake.UUID()),
		CreatedAt:    f.pastTime(120),
	}
	if err := f.db.Create(course).Error; err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// Enroll adds userID to courseID.
func (f *Factory) Enroll(courseID, userID uint) error {
	if err := f.db.Create(&models.CourseEnrollment{CourseID: courseID, UserID: userID}).Error; err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// CreateEvent inserts an event between a week ago and two months ahead.
func (f *Factory) CreateEvent(organizerID uint) (*models.Event, error) {
	event := &models.Event{
		OrganizerID: organizerID,
		Title:       f.title(4),
		Description: f.fake.Paragraph(1, 2, 10, " "),
		EventDate:   f.fake.DateRange(f.now.AddDate(0, 0, -7), f.now.AddDate(0, 2, 0)),
		Location:    fmt.Sprintf("%s Hall, Room %d", f.fake.LastName(), f.fake.Number(100, 499)),
	}
	if err := f.db.Create(event).Error; err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Attend records userID's attendance status for eventID.
func (f *Factory) Attend(eventID, userID uint) error {
	status := models.StatusAttending
	if f.fake.Bool() {
		status = models.StatusInterested
	}
	if err := f.db.Create(&models.EventAttendee{EventID: eventID, UserID: userID, Status: status}).Error; err != nil {
		return fmt.Errorf("create attendee: %w", err)
	}
	return nil
}

// CreateGroup inserts a study group with its creator as admin member.
func (f *Factory) CreateGroup(creatorID uint) (*models.StudyGroup, error) {
	subject := f.subject()
	group := &models.StudyGroup{
		CreatedBy:   creatorID,
		Name:        fmt.Sprintf("%s %s", subject, f.fake.RandomString([]string{"Circle", "Squad", "Lab", "Study Crew", "Reading Group"})),
		Description: f.fake.Sentence(15),
		Subject:     subject,
		CreatedAt:   f.pastTime(90),
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Create(&models.StudyGroupMember{GroupID: group.ID, UserID: creatorID, IsAdmin: true}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

// JoinGroup adds userID to groupID as a regular member.
func (f *Factory) JoinGroup(groupID, userID uint) error {
	if err := f.db.Create(&models.StudyGroupMember{GroupID: groupID, UserID: userID}).Error; err != nil {
		return fmt.Errorf("create group member: %w", err)
	}
	return nil
}

// CreateForum inserts a discussion forum.
func (f *Factory) CreateForum(creatorID uint) (*models.DiscussionForum, error) {
	subject := f.subject()
	forum := &models.DiscussionForum{
		CreatedBy:   creatorID,
		Title:       subject + " discussion",
		Description: f.fake.Sentence(12),
		Subject:     subject,
		CreatedAt:   f.pastTime(180),
	}
	if err := f.db.Create(forum).Error; err != nil {
		return nil, fmt.Errorf("create forum: %w", err)
	}
	return forum, nil
}

// CreateTopic inserts a topic in forumID.
func (f *Factory) CreateTopic(forumID, authorID uint) (*models.DiscussionTopic, error) {
	topic := &models.DiscussionTopic{
		ForumID:   forumID,
		AuthorID:  authorID,
		Title:     f.title(7) + "?",
		Content:   f.fake.Paragraph(1, 3, 12, "\n"),
		CreatedAt: f.pastTime(60),
	}
	if err := f.db.Create(topic).Error; err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	return topic, nil
}

// CreateReply inserts a reply to topic dated after it.
func (f *Factory) CreateReply(topic *models.DiscussionTopic, authorID uint) (*models.DiscussionReply, error) {
	reply := &models.DiscussionReply{
		TopicID:   topic.ID,
		AuthorID:  authorID,
		Content:   f.fake.Paragraph(1, 2, 10, " "),
		CreatedAt: topic.CreatedAt.Add(time.Duration(f.fake.Number(5, 2000)) * time.Minute),
	}
	if err := f.db.Create(reply).Error; err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

// CreateResource inserts a learning resource pointing at a fake URL.
func (f *Factory) CreateResource(authorID uint) (*models.LearningResource, error) {
	resource := &models.LearningResource{
		AuthorID:     authorID,
		Title:        f.title(5),
		Description:  f.fake.Sentence(14),
		ResourceType: f.fake.RandomString(resourceTypes),
		URL:          f.fake.URL(),
		Subject:      f.subject(),
		CreatedAt:    f.pastTime(150),
	}
	if err := f.db.Create(resource).Error; err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return resource, nil
}

// CreateNotification inserts an unread notification for userID.
func (f *Factory) CreateNotification(userID uint, kind, content string, relatedID *uint) error {
	n := &models.Notification{UserID: userID, Type: kind, Content: content, RelatedID: relatedID}
	if err := f.db.Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// Pick returns up to n distinct elements of ids other than exclude, in random order.
func (f *Factory) Pick(ids []uint, n int, exclude uint) []uint {
	pool := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			pool = append(pool, id)
		}
	}
	f.fake.ShuffleAnySlice(pool)
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}

// Intn returns a number in [lo, hi].
func (f *Factory) Intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return f.fake.Number(lo, hi)
}
