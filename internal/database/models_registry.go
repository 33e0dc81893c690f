package database

import "studyhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Post{},
		&models.PostTag{},
		&models.PostAttachment{},
		&models.Comment{},
		&models.Like{},
		&models.SavedPost{},
		&models.Course{},
		&models.CourseEnrollment{},
		&models.Event{},
		&models.EventAttendee{},
		&models.StudyGroup{},
		&models.StudyGroupMember{},
		&models.DiscussionForum{},
		&models.DiscussionTopic{},
		&models.DiscussionReply{},
		&models.LearningResource{},
		&models.Notification{},
	}
}
