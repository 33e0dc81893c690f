package service

import (
	"context"

	"studyhub/internal/cache"
	"studyhub/internal/featureflags"
	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
)

// Publisher pushes notification events to connected clients.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
	PublishUnreadCount(ctx context.Context, userID uint, count int64) error
}

// Notifier is the part of NotificationService other services depend on.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) error
}

type NotificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	flags     *featureflags.Manager
}

// NotifyInput describes a notification to store and push.
type NotifyInput struct {
	UserID    uint
	Type      string
	Content   string
	RelatedID *uint
	// Flag, when set, must be enabled for UserID or the notification is skipped.
	Flag string
}

func NewNotificationService(
	repo repository.NotificationRepository,
	publisher Publisher,
	flags *featureflags.Manager,
) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, flags: flags}
}

// GetUserNotifications returns userID's notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uint) (_ []models.NotificationView, err error) {
	defer observability.TrackOperation("get_user_notifications")(&err)
	if err := requireUser(userID); err != nil {
		return []models.NotificationView{}, err
	}
	out, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching notifications", err)
	}
	return out, nil
}

func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, id, userID uint) (err error) {
	defer observability.TrackOperation("mark_notification_read")(&err)
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		return fail(ctx, "Error marking notification as read", err)
	}
	s.unreadChanged(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllNotificationsAsRead(ctx context.Context, userID uint) (err error) {
	defer observability.TrackOperation("mark_all_notifications_read")(&err)
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return fail(ctx, "Error marking all notifications as read", err)
	}
	s.unreadChanged(ctx, userID)
	return nil
}

// GetUnreadNotificationCount serves the count from Redis when cached.
func (s *NotificationService) GetUnreadNotificationCount(ctx context.Context, userID uint) (_ int64, err error) {
	defer observability.TrackOperation("get_unread_notification_count")(&err)
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	var count int64
	err = cache.Aside(ctx, cache.UnreadCountKey(userID), &count, cache.UnreadCountTTL, func() error {
		n, err := s.repo.CountUnread(ctx, userID)
		count = n
		return err
	})
	if err != nil {
		return 0, fail(ctx, "Error fetching unread notification count", err)
	}
	return count, nil
}

// Notify stores a notification for in.UserID and pushes it to their open streams.
// Publishing is best-effort.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (err error) {
	defer observability.TrackOperation("notify")(&err)
	if in.UserID == 0 || in.Content == "" {
		return models.NewValidationError("Notification recipient and content are required")
	}
	if in.Flag != "" && !s.flags.Enabled(in.Flag, in.UserID) {
		return nil
	}

	n := &models.Notification{
		UserID:    in.UserID,
		Type:      in.Type,
		Content:   in.Content,
		RelatedID: in.RelatedID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fail(ctx, "Error creating notification", err)
	}
	cache.InvalidateUnreadCount(ctx, in.UserID)

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			warn(ctx, "Error publishing notification", err, "user_id", in.UserID)
		}
	}
	return nil
}

func (s *NotificationService) unreadChanged(ctx context.Context, userID uint) {
	cache.InvalidateUnreadCount(ctx, userID)
	if s.publisher == nil {
		return
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		warn(ctx, "Error counting unread notifications", err, "user_id", userID)
		return
	}
	if err := s.publisher.PublishUnreadCount(ctx, userID, count); err != nil {
		warn(ctx, "Error publishing unread count", err, "user_id", userID)
	}
}
