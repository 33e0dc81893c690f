package repository

import (
	"context"

	"studyhub/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for user notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListForUser returns a user's notifications, newest first.
	ListForUser(ctx context.Context, userID uint) ([]models.NotificationView, error)
	// MarkAsRead marks one of userID's notifications read. Unknown ids are ignored.
	MarkAsRead(ctx context.Context, id, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uint) ([]models.NotificationView, error) {
	out := []models.NotificationView{}
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("id, content, type, is_read, related_id, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
