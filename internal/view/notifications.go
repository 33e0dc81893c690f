package view

import (
	"context"
	"sync"

	"studyhub/internal/models"
)

// NotificationAPI is the slice of the notification façade the notifications page needs.
type NotificationAPI interface {
	GetUserNotifications(ctx context.Context, userID uint) ([]models.NotificationView, error)
	GetUnreadNotificationCount(ctx context.Context, userID uint) (int64, error)
	MarkNotificationAsRead(ctx context.Context, id, userID uint) error
	MarkAllNotificationsAsRead(ctx context.Context, userID uint) error
}

const EmptyNotifications = "No notifications yet"

// NotificationsView lists the viewer's notifications and tracks the unread badge.
type NotificationsView struct {
	*Collection[models.NotificationView]
	api    NotificationAPI
	viewer Viewer

	mu     sync.Mutex
	unread int64
}

func NewNotificationsView(api NotificationAPI, viewer Viewer) *NotificationsView {
	v := &NotificationsView{api: api, viewer: viewer}
	v.Collection = NewCollection("notifications", func(ctx context.Context) ([]models.NotificationView, error) {
		return api.GetUserNotifications(ctx, viewer.UserID())
	})
	return v
}

// Load fetches the list and the unread count.
func (v *NotificationsView) Load(ctx context.Context) error {
	err := v.Collection.Load(ctx)
	count, cerr := v.api.GetUnreadNotificationCount(ctx, v.viewer.UserID())
	if cerr != nil {
		logFailure(ctx, "Error fetching unread notification count", cerr)
		count = v.countUnread()
	}
	v.setUnread(count)
	return err
}

func (v *NotificationsView) Unread() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.unread
}

// SetUnread overrides the badge, e.g. from a pushed unread_count event.
func (v *NotificationsView) SetUnread(count int64) { v.setUnread(count) }

func (v *NotificationsView) setUnread(count int64) {
	v.mu.Lock()
	v.unread = count
	v.mu.Unlock()
}

func (v *NotificationsView) countUnread() int64 {
	var n int64
	for _, item := range v.Items() {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// Receive prepends a pushed notification.
func (v *NotificationsView) Receive(n models.NotificationView) {
	if _, dup := v.Find(func(x models.NotificationView) bool { return x.ID == n.ID }); dup {
		return
	}
	v.Prepend(n)
	if !n.IsRead {
		v.mu.Lock()
		v.unread++
		v.mu.Unlock()
	}
}

func (v *NotificationsView) MarkRead(ctx context.Context, id uint) error {
	if err := v.api.MarkNotificationAsRead(ctx, id, v.viewer.UserID()); err != nil {
		logFailure(ctx, "Error marking notification as read", err, "notification_id", id)
		return err
	}
	changed := false
	v.Update(func(n models.NotificationView) bool { return n.ID == id && !n.IsRead }, func(n *models.NotificationView) {
		n.IsRead = true
		changed = true
	})
	if changed {
		v.mu.Lock()
		if v.unread > 0 {
			v.unread--
		}
		v.mu.Unlock()
	}
	return nil
}

func (v *NotificationsView) MarkAllRead(ctx context.Context) error {
	if err := v.api.MarkAllNotificationsAsRead(ctx, v.viewer.UserID()); err != nil {
		logFailure(ctx, "Error marking all notifications as read", err)
		return err
	}
	v.Update(func(models.NotificationView) bool { return true }, func(n *models.NotificationView) { n.IsRead = true })
	v.setUnread(0)
	return nil
}

// EmptyMessage is shown instead of a loading indicator once an empty list has loaded.
func (v *NotificationsView) EmptyMessage() string {
	if v.Empty() {
		return EmptyNotifications
	}
	return ""
}
