package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UnreadCountKeyPrefix = "notifications:unread:%d"
	CourseCatalogKey     = "courses:all"
	EventCalendarKey     = "events:all"
	RevokedTokenPrefix   = "auth:revoked:%s"
)

const (
	UnreadCountTTL   = 2 * time.Minute
	CourseCatalogTTL = 5 * time.Minute
	EventCalendarTTL = 5 * time.Minute
)

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}

// Invalidate deletes key. It is a no-op without a client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}
