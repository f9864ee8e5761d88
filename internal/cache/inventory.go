package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix   = "user:%s"
	HabitsKeyPrefix = "habits:%s"
	EventKeyPrefix  = "event:%s"
)

const (
	UserTTL   = 5 * time.Minute
	HabitsTTL = 5 * time.Minute
	EventTTL  = time.Hour
)

// UserKey returns the cache key for a user record, keyed by LINE user id.
func UserKey(lineUserID string) string {
	return fmt.Sprintf(UserKeyPrefix, lineUserID)
}

// HabitsKey returns the cache key for a user's current habit set, keyed by internal user id.
func HabitsKey(userID string) string {
	return fmt.Sprintf(HabitsKeyPrefix, userID)
}

// EventKey returns the dedupe key for one webhook event delivery.
func EventKey(webhookEventID string) string {
	return fmt.Sprintf(EventKeyPrefix, webhookEventID)
}

// FirstDelivery records a webhook event id and reports whether this delivery
// is the first one seen for it. The platform redelivers events it believes
// were lost; the TTL-bound key survives a process restart within the window.
// Fails open: without Redis, or on a Redis error, every delivery counts as
// the first.
func FirstDelivery(ctx context.Context, webhookEventID string) bool {
	if client == nil || webhookEventID == "" {
		return true
	}
	first, err := client.SetNX(ctx, EventKey(webhookEventID), 1, EventTTL).Result()
	if err != nil {
		return true
	}
	return first
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, lineUserID string) {
	Invalidate(ctx, UserKey(lineUserID))
}

func InvalidateHabits(ctx context.Context, userID string) {
	Invalidate(ctx, HabitsKey(userID))
}
