package repository

import (
	"context"
	"time"

	"habitnavi/internal/cache"
	"habitnavi/internal/models"
	"habitnavi/internal/observability"

	"gorm.io/gorm"
)

// HabitRepository defines persistence operations for habit sets and
// completion logs.
type HabitRepository interface {
	GetHabits(ctx context.Context, userID string) ([]string, error)
	SetHabits(ctx context.Context, userID string, names []string) error
	LogCompletion(ctx context.Context, userID, name string) (*models.HabitLog, error)
	GetTodayCompletions(ctx context.Context, userID string) ([]models.HabitLog, error)
	GetStats(ctx context.Context, userID string, windowDays int) ([]models.HabitStat, error)
}

type habitRepository struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewHabitRepository returns a HabitRepository whose day boundaries follow loc.
func NewHabitRepository(db *gorm.DB, loc *time.Location) HabitRepository {
	return &habitRepository{db: db, loc: loc, now: time.Now}
}

// NewHabitRepositoryAt is NewHabitRepository with an injectable time source.
func NewHabitRepositoryAt(db *gorm.DB, loc *time.Location, now func() time.Time) HabitRepository {
	return &habitRepository{db: db, loc: loc, now: now}
}

// GetHabits returns the user's current habit names ordered by position.
// An empty slice means the user has never configured (or followed).
func (r *habitRepository) GetHabits(ctx context.Context, userID string) ([]string, error) {
	var names []string
	key := cache.HabitsKey(userID)

	err := cache.Aside(ctx, key, &names, cache.HabitsTTL, func() error {
		defer observability.TrackQuery("select", "habits")()
		if err := r.db.WithContext(ctx).
			Model(&models.Habit{}).
			Where("user_id = ?", userID).
			Order("position ASC").
			Pluck("name", &names).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return names, nil
}

// SetHabits replaces the user's habit set atomically: the old rows are
// deleted and the new ones inserted in one transaction, positions assigned
// from slice order. Anything beyond models.MaxHabits is dropped.
func (r *habitRepository) SetHabits(ctx context.Context, userID string, names []string) error {
	if len(names) > models.MaxHabits {
		names = names[:models.MaxHabits]
	}

	defer observability.TrackQuery("replace", "habits")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Habit{}).Error; err != nil {
			return err
		}
		for i, name := range names {
			habit := models.Habit{UserID: userID, Name: name, Position: i + 1}
			if err := tx.Create(&habit).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateHabits(ctx, userID)
	return nil
}

// LogCompletion appends one completion entry. The habit name is stored on
// the entry itself, so later reconfiguration never rewrites history.
func (r *habitRepository) LogCompletion(ctx context.Context, userID, name string) (*models.HabitLog, error) {
	defer observability.TrackQuery("insert", "habit_logs")()
	log := models.HabitLog{
		UserID:   userID,
		Name:     name,
		LoggedAt: r.now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &log, nil
}

// GetTodayCompletions returns the user's completions since local midnight,
// oldest first.
func (r *habitRepository) GetTodayCompletions(ctx context.Context, userID string) ([]models.HabitLog, error) {
	defer observability.TrackQuery("select", "habit_logs")()
	start := r.startOfToday()

	var logs []models.HabitLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, start.AddDate(0, 0, 1)).
		Order("logged_at ASC").
		Find(&logs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return logs, nil
}

// GetStats aggregates completions per habit name over the trailing window,
// most frequent first, ties broken by name. The window covers today plus
// the preceding windowDays-1 local days.
func (r *habitRepository) GetStats(ctx context.Context, userID string, windowDays int) ([]models.HabitStat, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	defer observability.TrackQuery("aggregate", "habit_logs")()
	start := r.startOfToday().AddDate(0, 0, -(windowDays - 1))

	var stats []models.HabitStat
	if err := r.db.WithContext(ctx).
		Model(&models.HabitLog{}).
		Select("name, COUNT(*) AS count, MAX(logged_at) AS last_logged_at").
		Where("user_id = ? AND logged_at >= ?", userID, start).
		Group("name").
		Order("count DESC, name ASC").
		Scan(&stats).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}

// startOfToday is local midnight in the configured zone, as a UTC instant
// comparable against stored logged_at values.
func (r *habitRepository) startOfToday() time.Time {
	local := r.now().In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc).UTC()
}
