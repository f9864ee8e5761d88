package seed

import (
	"fmt"
	"log"

	"habitnavi/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	MaxDaysBack int
	ShouldClean bool
}

// Run populates the database with demo users, habit sets and back-dated
// completion logs. Development and test use only.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return fmt.Errorf("clean before seed: %w", err)
		}
	}

	factory := NewFactory(db)
	totalLogs := 0

	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create demo user: %w", err)
		}

		// Vary set sizes so list rendering gets exercised with 1..3 habits.
		size := 1 + i%models.MaxHabits
		habits, err := factory.CreateHabitSet(user, size)
		if err != nil {
			return fmt.Errorf("create habit set: %w", err)
		}

		n, err := factory.CreateBackdatedLogs(user, habits, opts.MaxDaysBack)
		if err != nil {
			return fmt.Errorf("create habit logs: %w", err)
		}
		totalLogs += n
	}

	log.Printf("seeded %d users with habit sets and %d completion logs", opts.NumUsers, totalLogs)
	return nil
}

// Clean removes all seeded (and real) data. Refuses nothing; the caller is
// responsible for only pointing this at disposable databases.
func Clean(db *gorm.DB) error {
	for _, table := range []string{"habit_logs", "habits", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	return nil
}
