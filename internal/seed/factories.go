// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"habitnavi/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// habitPool is the set of habit names demo users pick from.
var habitPool = []string{
	"ウォーキング", "筋トレ", "瞑想", "読書", "早起き",
	"ストレッチ", "ジョギング", "水を飲む", "日記", "散歩",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, rand: rand.New(rand.NewSource(seed))}
}

// CreateUser constructs and persists a demo user with a synthetic LINE user
// id. Optional override functions may modify the user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	name := gofakeit.Name()
	status := gofakeit.Sentence(4)
	user := &models.User{
		LineUserID:    fmt.Sprintf("U%032x", f.rand.Uint64()),
		DisplayName:   &name,
		PictureURL:    strPtr(fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())),
		StatusMessage: &status,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateHabitSet gives the user a habit set of the requested size, sampled
// without replacement from the demo pool.
func (f *Factory) CreateHabitSet(user *models.User, size int) ([]string, error) {
	if size <= 0 || size > models.MaxHabits {
		size = models.MaxHabits
	}
	names := f.sampleHabits(size)

	for i, name := range names {
		habit := models.Habit{UserID: user.ID, Name: name, Position: i + 1}
		if err := f.db.Create(&habit).Error; err != nil {
			return nil, err
		}
	}
	return names, nil
}

// CreateBackdatedLogs spreads completion logs for the given habits over the
// last maxDays days, denser on recent days so stats views look alive.
func (f *Factory) CreateBackdatedLogs(user *models.User, habits []string, maxDays int) (int, error) {
	if maxDays <= 0 {
		maxDays = 14
	}

	created := 0
	now := time.Now().UTC()
	for day := 0; day < maxDays; day++ {
		for _, name := range habits {
			// Older days complete less often.
			chance := 80 - day*4
			if chance < 20 {
				chance = 20
			}
			if f.rand.Intn(100) >= chance {
				continue
			}
			at := now.AddDate(0, 0, -day).
				Add(-time.Duration(f.rand.Intn(12)) * time.Hour).
				Add(-time.Duration(f.rand.Intn(60)) * time.Minute)
			log := models.HabitLog{UserID: user.ID, Name: name, LoggedAt: at}
			if err := f.db.Create(&log).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func (f *Factory) sampleHabits(size int) []string {
	idx := f.rand.Perm(len(habitPool))
	names := make([]string, 0, size)
	for _, i := range idx[:size] {
		names = append(names, habitPool[i])
	}
	return names
}

func strPtr(s string) *string { return &s }
