package database

import "habitnavi/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Habit{},
		&models.HabitLog{},
	}
}
