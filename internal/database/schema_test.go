package database

import (
	"testing"

	"habitnavi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		env         string
		wantSQL     bool
		wantAuto    bool
		expectError bool
	}{
		{"hybrid in development", "hybrid", "development", true, true, false},
		{"hybrid in production", "hybrid", "production", true, false, false},
		{"hybrid in staging", "hybrid", "staging", true, false, false},
		{"empty mode defaults to hybrid", "", "development", true, true, false},
		{"sql everywhere", "sql", "production", true, false, false},
		{"auto in development", "auto", "development", false, true, false},
		{"auto refused in production", "auto", "production", false, false, true},
		{"unknown mode rejected", "yolo", "development", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{DBSchemaMode: tt.mode, Env: tt.env}
			runSQL, runAuto, err := schemaPolicy(cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms, "embedded migrations should be registered at init")

	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "init", ms[0].Name)
	assert.Contains(t, ms[0].UpScript, "habit_logs")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE")

	for i := 1; i < len(ms); i++ {
		assert.Greater(t, ms[i].Version, ms[i-1].Version, "migrations must be sorted by version")
	}
}

func TestPersistentModels_CoverDomain(t *testing.T) {
	assert.Len(t, PersistentModels(), 3)
}
