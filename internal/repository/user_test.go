package repository

import (
	"context"
	"errors"
	"testing"

	"habitnavi/internal/line"
	"habitnavi/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByLineID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		rows := sqlmock.NewRows([]string{"id", "line_user_id"}).
			AddRow("3f1c2d9a-0000-0000-0000-000000000001", "U1")
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE line_user_id`).
			WithArgs("U1", 1).
			WillReturnRows(rows)

		user, err := repo.GetByLineID(ctx, "U1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "U1", user.LineUserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id is not an error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE line_user_id`).
			WithArgs("U-missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByLineID(ctx, "U-missing")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure surfaces as internal error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE line_user_id`).
			WithArgs("U1", 1).
			WillReturnError(errors.New("connection refused"))

		user, err := repo.GetByLineID(ctx, "U1")
		assert.Nil(t, user)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeInternal, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("first contact creates the row", func(t *testing.T) {
		profile := &line.Profile{DisplayName: "太郎", StatusMessage: "よろしく"}

		user, err := repo.GetOrCreate(ctx, "U-new", profile)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "U-new", user.LineUserID)
		require.NotNil(t, user.DisplayName)
		assert.Equal(t, "太郎", *user.DisplayName)
		// Empty profile fields stay null rather than empty strings.
		assert.Nil(t, user.PictureURL)
	})

	t.Run("second contact returns the same row", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, "U-repeat", nil)
		require.NoError(t, err)

		second, err := repo.GetOrCreate(ctx, "U-repeat", &line.Profile{DisplayName: "later"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		// Profile is only applied on creation.
		assert.Nil(t, second.DisplayName)
	})
}

func TestUserRepository_RefreshProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetOrCreate(ctx, "U-refresh", &line.Profile{DisplayName: "旧太郎", StatusMessage: "よろしく"})
	require.NoError(t, err)

	require.NoError(t, repo.RefreshProfile(ctx, user, &line.Profile{DisplayName: "新太郎"}))

	reread, err := repo.GetByLineID(ctx, "U-refresh")
	require.NoError(t, err)
	require.NotNil(t, reread)
	require.NotNil(t, reread.DisplayName)
	assert.Equal(t, "新太郎", *reread.DisplayName)
	// Attributes the platform stopped reporting are cleared.
	assert.Nil(t, reread.StatusMessage)

	// A nil profile is a no-op.
	require.NoError(t, repo.RefreshProfile(ctx, reread, nil))
	assert.Equal(t, "新太郎", *reread.DisplayName)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
	assert.True(t, isUniqueConstraintError(errors.New(`duplicate key value violates unique constraint "idx_users_line_user_id" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.line_user_id")))
}
