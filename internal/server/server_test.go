package server

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"habitnavi/internal/config"
	"habitnavi/internal/database"
	"habitnavi/internal/line"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMessenger struct {
	mu      sync.Mutex
	replies []line.TextMessage
}

func (m *recordingMessenger) Reply(_ context.Context, _ string, messages ...line.TextMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, messages...)
	return nil
}

func (m *recordingMessenger) Profile(context.Context, string) (*line.Profile, error) {
	return &line.Profile{DisplayName: "テスト"}, nil
}

func (m *recordingMessenger) sent() []line.TextMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]line.TextMessage(nil), m.replies...)
}

// TestServerEndToEnd drives a full delivery through the real wiring:
// repositories on sqlite, the dispatcher, and the webhook handler.
func TestServerEndToEnd(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:server_e2e?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		Env:               "test",
		Port:              "8375",
		LineChannelSecret: testChannelSecret,
		BotTimezone:       "Asia/Tokyo",
		StatsWindowDays:   7,
		FeatureFlags:      "stats=on",
	}

	messenger := &recordingMessenger{}
	s, err := NewServerWithDeps(cfg, db, nil, messenger)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)

	post := func(events ...line.Event) int {
		body := webhookBody(t, events...)
		req := httptest.NewRequest(fiber.MethodPost, "/webhook", bytes.NewReader(body))
		req.Header.Set(line.SignatureHeader, sign(testChannelSecret, body))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	textEvent := func(text string) line.Event {
		return line.Event{
			Type:       line.EventTypeMessage,
			ReplyToken: "tok",
			Source:     &line.Source{Type: "user", UserID: "U-e2e"},
			Message:    &line.MessageContent{Type: line.MessageTypeText, Text: text},
		}
	}

	t.Run("follow installs defaults and welcomes", func(t *testing.T) {
		status := post(line.Event{
			Type:       line.EventTypeFollow,
			ReplyToken: "tok",
			Source:     &line.Source{Type: "user", UserID: "U-e2e"},
		})
		assert.Equal(t, fiber.StatusOK, status)

		sent := messenger.sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Text, "健康ナビへようこそ")
		assert.Contains(t, sent[0].Text, "1. ウォーキング")
	})

	t.Run("configure then log then stats", func(t *testing.T) {
		assert.Equal(t, fiber.StatusOK, post(textEvent("/設定 読書、散歩")))
		assert.Equal(t, fiber.StatusOK, post(textEvent("読書")))
		assert.Equal(t, fiber.StatusOK, post(textEvent("/統計")))

		sent := messenger.sent()
		require.Len(t, sent, 4)
		assert.Contains(t, sent[1].Text, "習慣を設定しました")
		assert.Contains(t, sent[2].Text, "「読書」を記録しました")
		assert.Contains(t, sent[3].Text, "読書: 1回")
	})

	t.Run("health endpoints", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
