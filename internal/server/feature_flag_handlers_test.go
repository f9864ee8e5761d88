package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"habitnavi/internal/featureflags"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

func getFlags(t *testing.T, s *Server, target string) flagsResponse {
	t.Helper()
	app := fiber.New()
	app.Get("/flags", s.GetFeatureFlags)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body flagsResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestGetFeatureFlags(t *testing.T) {
	s := &Server{featureFlags: featureflags.NewManager("stats=on,beta=off")}

	body := getFlags(t, s, "/flags?user_id=U1")
	assert.Equal(t, "on", body.Raw["stats"])
	assert.True(t, body.Evaluated["stats"])
	assert.False(t, body.Evaluated["beta"])
}

func TestGetFeatureFlags_NoManager(t *testing.T) {
	body := getFlags(t, &Server{}, "/flags")
	assert.Empty(t, body.Raw)
	assert.Empty(t, body.Evaluated)
}
