package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and their evaluated state.
// The webhook carries no session, so the user to evaluate against is passed
// as a query parameter; without one, percentage rollouts report false.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Query("user_id")

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
