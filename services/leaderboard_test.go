package services

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStreaks(t *testing.T) {
	tests := []struct {
		name    string
		seq     []string
		current string
		win     int
		loss    int
	}{
		{
			name:    "empty sequence",
			seq:     nil,
			current: "-",
			win:     0,
			loss:    0,
		},
		{
			name:    "single win",
			seq:     []string{"W"},
			current: "1W",
			win:     1,
			loss:    0,
		},
		{
			name:    "running win streak",
			seq:     []string{"L", "W", "W", "W"},
			current: "3W",
			win:     3,
			loss:    1,
		},
		{
			name:    "streak broken by loss",
			seq:     []string{"W", "W", "L"},
			current: "1L",
			win:     2,
			loss:    1,
		},
		{
			name:    "longest runs tracked separately",
			seq:     []string{"W", "W", "W", "L", "L", "W", "L", "L", "L", "L"},
			current: "4L",
			win:     3,
			loss:    4,
		},
		{
			name:    "alternating",
			seq:     []string{"W", "L", "W", "L"},
			current: "1L",
			win:     1,
			loss:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreaks(tt.seq)
			assert.Equal(t, tt.current, got.CurrentStreak)
			assert.Equal(t, tt.win, got.LongestWin)
			assert.Equal(t, tt.loss, got.LongestLoss)
		})
	}
}

// A failed points aggregate must surface as an error, not render as 0 points.
func TestGetDashboard_AggregateFailure(t *testing.T) {
	db := newBareDB(t) // no schema: every query fails
	svc := NewLeaderboardService(db)

	app := fiber.New()
	app.Get("/dashboard", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return svc.GetDashboardEndpoint(c)
	})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
