package services

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSeries_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db)

	app := fiber.New()
	app.Put("/admin/series/:id", svc.UpdateSeries)

	req := httptest.NewRequest("PUT", "/admin/series/does-not-exist", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestLockSeries_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewSeriesService(db)

	app := fiber.New()
	app.Patch("/admin/series/:id/lock", svc.LockSeries)

	req := httptest.NewRequest("PATCH", "/admin/series/does-not-exist/lock", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestLockSeries_Locks(t *testing.T) {
	db := newTestDB(t)
	seedSeriesWithMembers(t, db, "s1")
	svc := NewSeriesService(db)

	app := fiber.New()
	app.Patch("/admin/series/:id/lock", svc.LockSeries)

	req := httptest.NewRequest("PATCH", "/admin/series/s1/lock", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var locked bool
	require.NoError(t, db.Table("series").Select("is_locked").Where("id = ?", "s1").Scan(&locked).Error)
	assert.True(t, locked)
}
