package services

import (
	"errors"
	"log"
	"time"

	"travel-predict-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type SeriesService struct {
	DB *gorm.DB
}

func NewSeriesService(db *gorm.DB) *SeriesService {
	return &SeriesService{DB: db}
}

// CreateSeries handles POST /admin/series.
func (s *SeriesService) CreateSeries(c *fiber.Ctx) error {
	type Req struct {
		Name         string `json:"name" validate:"required"`
		Description  string `json:"description"`
		StartDateUTC string `json:"start_date_utc" validate:"required"`
		EndDateUTC   string `json:"end_date_utc"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "name and start_date_utc are required"})
	}

	start, err := time.Parse(time.RFC3339, req.StartDateUTC)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_date_utc (use RFC3339)"})
	}
	var end *time.Time
	if req.EndDateUTC != "" {
		e, err := time.Parse(time.RFC3339, req.EndDateUTC)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_date_utc (use RFC3339)"})
		}
		end = &e
	}

	series := &models.Series{
		Name:         req.Name,
		Slug:         slug.Make(req.Name),
		Description:  req.Description,
		StartDateUTC: start.UTC(),
		EndDateUTC:   end,
		CreatedBy:    c.Locals("user_id").(string),
	}
	if err := s.DB.Create(series).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create series", "details": err.Error()})
	}
	return c.Status(201).JSON(series)
}

// UpdateSeries handles PUT /admin/series/:id.
func (s *SeriesService) UpdateSeries(c *fiber.Ctx) error {
	var series models.Series
	if err := s.DB.First(&series, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": ErrSeriesNotFound.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	type Req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		StartDateUTC string `json:"start_date_utc"`
		EndDateUTC   string `json:"end_date_utc"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	if req.Name != "" {
		series.Name = req.Name
		series.Slug = slug.Make(req.Name)
	}
	series.Description = req.Description
	if req.StartDateUTC != "" {
		if t, err := time.Parse(time.RFC3339, req.StartDateUTC); err == nil {
			series.StartDateUTC = t.UTC()
		}
	}
	if req.EndDateUTC != "" {
		if t, err := time.Parse(time.RFC3339, req.EndDateUTC); err == nil {
			u := t.UTC()
			series.EndDateUTC = &u
		}
	}

	if err := s.DB.Save(&series).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(series)
}

// LockSeries freezes membership for a series.
func (s *SeriesService) LockSeries(c *fiber.Ctx) error {
	result := s.DB.Model(&models.Series{}).
		Where("id = ?", c.Params("id")).
		Update("is_locked", true)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "lock failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": ErrSeriesNotFound.Error()})
	}
	return c.JSON(fiber.Map{"message": "series locked"})
}

// DeleteSeries removes a series and every dependent row: matches with their
// predictions and ledger entries, then memberships, then the series itself.
func (s *SeriesService) DeleteSeries(c *fiber.Ctx) error {
	seriesID := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var matchIDs []string
		if err := tx.Model(&models.Match{}).
			Where("series_id = ?", seriesID).
			Pluck("id", &matchIDs).Error; err != nil {
			return err
		}
		if len(matchIDs) > 0 {
			if err := tx.Where("match_id IN ?", matchIDs).Delete(&models.Prediction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("match_id IN ?", matchIDs).Delete(&models.LedgerEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", matchIDs).Delete(&models.Match{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("series_id = ?", seriesID).Delete(&models.SeriesMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("series_id = ?", seriesID).Delete(&models.LedgerEntry{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Series{}, "id = ?", seriesID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(404, ErrSeriesNotFound.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[SERIES] Series %s and related data deleted", seriesID)
	return c.JSON(fiber.Map{"message": "series deleted"})
}

// AddMember handles POST /admin/series/:id/members.
func (s *SeriesService) AddMember(c *fiber.Ctx) error {
	seriesID := c.Params("id")

	type Req struct {
		UserID string `json:"user_id" validate:"required,uuid"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "user_id (uuid) is required"})
	}

	var series models.Series
	if err := s.DB.First(&series, "id = ?", seriesID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": ErrSeriesNotFound.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if series.IsLocked {
		return c.Status(403).JSON(fiber.Map{"error": ErrSeriesLocked.Error()})
	}
	if err := s.DB.First(&models.User{}, "id = ?", req.UserID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	member := &models.SeriesMember{SeriesID: seriesID, UserID: req.UserID}
	if err := s.DB.Create(member).Error; err != nil {
		return c.Status(409).JSON(fiber.Map{"error": "user is already a member"})
	}
	return c.Status(201).JSON(member)
}

// RemoveMember handles DELETE /admin/series/:id/members/:user_id.
func (s *SeriesService) RemoveMember(c *fiber.Ctx) error {
	seriesID := c.Params("id")

	var series models.Series
	if err := s.DB.First(&series, "id = ?", seriesID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": ErrSeriesNotFound.Error()})
	}
	if series.IsLocked {
		return c.Status(403).JSON(fiber.Map{"error": ErrSeriesLocked.Error()})
	}

	result := s.DB.Where("series_id = ? AND user_id = ?", seriesID, c.Params("user_id")).
		Delete(&models.SeriesMember{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "membership not found"})
	}
	return c.JSON(fiber.Map{"message": "member removed"})
}

// ListMembers handles GET /admin/series/:id/members.
func (s *SeriesService) ListMembers(c *fiber.Ctx) error {
	type MemberRow struct {
		UserID      string    `json:"user_id"`
		Username    string    `json:"username"`
		DisplayName string    `json:"display_name"`
		JoinedAt    time.Time `json:"joined_at"`
	}
	var rows []MemberRow
	err := s.DB.Model(&models.SeriesMember{}).
		Select("series_members.user_id, users.username, users.display_name, series_members.joined_at").
		Joins("JOIN users ON users.id = series_members.user_id").
		Where("series_members.series_id = ?", c.Params("id")).
		Order("users.username ASC").
		Scan(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch members"})
	}
	return c.JSON(rows)
}

// GetMySeries handles GET /series: the series the calling user belongs to.
func (s *SeriesService) GetMySeries(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var series []models.Series
	err := s.DB.
		Joins("JOIN series_members sm ON sm.series_id = series.id").
		Where("sm.user_id = ?", userID).
		Order("series.start_date_utc DESC").
		Find(&series).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch series"})
	}
	return c.JSON(series)
}

// GetAllSeries handles GET /admin/series.
func (s *SeriesService) GetAllSeries(c *fiber.Ctx) error {
	var series []models.Series
	if err := s.DB.Order("created_at DESC").Find(&series).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch series"})
	}
	return c.JSON(series)
}
