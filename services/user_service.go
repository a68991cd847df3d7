package services

import (
	"errors"
	"strconv"
	"strings"

	"travel-predict-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// CreateUser handles POST /admin/users.
func (s *UserService) CreateUser(c *fiber.Ctx) error {
	type Req struct {
		Username    string `json:"username" validate:"required,min=3,max=32"`
		DisplayName string `json:"display_name"`
		IsAdmin     bool   `json:"is_admin"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := Validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "username is required (3-32 chars)"})
	}

	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}
	user := &models.User{
		Username:    strings.ToLower(strings.TrimSpace(req.Username)),
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return c.Status(409).JSON(fiber.Map{"error": "username already taken"})
	}
	return c.Status(201).JSON(user)
}

// SearchUsers handles GET /admin/users?q=&limit=.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.User{}).Limit(limit).Order("username ASC")
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?",
			searchTerm, searchTerm,
		)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}
	return c.JSON(users)
}

// GetUser handles GET /admin/users/:id.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(user)
}
