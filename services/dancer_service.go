package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"competition-entry-system/models"
	"competition-entry-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DancerService struct {
	DB *gorm.DB
}

func NewDancerService(db *gorm.DB) *DancerService {
	return &DancerService{DB: db}
}

// RegisterDancer creates an unapproved dancer record.
func (s *DancerService) RegisterDancer(c *fiber.Ctx) error {
	type Req struct {
		NationalID  string    `json:"national_id" validate:"required"`
		FirstName   string    `json:"first_name" validate:"required"`
		LastName    string    `json:"last_name" validate:"required"`
		DateOfBirth time.Time `json:"date_of_birth"`
		Guardian    string    `json:"guardian,omitempty"`
		StudioID    string    `json:"studio_id,omitempty"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.NationalID == "" || req.FirstName == "" || req.LastName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "national_id, first_name and last_name are required"})
	}

	var existing int64
	s.DB.Model(&models.Dancer{}).Where("national_id = ?", req.NationalID).Count(&existing)
	if existing > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "a dancer with this national_id already exists"})
	}

	var studioID *string
	if req.StudioID != "" {
		var studio models.Studio
		if err := s.DB.First(&studio, "id = ?", req.StudioID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(400).JSON(fiber.Map{"error": "studio_id not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "DB error checking studio"})
		}
		studioID = &req.StudioID
	}

	dancer := models.Dancer{
		ID:          uuid.NewString(),
		NationalID:  req.NationalID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		SearchName:  utils.NormalizeName(req.FirstName + " " + req.LastName),
		DateOfBirth: req.DateOfBirth,
		Guardian:    req.Guardian,
		StudioID:    studioID,
	}
	if err := s.DB.Create(&dancer).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to register dancer", "details": err.Error()})
	}
	return c.Status(201).JSON(dancer)
}

// ApproveDancer flips the approval flag; only approved dancers can be
// listed on entries.
func (s *DancerService) ApproveDancer(c *fiber.Ctx) error {
	res := s.DB.Model(&models.Dancer{}).Where("id = ?", c.Params("id")).Update("approved", true)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to approve dancer"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "dancer not found"})
	}
	return c.JSON(fiber.Map{"message": "dancer approved"})
}

// SearchDancers searches by name (accent-insensitive) or national id.
func (s *DancerService) SearchDancers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limitStr := c.Query("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	var dancers []models.Dancer
	db := s.DB.Model(&models.Dancer{}).Preload("Studio").Limit(limit)
	if query != "" {
		searchTerm := "%" + utils.NormalizeName(query) + "%"
		db = db.Where("search_name LIKE ? OR national_id LIKE ?", searchTerm, "%"+strings.TrimSpace(query)+"%")
	}
	if err := db.Order("search_name ASC").Find(&dancers).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}
	return c.JSON(dancers)
}

func (s *DancerService) GetDancerByID(c *fiber.Ctx) error {
	var dancer models.Dancer
	if err := s.DB.Preload("Studio").First(&dancer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "dancer not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching dancer"})
	}
	return c.JSON(dancer)
}

// CreateStudio registers a dance studio (unapproved).
func (s *DancerService) CreateStudio(c *fiber.Ctx) error {
	type Req struct {
		Name         string `json:"name" validate:"required"`
		ContactName  string `json:"contact_name,omitempty"`
		ContactEmail string `json:"contact_email,omitempty"`
		ContactPhone string `json:"contact_phone,omitempty"`
		Address      string `json:"address,omitempty"`
		Region       string `json:"region,omitempty"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	studio := models.Studio{
		ID:           uuid.NewString(),
		Name:         req.Name,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Region:       req.Region,
	}
	if err := s.DB.Create(&studio).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create studio", "details": err.Error()})
	}
	return c.Status(201).JSON(studio)
}

func (s *DancerService) ApproveStudio(c *fiber.Ctx) error {
	res := s.DB.Model(&models.Studio{}).Where("id = ?", c.Params("id")).Update("approved", true)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to approve studio"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "studio not found"})
	}
	return c.JSON(fiber.Map{"message": "studio approved"})
}

// GetStudioDancers lists a studio's dancers with the count filled in.
func (s *DancerService) GetStudioDancers(c *fiber.Ctx) error {
	studioID := c.Params("id")

	var studio models.Studio
	if err := s.DB.First(&studio, "id = ?", studioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "studio not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching studio"})
	}

	var dancers []models.Dancer
	if err := s.DB.Where("studio_id = ?", studioID).Order("search_name ASC").Find(&dancers).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch dancers"})
	}
	studio.DancerCount = int64(len(dancers))

	return c.JSON(fiber.Map{"studio": studio, "dancers": dancers})
}
