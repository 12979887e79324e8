package services

import (
	"errors"
	"log"
	"time"

	"competition-entry-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// CreateEvent creates a draft event with its fee schedule.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	type Req struct {
		Name                 string             `json:"name" validate:"required"`
		Description          string             `json:"description,omitempty"`
		Venue                string             `json:"venue,omitempty"`
		Region               string             `json:"region,omitempty"`
		EventDate            time.Time          `json:"event_date" validate:"required"`
		RegistrationDeadline time.Time          `json:"registration_deadline,omitempty"`
		ParticipationMode    string             `json:"participation_mode,omitempty"`
		JudgeCount           int                `json:"judge_count,omitempty"`
		FeeSchedule          models.FeeSchedule `json:"fee_schedule"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" || req.EventDate.IsZero() {
		return c.Status(400).JSON(fiber.Map{"error": "name and event_date are required"})
	}

	mode := req.ParticipationMode
	if mode == "" {
		mode = models.ModeHybrid
	}
	switch mode {
	case models.ModeHybrid, models.ModeLiveOnly, models.ModeVirtualOnly:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "participation_mode must be hybrid, live_only or virtual_only"})
	}

	judgeCount := req.JudgeCount
	if judgeCount <= 0 {
		judgeCount = 3
	}

	deadline := req.RegistrationDeadline
	if deadline.IsZero() {
		deadline = req.EventDate.AddDate(0, 0, -14) // default: two weeks before the event
	}

	event := models.Event{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Slug:                 slug.Make(req.Name),
		Description:          req.Description,
		Venue:                req.Venue,
		Region:               req.Region,
		EventDate:            req.EventDate,
		RegistrationDeadline: deadline,
		Status:               models.EventDraft,
		ParticipationMode:    mode,
		JudgeCount:           judgeCount,
		FeeSchedule:          req.FeeSchedule,
	}
	if event.FeeSchedule.Currency == "" {
		event.FeeSchedule.Currency = "ZAR"
	}

	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("ERROR: failed to create event: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create event", "details": err.Error()})
	}
	return c.Status(201).JSON(event)
}

func (s *EventService) GetAllEvents(c *fiber.Ctx) error {
	var events []models.Event
	db := s.DB.Order("event_date DESC")
	if region := c.Query("region"); region != "" {
		db = db.Where("region = ?", region)
	}
	if err := db.Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

// GetAllEventsMini returns the listing view with entry counts.
func (s *EventService) GetAllEventsMini(c *fiber.Ctx) error {
	var events []models.MiniEvent
	query := `
        SELECT
            e.id, e.name, e.slug, e.region, e.venue, e.event_date,
            e.registration_deadline, e.status, e.participation_mode,
            COUNT(en.id) AS entry_count
        FROM events e
        LEFT JOIN entries en ON en.event_id = e.id AND en.deleted_at IS NULL
        WHERE e.deleted_at IS NULL
        GROUP BY e.id
        ORDER BY e.event_date DESC
    `
	if err := s.DB.Raw(query).Scan(&events).Error; err != nil {
		log.Printf("ERROR fetching mini events: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

func (s *EventService) GetEventByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var event models.Event
	// accept either the id or the slug
	if err := s.DB.Where("id = ? OR slug = ?", id, id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	s.DB.Model(&models.Entry{}).Where("event_id = ?", event.ID).Count(&event.EntryCount)
	s.DB.Model(&models.Payment{}).Where("event_id = ?", event.ID).Count(&event.PaymentCount)
	return c.JSON(event)
}

// eventUpdateRequest is the update payload: the safety-relevant change set
// plus benign fields that are always allowed. Confirmed acknowledges risky
// changes; it is required whenever the checker reports any warning.
type eventUpdateRequest struct {
	EventChangeSet
	Name                 *string    `json:"name,omitempty"`
	Description          *string    `json:"description,omitempty"`
	Venue                *string    `json:"venue,omitempty"`
	Region               *string    `json:"region,omitempty"`
	EventDate            *time.Time `json:"event_date,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	Confirmed            bool       `json:"confirmed,omitempty"`
}

// CheckEventUpdate is the dry run: it classifies a proposed change set
// without applying anything. The verdict is advisory only — UpdateEvent
// re-checks inside its own transaction.
func (s *EventService) CheckEventUpdate(c *fiber.Ctx) error {
	var req eventUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	stats, err := LoadSafetyStats(s.DB, event.ID, event.JudgeCount)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load event stats", "details": err.Error()})
	}

	return c.JSON(EvaluateEventChangeSet(event, req.EventChangeSet, stats))
}

// UpdateEvent applies a configuration change. The safety check runs inside
// the same transaction that applies the change, against freshly loaded
// stats, so a payment or score landing between a prior dry run and this
// update still blocks it.
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	var req eventUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	eventID := c.Params("id")
	var event models.Event
	var result SafetyCheckResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", eventID).Error; err != nil {
			return err
		}

		stats, err := LoadSafetyStats(tx, event.ID, event.JudgeCount)
		if err != nil {
			return err
		}

		result = EvaluateEventChangeSet(event, req.EventChangeSet, stats)
		if result.Verdict == VerdictBlocked {
			return errSafetyBlocked
		}
		if result.Verdict == VerdictRisky && !req.Confirmed {
			return errSafetyUnconfirmed
		}

		applyEventUpdate(&event, req)
		return tx.Save(&event).Error
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	case errors.Is(err, errSafetyBlocked):
		return c.Status(409).JSON(fiber.Map{
			"error":  "update blocked by event safety rules",
			"result": result,
		})
	case errors.Is(err, errSafetyUnconfirmed):
		return c.Status(409).JSON(fiber.Map{
			"error":  "update is risky and requires explicit confirmation (set \"confirmed\": true)",
			"result": result,
		})
	case err != nil:
		log.Printf("ERROR: failed to update event %s: %v", eventID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update event", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "event updated", "event": event, "result": result})
}

var (
	errSafetyBlocked     = errors.New("change set blocked")
	errSafetyUnconfirmed = errors.New("risky change set not confirmed")
)

func applyEventUpdate(event *models.Event, req eventUpdateRequest) {
	if req.Name != nil {
		event.Name = *req.Name
		event.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.Region != nil {
		event.Region = *req.Region
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = *req.RegistrationDeadline
	}
	if req.JudgeCount != nil {
		event.JudgeCount = *req.JudgeCount
	}
	if req.ParticipationMode != nil {
		event.ParticipationMode = *req.ParticipationMode
	}
	if req.FeeSchedule != nil {
		event.FeeSchedule = *req.FeeSchedule
	}
}

// UpdateEventStatus moves an event through its lifecycle
// (draft → registration_open → registration_closed → completed).
func (s *EventService) UpdateEventStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status" validate:"required"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	switch req.Status {
	case models.EventDraft, models.EventRegistrationOpen, models.EventRegistrationClosed, models.EventCompleted:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "invalid status"})
	}

	res := s.DB.Model(&models.Event{}).Where("id = ?", c.Params("id")).Update("status", req.Status)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update status"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}
	return c.JSON(fiber.Map{"message": "status updated", "status": req.Status})
}

// DeleteEvent soft-deletes an event that has no financial or scoring state.
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")

	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	stats, err := LoadSafetyStats(s.DB, eventID, event.JudgeCount)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load event stats"})
	}
	if stats.PaymentCount > 0 || stats.ScoreCount > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "events with payments or scores cannot be deleted"})
	}

	if err := s.DB.Delete(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete event"})
	}
	return c.JSON(fiber.Map{"message": "event deleted"})
}
