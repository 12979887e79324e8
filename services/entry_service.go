package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"competition-entry-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntryService struct {
	DB *gorm.DB
}

func NewEntryService(db *gorm.DB) *EntryService {
	return &EntryService{DB: db}
}

// ErrTierConflict surfaces a lost race on the solo-tier / registration-fee
// claim. The submission path retries once against fresh state instead of
// assigning a duplicate tier.
var ErrTierConflict = errors.New("concurrent fee claim conflict, retry against fresh state")

// isRetryableConflict matches the two Postgres failure shapes the claim can
// hit: a unique-index violation on the registration row (two concurrent
// first entries) and a serialization failure.
func isRetryableConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "duplicate key")
}

// SubmitEntry creates an entry with its fee snapshot. The solo tier and the
// one-time registration fee are claimed inside one transaction holding a row
// lock on the dancer's registration record, so two concurrent submissions
// can never both claim the same tier or both charge the registration fee.
func (s *EntryService) SubmitEntry(c *fiber.Ctx) error {
	type Req struct {
		OwnerDancerID  string   `json:"owner_dancer_id" validate:"required"`
		ParticipantIDs []string `json:"participant_ids" validate:"required"`
		Title          string   `json:"title" validate:"required"`
		Choreographer  string   `json:"choreographer,omitempty"`
		MasteryLevel   string   `json:"mastery_level,omitempty"`
		ItemStyle      string   `json:"item_style,omitempty"`
		EntryType      string   `json:"entry_type,omitempty"` // live (default) or virtual
		StudioID       string   `json:"studio_id,omitempty"`
		// Ignored on purpose — eligibility comes from stored state only
		RegistrationFeeDue *bool `json:"registration_fee_due,omitempty"`
	}

	eventID := c.Params("id")
	if eventID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "event id required in URL"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.OwnerDancerID == "" || req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "owner_dancer_id and title are required"})
	}
	if len(req.ParticipantIDs) < 1 {
		return c.Status(400).JSON(fiber.Map{"error": ErrInvalidParticipantCount.Error()})
	}
	if !containsID(req.ParticipantIDs, req.OwnerDancerID) {
		return c.Status(400).JSON(fiber.Map{"error": "owner_dancer_id must be one of the participants"})
	}
	if seen := duplicateID(req.ParticipantIDs); seen != "" {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("dancer %s appears more than once in participant_ids", seen)})
	}

	entryType := req.EntryType
	if entryType == "" {
		entryType = models.EntryLive
	}
	if entryType != models.EntryLive && entryType != models.EntryVirtual {
		return c.Status(400).JSON(fiber.Map{"error": "entry_type must be 'live' or 'virtual'"})
	}

	// Fetch event and validate it can take this entry
	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}
	if event.Status != models.EventRegistrationOpen {
		return c.Status(403).JSON(fiber.Map{"error": "event is not open for registration"})
	}
	if event.ParticipationMode == models.ModeLiveOnly && entryType == models.EntryVirtual {
		return c.Status(403).JSON(fiber.Map{"error": "this event accepts live entries only"})
	}
	if event.ParticipationMode == models.ModeVirtualOnly && entryType == models.EntryLive {
		return c.Status(403).JSON(fiber.Map{"error": "this event accepts virtual entries only"})
	}

	// All participants must exist and be approved
	var dancerCount int64
	if err := s.DB.Model(&models.Dancer{}).
		Where("id IN ? AND approved = true", req.ParticipantIDs).
		Count(&dancerCount).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking participants"})
	}
	if dancerCount != int64(len(req.ParticipantIDs)) {
		return c.Status(400).JSON(fiber.Map{"error": "all participants must be registered, approved dancers"})
	}

	perfType := models.PerformanceTypeForCount(len(req.ParticipantIDs))

	var entry models.Entry
	var breakdown FeeBreakdown

	submit := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			// Lock (or create) the owner's registration row. This row is the
			// serialization point for both the solo-tier counter and the
			// one-time registration fee.
			var reg models.DancerRegistration
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("dancer_id = ? AND event_id = ?", req.OwnerDancerID, eventID).
				First(&reg).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				reg = models.DancerRegistration{
					ID:           uuid.NewString(),
					DancerID:     req.OwnerDancerID,
					EventID:      eventID,
					MasteryLevel: req.MasteryLevel,
				}
				// Unique (dancer, event) index turns a concurrent first
				// entry into a retryable conflict rather than a double charge.
				if err := tx.Create(&reg).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			soloTier := 0
			if perfType == models.PerformanceSolo {
				soloTier = reg.SoloCount + 1
			}

			bd, err := ComputeFeeBreakdown(event.FeeSchedule, len(req.ParticipantIDs), soloTier, registrationFeeDue(&reg))
			if err != nil {
				return err
			}

			var studioID *string
			if req.StudioID != "" {
				studioID = &req.StudioID
			}

			entry = models.Entry{
				ID:                     uuid.NewString(),
				EventID:                eventID,
				OwnerDancerID:          req.OwnerDancerID,
				StudioID:               studioID,
				Title:                  req.Title,
				Choreographer:          req.Choreographer,
				MasteryLevel:           req.MasteryLevel,
				ItemStyle:              req.ItemStyle,
				PerformanceType:        perfType,
				EntryType:              entryType,
				CalculatedFee:          bd.PerformanceFee,
				RegistrationFeeCharged: bd.RegistrationFee,
				FeeBreakdown:           bd.Breakdown,
				RegistrationBreakdown:  bd.RegistrationBreakdown,
				SoloTier:               soloTier,
				PaymentStatus:          models.PaymentUnpaid,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			for i, dancerID := range req.ParticipantIDs {
				p := models.EntryParticipant{
					ID:       uuid.NewString(),
					EntryID:  entry.ID,
					DancerID: dancerID,
					Position: i,
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			}

			// Advance the claimed state on the locked row
			updates := map[string]interface{}{}
			if soloTier > 0 {
				updates["solo_count"] = soloTier
			}
			if bd.RegistrationFee > 0 {
				updates["registration_fee_charged"] = bd.RegistrationFee
				updates["mastery_level"] = req.MasteryLevel
			}
			if len(updates) > 0 {
				if err := tx.Model(&models.DancerRegistration{}).
					Where("id = ?", reg.ID).
					Updates(updates).Error; err != nil {
					return err
				}
			}

			breakdown = bd
			return nil
		})
	}

	err := submit()
	if isRetryableConflict(err) {
		log.Printf("⚠️  [ENTRY] fee claim conflict for dancer %s at event %s, retrying once: %v", req.OwnerDancerID, eventID, err)
		err = submit()
	}
	if err != nil {
		if errors.Is(err, ErrInvalidParticipantCount) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("ERROR: entry submission failed for event %s: %v", eventID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to submit entry", "details": err.Error()})
	}

	for _, w := range breakdown.Warnings {
		log.Printf("⚠️  [FEE] entry %s: %s", entry.ID, w)
	}

	return c.Status(201).JSON(fiber.Map{
		"message":       "entry submitted",
		"entry":         entry,
		"fee_breakdown": breakdown,
	})
}

// ApproveEntry marks an entry approved and assigns it the next program item
// number for its event. The number is claimed inside a transaction; the
// unique (event, item_number) index turns a concurrent double-assignment
// into a retryable conflict.
func (s *EntryService) ApproveEntry(c *fiber.Ctx) error {
	entryID := c.Params("id")
	if entryID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "entry id required in URL"})
	}

	var entry models.Entry

	assign := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&entry, "id = ?", entryID).Error; err != nil {
				return err
			}
			if entry.Approved && entry.ItemNumber != nil {
				return nil // idempotent
			}

			var maxItem int
			if err := tx.Model(&models.Entry{}).
				Where("event_id = ? AND item_number IS NOT NULL", entry.EventID).
				Select("COALESCE(MAX(item_number), 0)").
				Scan(&maxItem).Error; err != nil {
				return err
			}
			next := maxItem + 1

			return tx.Model(&entry).Updates(map[string]interface{}{
				"approved":    true,
				"item_number": next,
			}).Error
		})
	}

	err := assign()
	if isRetryableConflict(err) {
		log.Printf("⚠️  [ENTRY] item number conflict for entry %s, retrying once", entryID)
		err = assign()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "entry not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to approve entry", "details": err.Error()})
	}

	// re-read for the response
	if err := s.DB.Preload("Participants").First(&entry, "id = ?", entryID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching entry"})
	}
	return c.JSON(fiber.Map{"message": "entry approved", "entry": entry})
}

// GetEntryShares returns the per-participant informational split of the
// entry's fee snapshot.
func (s *EntryService) GetEntryShares(c *fiber.Ctx) error {
	entryID := c.Params("id")

	var entry models.Entry
	if err := s.DB.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "entry not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching entry"})
	}

	ids := make([]string, len(entry.Participants))
	for i, p := range entry.Participants {
		ids[i] = p.DancerID
	}

	shares, err := AllocateShares(entry.CalculatedFee, ids, entry.OwnerDancerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"entry_id":       entry.ID,
		"calculated_fee": entry.CalculatedFee,
		"shares":         shares,
	})
}

// GetEntriesByEvent lists an event's entries, newest first. ?approved=true
// narrows to the program (approved, numbered) entries ordered by item number.
func (s *EntryService) GetEntriesByEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")

	db := s.DB.Preload("Participants").Where("event_id = ?", eventID)
	if c.Query("approved") == "true" {
		db = db.Where("approved = true").Order("item_number ASC")
	} else {
		db = db.Order("created_at DESC")
	}

	var entries []models.Entry
	if err := db.Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch entries"})
	}
	return c.JSON(entries)
}

// GetEntriesByDancer lists every entry a dancer participates in (owned or
// not), optionally narrowed to one event via ?event_id=.
func (s *EntryService) GetEntriesByDancer(c *fiber.Ctx) error {
	dancerID := c.Params("dancer_id")

	db := s.DB.Preload("Participants").
		Joins("JOIN entry_participants ep ON ep.entry_id = entries.id").
		Where("ep.dancer_id = ?", dancerID)
	if eventID := c.Query("event_id"); eventID != "" {
		db = db.Where("entries.event_id = ?", eventID)
	}

	var entries []models.Entry
	if err := db.Order("entries.created_at DESC").Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch entries"})
	}
	return c.JSON(entries)
}

func (s *EntryService) GetEntryByID(c *fiber.Ctx) error {
	var entry models.Entry
	if err := s.DB.Preload("Participants.Dancer").First(&entry, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "entry not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching entry"})
	}
	return c.JSON(entry)
}

// WithdrawEntry soft-deletes an unapproved entry. Charged fees stay as-is:
// the solo counter is never decremented, so later entries keep their tiers.
func (s *EntryService) WithdrawEntry(c *fiber.Ctx) error {
	entryID := c.Params("id")

	var entry models.Entry
	if err := s.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "entry not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching entry"})
	}
	if entry.Approved {
		return c.Status(403).JSON(fiber.Map{"error": "approved entries cannot be withdrawn; contact the event organizer"})
	}
	if entry.PaymentStatus == models.PaymentPaid {
		return c.Status(403).JSON(fiber.Map{"error": "paid entries cannot be withdrawn"})
	}

	if err := s.DB.Delete(&entry).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to withdraw entry"})
	}
	log.Printf("Entry %s withdrawn at %s", entryID, time.Now().Format(time.RFC3339))
	return c.JSON(fiber.Map{"message": "entry withdrawn"})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func duplicateID(ids []string) string {
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}
