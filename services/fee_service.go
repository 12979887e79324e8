package services

import (
	"errors"
	"fmt"
	"log"

	"competition-entry-system/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// FeeBreakdown is the full fee picture for one entry at submission time.
// Breakdown strings are deterministic: the same inputs always produce the
// same text, so a snapshot can be reconstructed and audited later.
type FeeBreakdown struct {
	PerformanceFee        float64  `json:"performance_fee"`
	RegistrationFee       float64  `json:"registration_fee"`
	TotalFee              float64  `json:"total_fee"`
	Breakdown             string   `json:"breakdown"`
	RegistrationBreakdown string   `json:"registration_breakdown"`
	SoloCount             int      `json:"solo_count,omitempty"` // tier claimed by this solo, 0 for non-solos
	Warnings              []string `json:"warnings,omitempty"`
}

// amountPrinter gives grouped, 2-decimal amounts in breakdown text
var amountPrinter = message.NewPrinter(language.English)

func formatAmount(currency string, amount float64) string {
	if currency == "" {
		currency = "ZAR"
	}
	return amountPrinter.Sprintf("%s %.2f", currency, amount)
}

// ComputeFeeBreakdown is the pure fee calculator. soloTier is the package
// tier this solo claims (prior solo count + 1, ignored for non-solos) and
// chargeRegistration is the already-decided registration-fee eligibility —
// callers derive it from the stored DancerRegistration row, never from a
// request flag.
func ComputeFeeBreakdown(fs models.FeeSchedule, count int, soloTier int, chargeRegistration bool) (FeeBreakdown, error) {
	perfFee, warnings, err := ResolvePerformanceFee(fs, count, soloTier)
	if err != nil {
		return FeeBreakdown{}, err
	}

	bd := FeeBreakdown{
		PerformanceFee: perfFee,
		Warnings:       warnings,
	}

	cur := fs.Currency
	switch models.PerformanceTypeForCount(count) {
	case models.PerformanceSolo:
		bd.SoloCount = soloTier
		bd.Breakdown = fmt.Sprintf("Solo tier %d: %s (package price %s, previously charged %s)",
			soloTier,
			formatAmount(cur, perfFee),
			formatAmount(cur, SoloPackagePrice(fs, soloTier)),
			formatAmount(cur, SoloPackagePrice(fs, soloTier-1)))
	case models.PerformanceDuet:
		bd.Breakdown = fmt.Sprintf("Duet: 2 dancers x %s = %s", formatAmount(cur, fs.DuoTrioFeePerDancer), formatAmount(cur, perfFee))
	case models.PerformanceTrio:
		bd.Breakdown = fmt.Sprintf("Trio: 3 dancers x %s = %s", formatAmount(cur, fs.DuoTrioFeePerDancer), formatAmount(cur, perfFee))
	default:
		perDancer := fs.GroupFeePerDancer
		label := "Group"
		if count >= largeGroupMinSize {
			perDancer = fs.LargeGroupFeePerDancer
			label = "Large group"
		}
		bd.Breakdown = fmt.Sprintf("%s: %d dancers x %s = %s", label, count, formatAmount(cur, perDancer), formatAmount(cur, perfFee))
	}

	if chargeRegistration {
		bd.RegistrationFee = fs.RegistrationFeePerDancer
		bd.RegistrationBreakdown = fmt.Sprintf("Registration fee: %s (first entry for this event)", formatAmount(cur, fs.RegistrationFeePerDancer))
		if fs.RegistrationFeePerDancer == 0 {
			bd.Warnings = append(bd.Warnings, "registration fee is not configured on the fee schedule; a zero fee was used")
		}
	} else {
		bd.RegistrationBreakdown = "Registration fee already charged for this event"
	}

	bd.TotalFee = bd.PerformanceFee + bd.RegistrationFee
	return bd, nil
}

// registrationFeeDue decides registration-fee eligibility from stored state
// only. A missing row means the dancer has never been charged for this
// event; an existing row with a recorded charge (or marked paid) means the
// fee must not be charged again.
func registrationFeeDue(reg *models.DancerRegistration) bool {
	if reg == nil {
		return true
	}
	return !reg.RegistrationFeePaid && reg.RegistrationFeeCharged == 0
}

// FeeService answers read-only fee questions (quotes). The authoritative
// snapshot is taken by EntryService at submission time.
type FeeService struct {
	DB *gorm.DB
}

func NewFeeService(db *gorm.DB) *FeeService {
	return &FeeService{DB: db}
}

// QuoteEntryFee computes the fee an entry would be charged if submitted now,
// without claiming a solo tier or touching registration state.
func (s *FeeService) QuoteEntryFee(c *fiber.Ctx) error {
	type Req struct {
		EventID          string   `json:"event_id" validate:"required"`
		DancerID         string   `json:"dancer_id" validate:"required"` // owner/registrant
		ParticipantIDs   []string `json:"participant_ids" validate:"required"`
		EntryType        string   `json:"entry_type,omitempty"`
		// Accepted for backwards compatibility but deliberately ignored:
		// eligibility comes from stored registration state only.
		RegistrationFeeDue *bool `json:"registration_fee_due,omitempty"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.EventID == "" || req.DancerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "event_id and dancer_id are required"})
	}
	if len(req.ParticipantIDs) < 1 {
		return c.Status(400).JSON(fiber.Map{"error": ErrInvalidParticipantCount.Error()})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	reg, err := s.loadRegistration(req.DancerID, req.EventID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching registration state", "details": err.Error()})
	}

	soloTier := 0
	if models.PerformanceTypeForCount(len(req.ParticipantIDs)) == models.PerformanceSolo {
		soloTier = soloCountOf(reg) + 1
	}

	bd, err := ComputeFeeBreakdown(event.FeeSchedule, len(req.ParticipantIDs), soloTier, registrationFeeDue(reg))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	for _, w := range bd.Warnings {
		log.Printf("⚠️  [FEE] quote for event %s: %s", req.EventID, w)
	}

	return c.JSON(bd)
}

// loadRegistration returns nil (not an error) when no row exists yet.
func (s *FeeService) loadRegistration(dancerID, eventID string) (*models.DancerRegistration, error) {
	var reg models.DancerRegistration
	err := s.DB.Where("dancer_id = ? AND event_id = ?", dancerID, eventID).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func soloCountOf(reg *models.DancerRegistration) int {
	if reg == nil {
		return 0
	}
	return reg.SoloCount
}
