package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"competition-entry-system/models"
	"competition-entry-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FinancialSummary is a dancer's rolled-up position for one event.
type FinancialSummary struct {
	DancerID                   string  `json:"dancer_id"`
	EventID                    string  `json:"event_id"`
	Currency                   string  `json:"currency"`
	RegistrationFeeAmount      float64 `json:"registration_fee_amount"`
	RegistrationFeeOutstanding float64 `json:"registration_fee_outstanding"`
	TotalEntryOutstanding      float64 `json:"total_entry_outstanding"`
	TotalOutstanding           float64 `json:"total_outstanding"`
	TotalPaid                  float64 `json:"total_paid"`
}

// EntryObligation is one entry's contribution to a dancer's ledger: the
// dancer's effective amount (full fee for owned solos, allocated share for
// shared entries) and whether the entry has been paid.
type EntryObligation struct {
	EntryID string  `json:"entry_id"`
	Amount  float64 `json:"amount"`
	Paid    bool    `json:"paid"`
}

// BuildObligations derives a dancer's per-entry amounts from loaded entry
// rows. Solos count at their full fee snapshot; shared entries count at the
// dancer's allocated share. An entry whose participant list failed to load
// falls back to the stored CalculatedFee snapshot rather than aborting the
// whole aggregation.
func BuildObligations(entries []models.Entry, dancerID string) []EntryObligation {
	obligations := make([]EntryObligation, 0, len(entries))
	for _, e := range entries {
		amount := e.CalculatedFee
		if e.PerformanceType != models.PerformanceSolo {
			if len(e.Participants) == 0 {
				log.Printf("⚠️  [FINANCE] entry %s has no loaded participants, falling back to stored fee snapshot", e.ID)
			} else {
				ids := make([]string, len(e.Participants))
				for i, p := range e.Participants {
					ids[i] = p.DancerID
				}
				amount = ShareForDancer(e.CalculatedFee, ids, dancerID)
			}
		}
		obligations = append(obligations, EntryObligation{
			EntryID: e.ID,
			Amount:  amount,
			Paid:    e.PaymentStatus == models.PaymentPaid,
		})
	}
	return obligations
}

// SummarizeLedger folds the registration state and per-entry obligations
// into the summary. Pure; an empty ledger yields an all-zero summary.
func SummarizeLedger(registrationCharged float64, registrationPaid bool, obligations []EntryObligation) FinancialSummary {
	summary := FinancialSummary{RegistrationFeeAmount: registrationCharged}
	if registrationPaid {
		summary.TotalPaid += registrationCharged
	} else {
		summary.RegistrationFeeOutstanding = registrationCharged
	}
	for _, o := range obligations {
		if o.Paid {
			summary.TotalPaid += o.Amount
		} else {
			summary.TotalEntryOutstanding += o.Amount
		}
	}
	summary.TotalOutstanding = summary.RegistrationFeeOutstanding + summary.TotalEntryOutstanding
	return summary
}

type FinanceService struct {
	DB *gorm.DB
}

func NewFinanceService(db *gorm.DB) *FinanceService {
	return &FinanceService{DB: db}
}

// summarizeDancer loads a dancer's registration state and entries for an
// event and folds them. Missing registration row means nothing charged yet.
func (s *FinanceService) summarizeDancer(dancerID, eventID, currency string) (FinancialSummary, error) {
	var reg models.DancerRegistration
	regCharged, regPaid := 0.0, false
	err := s.DB.Where("dancer_id = ? AND event_id = ?", dancerID, eventID).First(&reg).Error
	if err == nil {
		regCharged, regPaid = reg.RegistrationFeeCharged, reg.RegistrationFeePaid
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return FinancialSummary{}, err
	}

	var entries []models.Entry
	if err := s.DB.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Joins("JOIN entry_participants ep ON ep.entry_id = entries.id").
		Where("ep.dancer_id = ? AND entries.event_id = ?", dancerID, eventID).
		Find(&entries).Error; err != nil {
		return FinancialSummary{}, err
	}

	summary := SummarizeLedger(regCharged, regPaid, BuildObligations(entries, dancerID))
	summary.DancerID = dancerID
	summary.EventID = eventID
	summary.Currency = currency
	return summary, nil
}

// GetDancerSummary returns one dancer's financial summary for an event.
func (s *FinanceService) GetDancerSummary(c *fiber.Ctx) error {
	eventID := c.Params("id")
	dancerID := c.Params("dancer_id")

	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	summary, err := s.summarizeDancer(dancerID, eventID, event.FeeSchedule.Currency)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to aggregate finances", "details": err.Error()})
	}
	return c.JSON(summary)
}

// ReconciliationReport is the event-level roll-up archived for audit.
type ReconciliationReport struct {
	EventID          string             `json:"event_id"`
	EventName        string             `json:"event_name"`
	Currency         string             `json:"currency"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Dancers          []FinancialSummary `json:"dancers"`
	TotalOutstanding float64            `json:"total_outstanding"`
	TotalPaid        float64            `json:"total_paid"`
}

func (s *FinanceService) buildReconciliation(eventID string) (*ReconciliationReport, error) {
	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		return nil, err
	}

	// Every dancer with financial state at this event: a registration row
	// or participation in any entry.
	var dancerIDs []string
	if err := s.DB.Raw(`
        SELECT DISTINCT dancer_id FROM (
            SELECT dancer_id FROM dancer_registrations WHERE event_id = ? AND deleted_at IS NULL
            UNION
            SELECT ep.dancer_id FROM entry_participants ep
            JOIN entries e ON e.id = ep.entry_id
            WHERE e.event_id = ? AND e.deleted_at IS NULL
        ) d
        ORDER BY dancer_id
    `, eventID, eventID).Scan(&dancerIDs).Error; err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		EventID:     event.ID,
		EventName:   event.Name,
		Currency:    event.FeeSchedule.Currency,
		GeneratedAt: time.Now().UTC(),
	}
	for _, dancerID := range dancerIDs {
		summary, err := s.summarizeDancer(dancerID, eventID, event.FeeSchedule.Currency)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize dancer %s: %w", dancerID, err)
		}
		report.Dancers = append(report.Dancers, summary)
		report.TotalOutstanding += summary.TotalOutstanding
		report.TotalPaid += summary.TotalPaid
	}
	return report, nil
}

// GetEventReconciliation returns the full per-dancer roll-up for an event.
func (s *FinanceService) GetEventReconciliation(c *fiber.Ctx) error {
	report, err := s.buildReconciliation(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to build reconciliation", "details": err.Error()})
	}
	return c.JSON(report)
}

// ArchiveEventReconciliation builds the roll-up and uploads it to R2 as a
// timestamped JSON object for the audit trail.
func (s *FinanceService) ArchiveEventReconciliation(c *fiber.Ctx) error {
	eventID := c.Params("id")
	report, err := s.buildReconciliation(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to build reconciliation", "details": err.Error()})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to encode report"})
	}

	key := fmt.Sprintf("reconciliation/%s/%s.json", eventID, report.GeneratedAt.Format("2006-01-02T15-04-05Z"))
	url, err := utils.UploadBytesToR2(data, key, "application/json")
	if err != nil {
		log.Printf("ERROR: failed to archive reconciliation for event %s: %v", eventID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to archive report", "details": err.Error()})
	}

	log.Printf("✅ Reconciliation for event %s archived: %s", eventID, url)
	return c.Status(201).JSON(fiber.Map{"message": "reconciliation archived", "url": url, "report": report})
}

// RecordPayment records a payment against an entry and rolls the entry's
// payment status forward atomically. A paid payment that covers an entry
// which carried the registration charge also settles the dancer's
// registration fee.
func (s *FinanceService) RecordPayment(c *fiber.Ctx) error {
	type Req struct {
		Amount    float64 `json:"amount"`
		Status    string  `json:"status" validate:"oneof=pending paid failed refunded"`
		Method    string  `json:"method,omitempty"`
		Reference string  `json:"reference,omitempty"`
	}

	entryID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	switch req.Status {
	case "pending", "paid", "failed", "refunded":
	default:
		return c.Status(400).JSON(fiber.Map{"error": "status must be one of pending, paid, failed, refunded"})
	}
	if req.Status == "paid" && req.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "amount must be > 0 for 'paid'"})
	}

	reference := req.Reference
	if reference == "" {
		reference = "manual-" + uuid.NewString()
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.Entry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ?", entryID).Error; err != nil {
			return err
		}

		var paidAt *time.Time
		if req.Status == "paid" {
			now := time.Now()
			paidAt = &now
		}
		payment = models.Payment{
			ID:        uuid.NewString(),
			EventID:   entry.EventID,
			EntryID:   entry.ID,
			Amount:    req.Amount,
			Status:    req.Status,
			Method:    req.Method,
			Reference: reference,
			PaidAt:    paidAt,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		return applyPaymentToEntry(tx, &entry, req.Status)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "entry not found"})
		}
		log.Printf("ERROR: failed to record payment for entry %s: %v", entryID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to record payment", "details": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "payment recorded", "payment": payment})
}

// applyPaymentToEntry maps a payment status onto the entry (and, for a paid
// entry carrying the registration charge, onto the registration row). Must
// run inside the caller's transaction with the entry row locked.
func applyPaymentToEntry(tx *gorm.DB, entry *models.Entry, paymentStatus string) error {
	var newStatus string
	switch paymentStatus {
	case "paid":
		newStatus = models.PaymentPaid
	case "pending":
		newStatus = models.PaymentPending
	case "failed":
		newStatus = models.PaymentFailed
	case "refunded":
		newStatus = models.PaymentUnpaid
	default:
		return fmt.Errorf("unknown payment status %q", paymentStatus)
	}

	// paid is terminal; a late "failed" webhook must not unpay an entry
	if entry.PaymentStatus == models.PaymentPaid && newStatus != models.PaymentPaid {
		return nil
	}

	if err := tx.Model(entry).Update("payment_status", newStatus).Error; err != nil {
		return err
	}

	if newStatus == models.PaymentPaid && entry.RegistrationFeeCharged > 0 {
		if err := tx.Model(&models.DancerRegistration{}).
			Where("dancer_id = ? AND event_id = ?", entry.OwnerDancerID, entry.EventID).
			Update("registration_fee_paid", true).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetEventPayments lists an event's payments, newest first.
func (s *FinanceService) GetEventPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	if err := s.DB.Where("event_id = ?", c.Params("id")).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch payments"})
	}
	return c.JSON(payments)
}
