// workers/payment_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"competition-entry-system/models"
	"competition-entry-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProviderPayment matches the JSON the payment provider's change feed returns.
type ProviderPayment struct {
	Reference string     `json:"reference"` // provider transaction id, dedupe key
	EntryID   string     `json:"entry_id"`
	Amount    float64    `json:"amount"`
	Status    string     `json:"status"` // pending, paid, failed, refunded
	Method    string     `json:"method"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PaymentSyncClient polls the payment provider and mirrors results into the
// payments table, rolling entry payment status forward.
type PaymentSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewPaymentSyncClient(db *gorm.DB) *PaymentSyncClient {
	baseURL := os.Getenv("PAYMENT_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("PAYMENT_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("COMPETITION_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("COMPETITION_SERVICE_TOKEN environment variable is required for payment sync")
	}

	return &PaymentSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		DB:         db,
		HTTPClient: utils.HTTPClient,
	}
}

func (c *PaymentSyncClient) GetChangedPayments(ctx context.Context, since time.Time) ([]ProviderPayment, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/payments/changes", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("payment service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Payments []ProviderPayment `json:"payments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode payment service response: %w", err)
	}

	return response.Payments, nil
}

// PollPayments mirrors provider payments on a fixed interval. Each change is
// applied in its own transaction: upsert the payment row by reference, then
// roll the entry's payment status forward (paid is terminal; a late failure
// never unpays an entry). A paid payment on an entry that carried the
// registration charge also settles the owner's registration fee.
func PollPayments(ctx context.Context, client *PaymentSyncClient, pollInterval time.Duration) {
	log.Println("Starting payment polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Payment polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			payments, err := client.GetChangedPayments(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling payments: %v", err)
				continue
			}

			count := len(payments)
			if count == 0 {
				continue
			}
			log.Printf("📥 Received %d payment change(s) from payment service.", count)

			failed := 0
			for _, p := range payments {
				if err := client.applyPayment(p); err != nil {
					log.Printf("❌ Failed to apply payment %s: %v", p.Reference, err)
					failed++
				}
			}
			if failed > 0 {
				// Do NOT advance lastSyncTime — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Applied %d payment change(s).", count)
		}
	}
}

func (c *PaymentSyncClient) applyPayment(p ProviderPayment) error {
	return c.DB.Transaction(func(tx *gorm.DB) error {
		var entry models.Entry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ?", p.EntryID).Error; err != nil {
			return fmt.Errorf("entry %s not found for payment %s: %w", p.EntryID, p.Reference, err)
		}

		payment := models.Payment{
			ID:        uuid.NewString(),
			EventID:   entry.EventID,
			EntryID:   entry.ID,
			Amount:    p.Amount,
			Status:    p.Status,
			Method:    p.Method,
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "status", "method", "paid_at", "updated_at"}),
		}).Create(&payment).Error; err != nil {
			return err
		}

		var newStatus string
		switch p.Status {
		case "paid":
			newStatus = models.PaymentPaid
		case "pending":
			newStatus = models.PaymentPending
		case "failed":
			newStatus = models.PaymentFailed
		case "refunded":
			newStatus = models.PaymentUnpaid
		default:
			return fmt.Errorf("unknown payment status %q", p.Status)
		}

		if entry.PaymentStatus == models.PaymentPaid && newStatus != models.PaymentPaid {
			return nil // paid is terminal
		}
		if err := tx.Model(&entry).Update("payment_status", newStatus).Error; err != nil {
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
	})
}
