package models

import "time"

// Payment is one payment attempt against an entry, mirrored from the payment
// provider. Reference is the provider-side identifier (gateway transaction
// id, EFT reference, etc.) and is the dedupe key for the sync worker.
type Payment struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	EventID   string  `json:"event_id" gorm:"not null;index"`
	EntryID   string  `json:"entry_id" gorm:"not null;index"`
	Amount    float64 `json:"amount" gorm:"type:numeric(12,2);default:0"`
	Status    string  `json:"status" gorm:"type:varchar(16);default:'pending'"` // pending, paid, failed, refunded
	Method    string  `json:"method" gorm:"type:varchar(32)"`                   // e.g. "card", "eft", "manual"
	Reference string  `json:"reference" gorm:"type:varchar(128);uniqueIndex"`

	PaidAt *time.Time `json:"paid_at,omitempty"`

	Timestamps
}
