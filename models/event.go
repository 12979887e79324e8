package models

import (
	"time"

	"gorm.io/gorm"
)

// Participation modes — which entry types an event accepts
const (
	ModeHybrid      = "hybrid"
	ModeLiveOnly    = "live_only"
	ModeVirtualOnly = "virtual_only"
)

// Event statuses
const (
	EventDraft              = "draft"
	EventRegistrationOpen   = "registration_open"
	EventRegistrationClosed = "registration_closed"
	EventCompleted          = "completed"
)

// FeeSchedule is the per-event pricing configuration. It is strongly typed
// on purpose: a field left at zero means "not configured" and resolves to a
// zero fee with a warning, never an error (registration must not be blocked
// by an incomplete schedule).
type FeeSchedule struct {
	RegistrationFeePerDancer float64 `json:"registration_fee_per_dancer" gorm:"default:0"`
	Solo1Fee                 float64 `json:"solo_1_fee" gorm:"default:0"` // cumulative package price for 1 solo
	Solo2Fee                 float64 `json:"solo_2_fee" gorm:"default:0"` // cumulative package price for 2 solos
	Solo3Fee                 float64 `json:"solo_3_fee" gorm:"default:0"` // cumulative package price for 3 solos
	SoloAdditionalFee        float64 `json:"solo_additional_fee" gorm:"default:0"`
	DuoTrioFeePerDancer      float64 `json:"duo_trio_fee_per_dancer" gorm:"default:0"`
	GroupFeePerDancer        float64 `json:"group_fee_per_dancer" gorm:"default:0"`       // 4–9 participants
	LargeGroupFeePerDancer   float64 `json:"large_group_fee_per_dancer" gorm:"default:0"` // 10+
	Currency                 string  `json:"currency" gorm:"type:varchar(8);default:'ZAR'"`
}

// Event represents one competition event (a weekend, a regional leg, etc.)
type Event struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	Name                 string    `json:"name" gorm:"not null"`
	Slug                 string    `json:"slug" gorm:"uniqueIndex"`
	Description          string    `json:"description"`
	Venue                string    `json:"venue"`
	Region               string    `json:"region" gorm:"index"`
	EventDate            time.Time `json:"event_date" gorm:"not null"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Status               string    `json:"status" gorm:"default:'draft'"`
	ParticipationMode    string    `json:"participation_mode" gorm:"type:varchar(16);default:'hybrid'"`
	JudgeCount           int       `json:"judge_count" gorm:"default:3"`

	FeeSchedule FeeSchedule `json:"fee_schedule" gorm:"embedded;embeddedPrefix:fee_"`

	Timestamps

	// Calculated fields (not stored in DB)
	EntryCount   int64 `json:"entry_count,omitempty" gorm:"-"`
	PaymentCount int64 `json:"payment_count,omitempty" gorm:"-"`
}

// MiniEvent is a brief summary for listing views
type MiniEvent struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	Region               string    `json:"region"`
	Venue                string    `json:"venue"`
	EventDate            time.Time `json:"event_date"`
	RegistrationDeadline time.Time `json:"registration_deadline"`
	Status               string    `json:"status"`
	ParticipationMode    string    `json:"participation_mode"`
	EntryCount           int64     `json:"entry_count"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
