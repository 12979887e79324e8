package models

import "time"

// Studio groups dancers under one registered dance school
type Studio struct {
	ID           string `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email" gorm:"index"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	Region       string `json:"region" gorm:"index"`
	Approved     bool   `json:"approved" gorm:"default:false"`

	Timestamps

	// Calculated (not stored)
	DancerCount int64 `json:"dancer_count,omitempty" gorm:"-"`
}

// Dancer is a registered competitor. Independent dancers have no studio.
type Dancer struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	NationalID  string    `json:"national_id" gorm:"type:varchar(32);uniqueIndex"`
	FirstName   string    `json:"first_name" gorm:"not null"`
	LastName    string    `json:"last_name" gorm:"not null"`
	SearchName  string    `json:"-" gorm:"index"` // ASCII-folded lowercase "first last" for search
	DateOfBirth time.Time `json:"date_of_birth"`
	Guardian    string    `json:"guardian,omitempty"` // required for minors, enforced upstream
	StudioID    *string   `json:"studio_id,omitempty" gorm:"index"`
	Approved    bool      `json:"approved" gorm:"default:false"`

	Timestamps

	Studio *Studio `json:"studio,omitempty" gorm:"foreignKey:StudioID"`
}

// DancerRegistration tracks per-(dancer,event) financial state: whether the
// one-time registration fee has been charged/paid and how many solo package
// tiers this dancer has claimed. SoloCount is the atomic counter behind solo
// tier assignment — it is only ever advanced under a row lock and is never
// decremented, so charged fees stay immutable snapshots even if an earlier
// solo entry is later withdrawn.
type DancerRegistration struct {
	ID                     string  `json:"id" gorm:"primaryKey"`
	DancerID               string  `json:"dancer_id" gorm:"not null;uniqueIndex:idx_dancer_event"`
	EventID                string  `json:"event_id" gorm:"not null;uniqueIndex:idx_dancer_event"`
	MasteryLevel           string  `json:"mastery_level"` // level at which the registration fee was charged
	RegistrationFeeCharged float64 `json:"registration_fee_charged" gorm:"default:0"`
	RegistrationFeePaid    bool    `json:"registration_fee_paid" gorm:"default:false"`
	SoloCount              int     `json:"solo_count" gorm:"default:0"`

	Timestamps
}
