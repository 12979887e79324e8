package models

// Performance types — derived from participant count, never set directly
const (
	PerformanceSolo  = "solo"
	PerformanceDuet  = "duet"
	PerformanceTrio  = "trio"
	PerformanceGroup = "group"
)

// Entry types
const (
	EntryLive    = "live"
	EntryVirtual = "virtual"
)

// Payment statuses for entries
const (
	PaymentUnpaid  = "unpaid"
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// PerformanceTypeForCount derives the performance type from the participant
// count: 1=solo, 2=duet, 3=trio, 4+=group. Counts below 1 are the caller's
// validation problem and map to "".
func PerformanceTypeForCount(count int) string {
	switch {
	case count < 1:
		return ""
	case count == 1:
		return PerformanceSolo
	case count == 2:
		return PerformanceDuet
	case count == 3:
		return PerformanceTrio
	default:
		return PerformanceGroup
	}
}

// Entry is a submitted competitive item. CalculatedFee and
// RegistrationFeeCharged are snapshots taken at submission time; later fee
// schedule edits never recompute them.
type Entry struct {
	ID            string `json:"id" gorm:"primaryKey"`
	EventID       string `json:"event_id" gorm:"not null;index;uniqueIndex:idx_event_item_number"`
	OwnerDancerID string `json:"owner_dancer_id" gorm:"not null;index"` // the registrant billed for this entry
	StudioID      *string `json:"studio_id,omitempty" gorm:"index"`

	Title         string `json:"title" gorm:"not null"`
	Choreographer string `json:"choreographer"`
	MasteryLevel  string `json:"mastery_level" gorm:"type:varchar(32)"`
	ItemStyle     string `json:"item_style" gorm:"type:varchar(64)"`

	PerformanceType string `json:"performance_type" gorm:"type:varchar(16);not null"`
	EntryType       string `json:"entry_type" gorm:"type:varchar(16);default:'live'"`

	// Fee snapshot at submission time
	CalculatedFee          float64 `json:"calculated_fee" gorm:"default:0"` // performance fee only
	RegistrationFeeCharged float64 `json:"registration_fee_charged" gorm:"default:0"`
	FeeBreakdown           string  `json:"fee_breakdown" gorm:"type:text"`
	RegistrationBreakdown  string  `json:"registration_breakdown" gorm:"type:text"`
	SoloTier               int     `json:"solo_tier,omitempty" gorm:"default:0"` // 0 for non-solo entries

	PaymentStatus string `json:"payment_status" gorm:"type:varchar(16);default:'unpaid'"`
	Approved      bool   `json:"approved" gorm:"default:false"`
	ItemNumber    *int   `json:"item_number,omitempty" gorm:"uniqueIndex:idx_event_item_number"`

	Timestamps

	Participants []EntryParticipant `json:"participants,omitempty" gorm:"foreignKey:EntryID"`
}

// EntryParticipant is one dancer's slot in an entry, ordered by Position.
// Position order matters: the largest-remainder share allocation hands the
// leftover cents to the earliest positions.
type EntryParticipant struct {
	ID       string `json:"id" gorm:"primaryKey"`
	EntryID  string `json:"entry_id" gorm:"not null;index;uniqueIndex:idx_entry_position"`
	DancerID string `json:"dancer_id" gorm:"not null;index"`
	Position int    `json:"position" gorm:"not null;uniqueIndex:idx_entry_position"`

	Dancer *Dancer `json:"dancer,omitempty" gorm:"foreignKey:DancerID"`
}
