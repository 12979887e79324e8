package models

import "time"

// Score is one judge's sheet for one performance: five category subscores,
// each in [0,20], totalling [0,100]. One sheet per (entry, judge).
type Score struct {
	ID      string `json:"id" gorm:"primaryKey"`
	EventID string `json:"event_id" gorm:"not null;index"`
	EntryID string `json:"entry_id" gorm:"not null;uniqueIndex:idx_entry_judge"`
	JudgeID string `json:"judge_id" gorm:"not null;uniqueIndex:idx_entry_judge"`

	TechniqueScore    float64 `json:"technique_score" gorm:"default:0"`
	MusicalityScore   float64 `json:"musicality_score" gorm:"default:0"`
	PerformanceScore  float64 `json:"performance_score" gorm:"default:0"`
	StylingScore      float64 `json:"styling_score" gorm:"default:0"`
	ImpressionScore   float64 `json:"impression_score" gorm:"default:0"` // overall impression
	Total             float64 `json:"total" gorm:"default:0"`

	Comments    string    `json:"comments,omitempty" gorm:"type:text"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Subscores returns the five category values in sheet order.
func (s *Score) Subscores() []float64 {
	return []float64{s.TechniqueScore, s.MusicalityScore, s.PerformanceScore, s.StylingScore, s.ImpressionScore}
}
