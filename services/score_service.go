package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"competition-entry-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MedalTier is the named band a judged total falls into.
type MedalTier string

const (
	MedalBronze     MedalTier = "Bronze"
	MedalSilver     MedalTier = "Silver"
	MedalSilverPlus MedalTier = "Silver+"
	MedalGold       MedalTier = "Gold"
	MedalLegend     MedalTier = "Legend"
	MedalOpus       MedalTier = "Opus"
	MedalElite      MedalTier = "Elite"
)

const maxSubscore = 20.0 // five categories, each out of 20, total out of 100

// MedalForTotal classifies a total in [0,100] with half-open boundaries:
// [0,70) Bronze, [70,75) Silver, [75,80) Silver+, [80,85) Gold,
// [85,90) Legend, [90,95) Opus, [95,100] Elite. The same classifier applies
// to a single judge's total and to the cross-judge average.
func MedalForTotal(total float64) MedalTier {
	switch {
	case total < 70:
		return MedalBronze
	case total < 75:
		return MedalSilver
	case total < 80:
		return MedalSilverPlus
	case total < 85:
		return MedalGold
	case total < 90:
		return MedalLegend
	case total < 95:
		return MedalOpus
	default:
		return MedalElite
	}
}

// AverageTotal is the cross-judge average of totals, rounded to 2 decimal
// places before any classification. Zero judges → 0.
func AverageTotal(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	return roundTo2(sum / float64(len(totals)))
}

func roundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}

type ScoreService struct {
	DB    *gorm.DB
	Redis *redis.Client // optional ranking cache, nil when REDIS_ADDR unset
}

func NewScoreService(db *gorm.DB, rdb *redis.Client) *ScoreService {
	return &ScoreService{DB: db, Redis: rdb}
}

// SubmitScore records (or replaces) one judge's sheet for an entry. Five
// subscores, each in [0,20]; the stored total is their sum.
func (s *ScoreService) SubmitScore(c *fiber.Ctx) error {
	type Req struct {
		JudgeID          string  `json:"judge_id" validate:"required"`
		TechniqueScore   float64 `json:"technique_score"`
		MusicalityScore  float64 `json:"musicality_score"`
		PerformanceScore float64 `json:"performance_score"`
		StylingScore     float64 `json:"styling_score"`
		ImpressionScore  float64 `json:"impression_score"`
		Comments         string  `json:"comments,omitempty"`
	}

	entryID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.JudgeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "judge_id is required"})
	}
	subscores := []float64{req.TechniqueScore, req.MusicalityScore, req.PerformanceScore, req.StylingScore, req.ImpressionScore}
	for _, v := range subscores {
		if v < 0 || v > maxSubscore {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("each subscore must be in [0,%g]", maxSubscore)})
		}
	}

	var entry models.Entry
	if err := s.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "entry not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching entry"})
	}
	if !entry.Approved {
		return c.Status(403).JSON(fiber.Map{"error": "cannot score an unapproved entry"})
	}

	var event models.Event
	if err := s.DB.First(&event, "id = ?", entry.EventID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event"})
	}

	total := 0.0
	for _, v := range subscores {
		total += v
	}

	var score models.Score
	err := s.DB.Where("entry_id = ? AND judge_id = ?", entryID, req.JudgeID).First(&score).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// New judge for this entry — enforce the panel size
		var judgeCount int64
		if err := s.DB.Model(&models.Score{}).Where("entry_id = ?", entryID).Count(&judgeCount).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "DB error counting scores"})
		}
		if judgeCount >= int64(event.JudgeCount) {
			return c.Status(403).JSON(fiber.Map{"error": fmt.Sprintf("entry already scored by the full panel of %d judges", event.JudgeCount)})
		}
		score = models.Score{
			ID:      uuid.NewString(),
			EventID: entry.EventID,
			EntryID: entryID,
			JudgeID: req.JudgeID,
		}
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching score"})
	}

	score.TechniqueScore = req.TechniqueScore
	score.MusicalityScore = req.MusicalityScore
	score.PerformanceScore = req.PerformanceScore
	score.StylingScore = req.StylingScore
	score.ImpressionScore = req.ImpressionScore
	score.Total = total
	score.Comments = req.Comments

	if err := s.DB.Save(&score).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save score", "details": err.Error()})
	}

	s.invalidateRankings(entry.EventID)

	return c.Status(201).JSON(fiber.Map{
		"message": "score submitted",
		"score":   score,
		"medal":   MedalForTotal(total),
	})
}

// JudgeScoreView is one judge's line in a tally.
type JudgeScoreView struct {
	JudgeID string    `json:"judge_id"`
	Total   float64   `json:"total"`
	Medal   MedalTier `json:"medal"`
}

// GetEntryTally returns per-judge totals plus the cross-judge average and
// its medal for one entry.
func (s *ScoreService) GetEntryTally(c *fiber.Ctx) error {
	entryID := c.Params("id")

	var scores []models.Score
	if err := s.DB.Where("entry_id = ?", entryID).Order("judge_id ASC").Find(&scores).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch scores"})
	}

	judges := make([]JudgeScoreView, len(scores))
	totals := make([]float64, len(scores))
	for i, sc := range scores {
		judges[i] = JudgeScoreView{JudgeID: sc.JudgeID, Total: sc.Total, Medal: MedalForTotal(sc.Total)}
		totals[i] = sc.Total
	}
	avg := AverageTotal(totals)

	return c.JSON(fiber.Map{
		"entry_id":    entryID,
		"judges":      judges,
		"judge_count": len(scores),
		"average":     avg,
		"medal":       MedalForTotal(avg),
	})
}

// RankedEntry is one line of an event ranking.
type RankedEntry struct {
	Rank            int       `json:"rank"`
	EntryID         string    `json:"entry_id"`
	ItemNumber      *int      `json:"item_number,omitempty"`
	Title           string    `json:"title"`
	PerformanceType string    `json:"performance_type"`
	MasteryLevel    string    `json:"mastery_level"`
	JudgeCount      int       `json:"judge_count"`
	Average         float64   `json:"average"`
	Medal           MedalTier `json:"medal"`
}

const rankingsCacheTTL = 30 * time.Second

func rankingsCacheKey(eventID string) string {
	return "rankings:" + eventID
}

// GetEventRankings ranks an event's scored entries by cross-judge average,
// highest first (ties broken by item number). Served from the redis cache
// when one is configured; the cache is dropped on every score submission.
func (s *ScoreService) GetEventRankings(c *fiber.Ctx) error {
	eventID := c.Params("id")
	ctx := context.Background()

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, rankingsCacheKey(eventID)).Result(); err == nil {
			var ranked []RankedEntry
			if json.Unmarshal([]byte(cached), &ranked) == nil {
				return c.JSON(ranked)
			}
		}
	}

	ranked, err := s.computeRankings(eventID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute rankings", "details": err.Error()})
	}

	if s.Redis != nil {
		if data, err := json.Marshal(ranked); err == nil {
			if err := s.Redis.Set(ctx, rankingsCacheKey(eventID), data, rankingsCacheTTL).Err(); err != nil {
				log.Printf("⚠️  [RANKINGS] failed to cache rankings for event %s: %v", eventID, err)
			}
		}
	}

	return c.JSON(ranked)
}

func (s *ScoreService) computeRankings(eventID string) ([]RankedEntry, error) {
	var entries []models.Entry
	if err := s.DB.Where("event_id = ? AND approved = true", eventID).Find(&entries).Error; err != nil {
		return nil, err
	}

	var scores []models.Score
	if err := s.DB.Where("event_id = ?", eventID).Find(&scores).Error; err != nil {
		return nil, err
	}
	totalsByEntry := make(map[string][]float64)
	for _, sc := range scores {
		totalsByEntry[sc.EntryID] = append(totalsByEntry[sc.EntryID], sc.Total)
	}

	ranked := make([]RankedEntry, 0, len(entries))
	for _, e := range entries {
		totals := totalsByEntry[e.ID]
		if len(totals) == 0 {
			continue // unscored entries don't rank
		}
		avg := AverageTotal(totals)
		ranked = append(ranked, RankedEntry{
			EntryID:         e.ID,
			ItemNumber:      e.ItemNumber,
			Title:           e.Title,
			PerformanceType: e.PerformanceType,
			MasteryLevel:    e.MasteryLevel,
			JudgeCount:      len(totals),
			Average:         avg,
			Medal:           MedalForTotal(avg),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return itemNumberOf(ranked[i]) < itemNumberOf(ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

func itemNumberOf(r RankedEntry) int {
	if r.ItemNumber == nil {
		return math.MaxInt32
	}
	return *r.ItemNumber
}

func (s *ScoreService) invalidateRankings(eventID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), rankingsCacheKey(eventID)).Err(); err != nil {
		log.Printf("⚠️  [RANKINGS] failed to invalidate cache for event %s: %v", eventID, err)
	}
}
