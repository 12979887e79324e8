// services/scheduler.go
package services

import (
	"log"
	"time"

	"competition-entry-system/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *EventService) StartDeadlineScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: close registration on events past their deadline
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var events []models.Event
			now := time.Now()
			err := s.DB.Where("status = ? AND registration_deadline <= ?", models.EventRegistrationOpen, now).
				Find(&events).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, e := range events {
				e.Status = models.EventRegistrationClosed
				if err := s.DB.Save(&e).Error; err != nil {
					log.Printf("[Scheduler] Failed to close registration for event %s: %v", e.ID, err)
				} else {
					log.Printf("✅ Registration closed for event: %s", e.Name)
				}
			}
		}),
	)
}
