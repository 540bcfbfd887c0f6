package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/comparapy/backend/internal/usecase"
)

// Scheduler triggers full scrape runs on a cron schedule. Runs already in
// flight are not interrupted; cron simply starts the next one when due.
type Scheduler struct {
	sched   *cron.Cron
	scraper *usecase.ScrapeService
}

func New(scraper *usecase.ScrapeService) *Scheduler {
	return &Scheduler{
		sched:   cron.New(),
		scraper: scraper,
	}
}

// Start registers the scrape job and starts the cron loop. An empty spec
// disables scheduling entirely.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		return nil
	}

	_, err := s.sched.AddFunc(spec, func() {
		summary, err := s.scraper.Run(context.Background())
		if err != nil {
			log.Printf("[CRON] scrape run failed: %v", err)
			return
		}
		log.Printf("[CRON] scrape run complete: %d items", summary.Total)
	})
	if err != nil {
		return fmt.Errorf("schedule scrape: %w", err)
	}

	s.sched.Start()
	log.Printf("[CRON] scrape scheduled: %q", spec)
	return nil
}

// Stop halts the cron loop; a running job finishes on its own.
func (s *Scheduler) Stop() {
	s.sched.Stop()
}
