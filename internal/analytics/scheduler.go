package analytics

import (
	"log"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	schedule string
}

func NewScheduler(service *Service, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		service:  service,
		schedule: schedule,
	}
}

// Start запускає нічний portfolio sweep за cron-розкладом
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Println("📊 Running nightly portfolio sweep...")
		if err := s.service.RunPortfolioSweep(); err != nil {
			log.Printf("❌ Portfolio sweep failed: %v", err)
		} else {
			log.Println("✅ Portfolio sweep completed")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("✅ Portfolio sweep scheduler started (%s)", s.schedule)
	return nil
}

// Stop зупиняє scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("⏹ Portfolio sweep scheduler stopped")
}

// RunNow запускає sweep негайно (для ручного тригера з API)
func (s *Scheduler) RunNow() error {
	log.Println("📊 Running portfolio sweep now...")
	return s.service.RunPortfolioSweep()
}
