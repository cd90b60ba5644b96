// Package scheduler runs the background maintenance jobs.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/lshigami/certprep/internal/service"
	"github.com/rs/zerolog/log"
)

const expireInterval = 5 * time.Minute

// Scheduler owns the recurring jobs. The only one today is the simulation
// janitor: it force-completes sittings whose clock ran out without the client
// ever calling complete.
type Scheduler struct {
	cron   *gocron.Scheduler
	simSvc service.SimulationService
}

func New(simSvc service.SimulationService) *Scheduler {
	return &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		simSvc: simSvc,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.Every(expireInterval).Do(func() {
		closed, err := s.simSvc.ExpireStale()
		if err != nil {
			log.Error().Err(err).Msg("Simulation janitor run failed")
			return
		}
		if closed > 0 {
			log.Info().Int("closed", closed).Msg("Simulation janitor closed expired sittings")
		}
	})
	if err != nil {
		return err
	}
	s.cron.StartAsync()
	log.Info().Dur("interval", expireInterval).Msg("Background scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
