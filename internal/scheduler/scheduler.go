package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultSweepInterval is how often expired sessions are dropped
const DefaultSweepInterval = 10 * time.Minute

// Sweeper removes expired entries and reports how many were dropped
type Sweeper interface {
	Sweep(now time.Time) int
}

type namedSweeper struct {
	name string
	Sweeper
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweepers  []namedSweeper
	interval  time.Duration
}

// New creates a new scheduler that sweeps sessions every interval
func New(sessions Sweeper, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweepers:  []namedSweeper{{name: "sessions", Sweeper: sessions}},
		interval:  interval,
	}
}

// AddSweeper sweeps another store on the same interval. It must be called
// before Start.
func (s *Scheduler) AddSweeper(name string, sweeper Sweeper) {
	s.sweepers = append(s.sweepers, namedSweeper{name: name, Sweeper: sweeper})
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweepSessions); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunManualCheck sweeps every store immediately and returns how many
// entries were dropped
func (s *Scheduler) RunManualCheck() int {
	return s.sweepSessions()
}

func (s *Scheduler) sweepSessions() int {
	now := time.Now()
	total := 0
	for _, sw := range s.sweepers {
		removed := sw.Sweep(now)
		if removed > 0 {
			log.Printf("Swept %d expired %s", removed, sw.name)
		}
		total += removed
	}
	return total
}
