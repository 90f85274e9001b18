package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaleFailer marks in-progress interviews as failed once they outlive the
// session TTL. Satisfied by repositories.InterviewRepository.
type StaleFailer interface {
	FailStale(olderThan time.Duration) (int64, error)
}

// Sweeper periodically fails interviews abandoned mid-session. A candidate
// who exits keeps an in_progress record for resumption; past the TTL the
// record is closed out so HR dashboards do not show ghosts forever.
type Sweeper struct {
	cron     *cron.Cron
	logger   *zap.Logger
	store    StaleFailer
	ttl      time.Duration
	schedule string
}

func NewSweeper(store StaleFailer, ttl time.Duration, schedule string, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		cron:     cron.New(),
		logger:   logger,
		store:    store,
		ttl:      ttl,
		schedule: schedule,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("stale interview sweeper started",
		zap.String("schedule", s.schedule),
		zap.Duration("ttl", s.ttl))
	return nil
}

// Sweep runs one pass. Exposed so operators can trigger it out of band.
func (s *Sweeper) Sweep() {
	n, err := s.store.FailStale(s.ttl)
	if err != nil {
		s.logger.Error("stale interview sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("failed stale interviews", zap.Int64("count", n))
	}
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
