package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionPurger is implemented by service.SessionService.
type SessionPurger interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// SessionSweeper deletes abandoned procurement sessions on a cron schedule.
type SessionSweeper struct {
	sessions SessionPurger
	cron     *cron.Cron
}

// NewSessionSweeper parses schedule (standard five-field cron or a
// descriptor such as "@every 15m") and returns an unstarted sweeper.
func NewSessionSweeper(sessions SessionPurger, schedule string) (*SessionSweeper, error) {
	s := &SessionSweeper{
		sessions: sessions,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs the schedule until ctx is canceled, then waits for a running
// sweep to finish.
func (s *SessionSweeper) Start(ctx context.Context) {
	log.Info().Msg("Starting session sweeper")
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info().Msg("Session sweeper stopped")
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sweep expired sessions")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("Expired sessions swept")
	}
}
