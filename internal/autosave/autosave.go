package autosave

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"partyroom-backend/config"
)

// Flusher persists every modified session.
type Flusher interface {
	FlushDirty(ctx context.Context) (int, error)
}

// Service periodically flushes modified sessions to the store.
type Service struct {
	cfg     config.AutosaveConfig
	flusher Flusher
	log     *logrus.Logger
}

// NewService creates an autosave service.
func NewService(cfg config.AutosaveConfig, flusher Flusher, log *logrus.Logger) *Service {
	return &Service{cfg: cfg, flusher: flusher, log: log}
}

// Run flushes on every interval until ctx is cancelled, then flushes once more
// so nothing modified is lost at shutdown.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("Autosave is disabled. Not starting.")
		return
	}
	s.log.WithField("interval", s.cfg.Interval).Info("Starting autosave service...")

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Autosave service shutting down.")
			// ctx is already done; give the final flush its own deadline.
			finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.FlushOnce(finalCtx)
			cancel()
			return
		case <-timer.C:
			s.FlushOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// FlushOnce performs a single flush and logs the outcome.
func (s *Service) FlushOnce(ctx context.Context) {
	n, err := s.flusher.FlushDirty(ctx)
	if err != nil {
		s.log.WithError(err).WithField("saved", n).Error("autosave failed for some sessions")
		return
	}
	if n > 0 {
		s.log.WithField("saved", n).Debug("autosave complete")
	}
}
