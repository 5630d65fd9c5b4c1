package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Run sweeps expired sessions every cleanup interval until ctx is done.
// A failing iteration is logged and the loop carries on.
func (s *service) Run(ctx context.Context) {
	interval := s.settings.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithFields(logrus.Fields{
		"interval": interval.String(),
		"timeout":  s.settings.SessionTimeout.String(),
	}).Info("Session cleanup started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Session cleanup stopped")
			return
		case <-ticker.C:
			if err := s.safeSweep(); err != nil {
				log.WithError(err).Error("Session cleanup iteration failed")
			}
		}
	}
}

func (s *service) safeSweep() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panicked: %v", r)
		}
	}()

	removed := s.Sweep()
	log.WithFields(logrus.Fields{
		"removed":   len(removed),
		"remaining": s.store.Len(),
	}).Debug("Session cleanup iteration finished")

	return nil
}
