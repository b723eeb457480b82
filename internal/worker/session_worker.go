package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionCloser closes class sessions whose window has ended.
type SessionCloser interface {
	CloseExpired(ctx context.Context) (int, error)
}

// SessionWorker sweeps expired class sessions on a fixed interval.
type SessionWorker struct {
	closer   SessionCloser
	interval time.Duration
	log      zerolog.Logger
}

func NewSessionWorker(closer SessionCloser, interval time.Duration, log zerolog.Logger) *SessionWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SessionWorker{
		closer:   closer,
		interval: interval,
		log:      log.With().Str("component", "session_worker").Logger(),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *SessionWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("SessionWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SessionWorker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SessionWorker) sweep(ctx context.Context) {
	n, err := w.closer.CloseExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// Storage hiccups are retried on the next tick.
		w.log.Error().Err(err).Msg("Expired session sweep failed")
		return
	}
	if n > 0 {
		w.log.Info().Int("closed", n).Msg("Closed expired sessions")
	}
}
