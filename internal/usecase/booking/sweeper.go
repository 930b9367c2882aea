package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

// Sweeper abandons pending_payment bookings whose checkout never confirmed
// within the configured window, releasing their reservations so the slots go
// back on sale. It runs off the request path.
type Sweeper struct {
	repo   domain.Repository
	ledger ledger.Ledger
	audit  *audit.Dispatcher
	logger zerolog.Logger

	window   time.Duration
	interval time.Duration
}

func NewSweeper(
	repo domain.Repository,
	ldg ledger.Ledger,
	auditDispatcher *audit.Dispatcher,
	logger zerolog.Logger,
	window time.Duration,
	interval time.Duration,
) *Sweeper {
	return &Sweeper{
		repo:     repo,
		ledger:   ldg,
		audit:    auditDispatcher,
		logger:   logger,
		window:   window,
		interval: interval,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("pending sweep failed")
			} else if n > 0 {
				s.logger.Info().Int("abandoned", n).Msg("swept stale pending bookings")
			}
		}
	}
}

// Sweep abandons every pending booking created before now-window. Returns how
// many were abandoned.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := timezone.Now().Add(-s.window)

	stale, err := s.repo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		b := &stale[i]

		b.Status = string(domain.StatusCancelled)
		now := timezone.Now()
		b.CancelledAt = &now

		// Conditional on still-pending: a confirm callback racing the sweep
		// wins and the row is left alone.
		ok, err := s.repo.UpdateBookingIfStatus(ctx, b, string(domain.StatusPendingPayment))
		if err != nil {
			s.logger.Error().Err(err).Uint("booking_id", b.ID).Msg("sweep: update failed")
			continue
		}
		if !ok {
			continue
		}

		// The abandon is committed once the conditional update wins; the
		// reservation must not outlive it.
		releaseOrAlert(ctx, s.ledger, s.audit, s.logger, b.ProviderID, b.Date, b.Time, b.ID)

		s.audit.Dispatch(audit.Event{
			Action:   "booking_abandoned",
			Entity:   "booking",
			EntityID: &b.ID,
		})

		swept++
	}

	return swept, nil
}
