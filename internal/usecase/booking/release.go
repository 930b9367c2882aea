package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
)

const (
	releaseAttempts = 3
	releaseBackoff  = 200 * time.Millisecond
)

// releaseOrAlert frees a slot whose booking has already committed its status
// transition. The transition cannot be rolled back here, so a failing release
// never surfaces as an error for work that succeeded: it retries with backoff
// and then records an integrity_alert so the leaked reservation is reconciled
// by an operator instead of blocking the slot forever in silence.
func releaseOrAlert(
	ctx context.Context,
	ldg ledger.Ledger,
	auditDispatcher *audit.Dispatcher,
	logger zerolog.Logger,
	providerID uint,
	date string,
	hm string,
	bookingID uint,
) {
	backoff := releaseBackoff

	var lastErr error
	for attempt := 0; attempt < releaseAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			if ctx.Err() != nil {
				lastErr = ctx.Err()
				break
			}
			backoff *= 2
		}

		if lastErr = ldg.Release(ctx, providerID, date, hm); lastErr == nil {
			return
		}
	}

	auditDispatcher.Dispatch(audit.Event{
		Action:   "integrity_alert",
		Entity:   "booking",
		EntityID: &bookingID,
		Metadata: map[string]any{
			"reason": "reservation_release_failed",
			"date":   date,
			"time":   hm,
		},
	})
	logger.Error().Err(lastErr).
		Uint("booking_id", bookingID).
		Str("date", date).
		Str("time", hm).
		Msg("slot release failed after committed transition; manual reconciliation required")
}
