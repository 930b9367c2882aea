package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	"github.com/consultahub/consulta-scheduler/internal/calendar"
	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/notify"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type ConfirmPaymentInput struct {
	BookingID uint
	Outcome   string
}

type ConfirmPayment struct {
	repo   domain.Repository
	ledger ledger.Ledger
	sink   notify.Sink
	audit  *audit.Dispatcher
	logger zerolog.Logger

	retryAttempts int
	retryBackoff  time.Duration
}

func NewConfirmPayment(
	repo domain.Repository,
	ldg ledger.Ledger,
	sink notify.Sink,
	auditDispatcher *audit.Dispatcher,
	logger zerolog.Logger,
	retryAttempts int,
) *ConfirmPayment {
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	return &ConfirmPayment{
		repo:          repo,
		ledger:        ldg,
		sink:          sink,
		audit:         auditDispatcher,
		logger:        logger,
		retryAttempts: retryAttempts,
		retryBackoff:  200 * time.Millisecond,
	}
}

// Execute applies a gateway outcome. Success flips the booking to confirmed;
// failure tears the pending booking down and frees the slot. Already-settled
// bookings are a no-op so the gateway may deliver the callback more than once.
func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	in ConfirmPaymentInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	if in.Outcome != OutcomeSuccess {
		return uc.fail(ctx, b)
	}

	// Duplicate callback after a successful confirm.
	if b.Status == string(domain.StatusConfirmed) {
		return b, nil
	}

	provider, err := uc.repo.GetProviderByID(ctx, b.ProviderID)
	if err != nil {
		return nil, err
	}

	// The client has paid. If the sweeper released the reservation while the
	// callback was in flight, win it back before confirming; a paid-but-unbooked
	// state is the one failure that must never pass silently.
	if err := uc.ensureReserved(ctx, b); err != nil {
		uc.audit.Dispatch(audit.Event{
			Action:   "integrity_alert",
			Entity:   "booking",
			EntityID: &b.ID,
			Metadata: map[string]any{
				"reason": "paid_but_slot_lost",
				"date":   b.Date,
				"time":   b.Time,
			},
		})
		uc.logger.Error().
			Uint("booking_id", b.ID).
			Str("date", b.Date).
			Str("time", b.Time).
			Msg("paid booking lost its reservation; manual reconciliation required")
		return nil, err
	}

	now := timezone.NowIn(provider.Timezone)
	if err := domain.Confirm(b, now); err != nil {
		return nil, err
	}

	ok, err := uc.repo.UpdateBookingIfStatus(ctx, b, string(domain.StatusPendingPayment))
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent transition (duplicate callback, sweep) settled the row
		// first; reread and report what actually happened.
		return uc.repo.GetBookingByID(ctx, b.ID)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &b.ClientID,
		Action:   "booking_confirmed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	for _, userID := range []uint{b.ProviderID, b.ClientID} {
		uc.sink.Notify(ctx, notify.Event{
			UserID:    userID,
			Name:      notify.EventBookingConfirmed,
			BookingID: b.ID,
		})
	}

	return b, nil
}

func (uc *ConfirmPayment) fail(
	ctx context.Context,
	b *models.Booking,
) (*models.Booking, error) {

	if b.Status != string(domain.StatusPendingPayment) {
		// Settled some other way already; nothing to tear down.
		return b, nil
	}

	// Claim the row out of pending_payment before touching the ledger. A
	// success callback or the sweeper may have settled the booking after our
	// read; tearing down on that stale copy would delete a paid booking or
	// free a slot a new booking now holds.
	now := timezone.Now()
	b.Status = string(domain.StatusCancelled)
	b.CancelledAt = &now

	ok, err := uc.repo.UpdateBookingIfStatus(ctx, b, string(domain.StatusPendingPayment))
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race; report whatever the row settled into.
		return uc.repo.GetBookingByID(ctx, b.ID)
	}

	// The claim won, so the booking still held its reservation.
	releaseOrAlert(ctx, uc.ledger, uc.audit, uc.logger, b.ProviderID, b.Date, b.Time, b.ID)
	if err := uc.repo.DeleteBooking(ctx, b.ID); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &b.ClientID,
		Action:   "booking_payment_failed",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	return nil, httperr.ErrBusiness(httperr.CodePaymentFailed)
}

// ensureReserved guarantees the booking's slot is held by the booking itself.
// Transient ledger failures retry with backoff; a slot held by a different
// booking is unrecoverable and escalates to the caller.
func (uc *ConfirmPayment) ensureReserved(ctx context.Context, b *models.Booking) error {
	var lastErr error

	backoff := uc.retryBackoff
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := uc.ledger.TryReserve(ctx, b.ProviderID, b.Date, b.Time, b.ID)
		if err == nil {
			return nil
		}
		if err != ledger.ErrSlotTaken {
			lastErr = err
			continue
		}

		holder, err := uc.reservationHolder(ctx, b)
		if err != nil {
			lastErr = err
			continue
		}
		if holder == b.ID {
			return nil
		}
		if holder == 0 {
			// Released between the conflict and the lookup; retry the claim.
			lastErr = ledger.ErrSlotTaken
			continue
		}
		return ledger.ErrSlotTaken
	}

	return lastErr
}

func (uc *ConfirmPayment) reservationHolder(ctx context.Context, b *models.Booking) (uint, error) {
	day, err := time.Parse(calendar.DateLayout, b.Date)
	if err != nil {
		return 0, err
	}
	nextDay := day.AddDate(0, 0, 1).Format(calendar.DateLayout)

	reservations, err := uc.ledger.ListForPeriod(ctx, b.ProviderID, b.Date, nextDay)
	if err != nil {
		return 0, err
	}

	for _, res := range reservations {
		if res.Date == b.Date && res.Time == b.Time {
			return res.BookingID, nil
		}
	}
	return 0, nil
}
