package booking

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/notify"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

type CancelBooking struct {
	repo   domain.Repository
	ledger ledger.Ledger
	sink   notify.Sink
	audit  *audit.Dispatcher
	logger zerolog.Logger
}

func NewCancelBooking(
	repo domain.Repository,
	ldg ledger.Ledger,
	sink notify.Sink,
	auditDispatcher *audit.Dispatcher,
	logger zerolog.Logger,
) *CancelBooking {
	return &CancelBooking{
		repo:   repo,
		ledger: ldg,
		sink:   sink,
		audit:  auditDispatcher,
		logger: logger,
	}
}

// Execute cancels a confirmed or postponed booking and frees its slot.
// Cancelling an already-cancelled booking is a no-op, not an error.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	bookingID uint,
	userID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Either participant may cancel; anyone else sees not-found.
	if b.ClientID != userID && b.ProviderID != userID {
		return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}

	if b.Status == string(domain.StatusCancelled) {
		return b, nil
	}

	provider, err := uc.repo.GetProviderByID(ctx, b.ProviderID)
	if err != nil {
		return nil, err
	}

	prevStatus := b.Status

	now := timezone.NowIn(provider.Timezone)
	if err := domain.Cancel(b, now); err != nil {
		return nil, err
	}

	ok, err := uc.repo.UpdateBookingIfStatus(ctx, b, prevStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another transition; report the settled row. A race
		// with another cancel still reads as an idempotent success.
		return uc.repo.GetBookingByID(ctx, b.ID)
	}

	// The cancel is committed; the reservation must not outlive it.
	releaseOrAlert(ctx, uc.ledger, uc.audit, uc.logger, b.ProviderID, b.Date, b.Time, b.ID)

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "booking_cancelled",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	for _, uid := range []uint{b.ProviderID, b.ClientID} {
		uc.sink.Notify(ctx, notify.Event{
			UserID:    uid,
			Name:      notify.EventBookingCancelled,
			BookingID: b.ID,
		})
	}

	return b, nil
}
