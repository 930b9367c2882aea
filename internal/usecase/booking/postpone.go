package booking

import (
	"context"

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

type PostponeBookingInput struct {
	BookingID uint
	ClientID  uint

	NewDate string
	NewTime string
	Reason  string
}

type PostponeBooking struct {
	repo   domain.Repository
	ledger ledger.Ledger
	sink   notify.Sink
	audit  *audit.Dispatcher
	logger zerolog.Logger
}

func NewPostponeBooking(
	repo domain.Repository,
	ldg ledger.Ledger,
	sink notify.Sink,
	auditDispatcher *audit.Dispatcher,
	logger zerolog.Logger,
) *PostponeBooking {
	return &PostponeBooking{
		repo:   repo,
		ledger: ldg,
		sink:   sink,
		audit:  auditDispatcher,
		logger: logger,
	}
}

// Execute moves a confirmed booking to a new slot. Ordering is strict:
// reserve the new slot first, then flip the booking status, then release the
// old slot. Release-then-reserve would open a window where a third party could
// steal the old slot while the new one is still unclaimed.
func (uc *PostponeBooking) Execute(
	ctx context.Context,
	in PostponeBookingInput,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingForClient(ctx, in.BookingID, in.ClientID)
	if err != nil {
		return nil, err
	}

	// Fast guard; the conditional update below is what makes it race-free.
	if err := domain.CanPostpone(domain.Status(b.Status), b.PostponeReason); err != nil {
		return nil, err
	}

	provider, err := uc.repo.GetProviderByID(ctx, b.ProviderID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(provider.Timezone)

	if !calendar.IsBookableTime(in.NewTime) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidSlotTime)
	}

	instant, err := calendar.SlotInstant(in.NewDate, in.NewTime, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	now := timezone.NowIn(provider.Timezone)
	if instant.Before(now) {
		return nil, httperr.ErrBusiness(httperr.CodePastDate)
	}

	oldDate, oldTime := b.Date, b.Time

	if err := uc.ledger.TryReserve(ctx, b.ProviderID, in.NewDate, in.NewTime, b.ID); err != nil {
		if err == ledger.ErrSlotTaken {
			return nil, httperr.ErrBusiness(httperr.CodeSlotUnavailable)
		}
		return nil, err
	}

	if err := domain.Postpone(b, in.NewDate, in.NewTime, in.Reason); err != nil {
		_ = uc.ledger.Release(ctx, b.ProviderID, in.NewDate, in.NewTime)
		return nil, err
	}

	ok, err := uc.repo.UpdateBookingIfStatus(ctx, b, string(domain.StatusConfirmed))
	if err != nil {
		_ = uc.ledger.Release(ctx, b.ProviderID, in.NewDate, in.NewTime)
		return nil, err
	}
	if !ok {
		// Someone else transitioned the booking between the guard and the
		// update. Back out the new reservation; nothing else has changed.
		_ = uc.ledger.Release(ctx, b.ProviderID, in.NewDate, in.NewTime)
		return nil, httperr.ErrBusiness(httperr.CodeAlreadyPostponed)
	}

	// The move is committed; the old reservation must not outlive it.
	releaseOrAlert(ctx, uc.ledger, uc.audit, uc.logger, b.ProviderID, oldDate, oldTime, b.ID)

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ClientID,
		Action:   "booking_postponed",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{
			"from": oldDate + " " + oldTime,
			"to":   in.NewDate + " " + in.NewTime,
		},
	})

	for _, userID := range []uint{b.ProviderID, b.ClientID} {
		uc.sink.Notify(ctx, notify.Event{
			UserID:    userID,
			Name:      notify.EventBookingPostponed,
			BookingID: b.ID,
		})
	}

	return b, nil
}
