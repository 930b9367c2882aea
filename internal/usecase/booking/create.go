package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	"github.com/consultahub/consulta-scheduler/internal/calendar"
	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/notify"
	"github.com/consultahub/consulta-scheduler/internal/payment"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CreateBookingInput struct {
	ProviderID uint
	ClientID   uint

	Date string
	Time string

	Notes         string
	PaymentMethod string
	CaseID        *uint
}

type CreateBookingOutput struct {
	Booking  *models.Booking   `json:"booking"`
	Checkout *payment.Checkout `json:"checkout"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo    domain.Repository
	ledger  ledger.Ledger
	gateway payment.Gateway
	sink    notify.Sink
	audit   *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	ldg ledger.Ledger,
	gateway payment.Gateway,
	sink notify.Sink,
	auditDispatcher *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:    repo,
		ledger:  ldg,
		gateway: gateway,
		sink:    sink,
		audit:   auditDispatcher,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute reserves the slot, writes the booking in pending_payment and opens a
// checkout. Any failure past the reservation compensates: the booking row and
// the ledger entry are rolled back together, so a failed call leaves no trace.
func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*CreateBookingOutput, error) {

	provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		return nil, httperr.ErrBusiness("provider_not_found")
	}

	loc := timezone.Location(provider.Timezone)

	if !calendar.IsBookableTime(in.Time) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidSlotTime)
	}

	instant, err := calendar.SlotInstant(in.Date, in.Time, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	now := timezone.NowIn(provider.Timezone)
	if instant.Before(now) {
		return nil, httperr.ErrBusiness(httperr.CodePastDate)
	}

	b := &models.Booking{
		ProviderID:    in.ProviderID,
		ClientID:      in.ClientID,
		Date:          in.Date,
		Time:          in.Time,
		Status:        string(domain.InitialStatus()),
		Notes:         in.Notes,
		PaymentMethod: in.PaymentMethod,
		PaymentRef:    uuid.NewString(),
		CaseID:        in.CaseID,
	}

	if err := uc.repo.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	// The ledger is the authority on occupancy: a lost race here, not a prior
	// read of the booking table, is what rejects a double booking.
	if err := uc.ledger.TryReserve(ctx, in.ProviderID, in.Date, in.Time, b.ID); err != nil {
		_ = uc.repo.DeleteBooking(ctx, b.ID)

		if err == ledger.ErrSlotTaken {
			return nil, httperr.ErrBusiness(httperr.CodeSlotUnavailable)
		}
		return nil, err
	}

	checkout, err := uc.gateway.CreateCheckout(ctx, payment.CheckoutInput{
		BookingID:    b.ID,
		ExternalRef:  b.PaymentRef,
		ProviderName: provider.Name,
		Amount:       provider.ConsultationFee,
		Date:         in.Date,
		Time:         in.Time,
		Method:       in.PaymentMethod,
		CaseID:       in.CaseID,
	})
	if err != nil {
		// Never leave a slot locked by a checkout that could not even open.
		_ = uc.ledger.Release(ctx, in.ProviderID, in.Date, in.Time)
		_ = uc.repo.DeleteBooking(ctx, b.ID)
		return nil, httperr.ErrBusiness(httperr.CodePaymentFailed)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ClientID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
	})

	uc.sink.Notify(ctx, notify.Event{
		UserID:    in.ProviderID,
		Name:      notify.EventBookingCreated,
		BookingID: b.ID,
	})

	return &CreateBookingOutput{
		Booking:  b,
		Checkout: checkout,
	}, nil
}
