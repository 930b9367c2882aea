package booking

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/notify"
)

// seedPending writes a pending_payment booking and reserves its slot, as
// CreateBooking would have.
func seedPending(t *testing.T, repo *fakeRepo, ldg ledger.Ledger, date, hm string) *models.Booking {
	t.Helper()
	ctx := context.Background()

	b := &models.Booking{
		ProviderID: 1,
		ClientID:   2,
		Date:       date,
		Time:       hm,
		Status:     string(domain.StatusPendingPayment),
	}
	require.NoError(t, repo.CreateBooking(ctx, b))
	require.NoError(t, ldg.TryReserve(ctx, 1, date, hm, b.ID))
	return b
}

func newConfirm(repo *fakeRepo, ldg ledger.Ledger) *ConfirmPayment {
	return NewConfirmPayment(repo, ldg, notify.NopSink{}, nil, zerolog.Nop(), 3)
}

func TestConfirmPaymentSuccess(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "14:00")

	uc := newConfirm(repo, ldg)

	got, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeSuccess})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
	require.NotNil(t, got.ConfirmedAt)

	stored, err := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), stored.Status)

	// Duplicate callback is a no-op.
	again, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeSuccess})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), again.Status)
}

func TestConfirmPaymentFailureTearsDown(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "14:00")

	uc := newConfirm(repo, ldg)

	_, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeFailure})
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentFailed))

	// Booking deleted, slot back on sale.
	_, err = repo.GetBookingByID(ctx, b.ID)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))

	reserved, err := ldg.IsReserved(ctx, 1, b.Date, b.Time)
	require.NoError(t, err)
	assert.False(t, reserved)
}

func TestConfirmPaymentFailureLosesRaceToSuccess(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "14:00")

	// A success callback confirms the booking right after the failure
	// callback's read.
	repo.afterGet = func() {
		cp := *b
		cp.Status = string(domain.StatusConfirmed)
		ok, err := repo.UpdateBookingIfStatus(ctx, &cp, string(domain.StatusPendingPayment))
		require.NoError(t, err)
		require.True(t, ok)
	}

	uc := newConfirm(repo, ldg)

	got, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeFailure})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)

	// The paid booking and its reservation both survive.
	stored, gerr := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, string(domain.StatusConfirmed), stored.Status)

	reserved, _ := ldg.IsReserved(ctx, 1, b.Date, b.Time)
	assert.True(t, reserved)
}

func TestConfirmPaymentFailureAfterSweepKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "14:00")

	// The sweeper abandons the booking and a new booking claims the slot,
	// all between the failure callback's read and its teardown.
	repo.afterGet = func() {
		cp := *b
		cp.Status = string(domain.StatusCancelled)
		ok, err := repo.UpdateBookingIfStatus(ctx, &cp, string(domain.StatusPendingPayment))
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, ldg.Release(ctx, 1, b.Date, b.Time))
		require.NoError(t, ldg.TryReserve(ctx, 1, b.Date, b.Time, 999))
	}

	uc := newConfirm(repo, ldg)

	got, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeFailure})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)

	// The new holder's reservation must not be freed by the stale teardown.
	assert.ErrorIs(t, ldg.TryReserve(ctx, 1, b.Date, b.Time, 500), ledger.ErrSlotTaken)
}

func TestConfirmPaymentUnknownBooking(t *testing.T) {
	repo := newFakeRepo(testProvider())
	uc := newConfirm(repo, ledger.NewMemoryLedger())

	_, err := uc.Execute(context.Background(), ConfirmPaymentInput{BookingID: 123, Outcome: OutcomeSuccess})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}

func TestConfirmPaymentReclaimsSweptReservation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "14:00")

	// The sweeper released the reservation while the callback was in flight.
	require.NoError(t, ldg.Release(ctx, 1, b.Date, b.Time))

	uc := newConfirm(repo, ldg)

	got, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeSuccess})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)

	reserved, err := ldg.IsReserved(ctx, 1, b.Date, b.Time)
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestConfirmPaymentSlotStolenEscalates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "14:00")

	// Swept, then a different booking claimed the slot before the callback.
	require.NoError(t, ldg.Release(ctx, 1, b.Date, b.Time))
	require.NoError(t, ldg.TryReserve(ctx, 1, b.Date, b.Time, 999))

	uc := newConfirm(repo, ldg)

	_, err := uc.Execute(ctx, ConfirmPaymentInput{BookingID: b.ID, Outcome: OutcomeSuccess})
	assert.ErrorIs(t, err, ledger.ErrSlotTaken)

	// The booking is left pending for manual reconciliation, never confirmed.
	stored, gerr := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, string(domain.StatusPendingPayment), stored.Status)
}
