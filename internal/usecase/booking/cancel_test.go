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

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status domain.Status
		userID uint
	}{
		{"client cancels confirmed", domain.StatusConfirmed, 2},
		{"provider cancels confirmed", domain.StatusConfirmed, 1},
		{"client cancels postponed", domain.StatusPostponed, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(testProvider())
			ldg := ledger.NewMemoryLedger()

			date := futureDate()
			b := &models.Booking{
				ProviderID: 1, ClientID: 2,
				Date: date, Time: "10:00",
				Status: string(tt.status),
			}
			require.NoError(t, repo.CreateBooking(ctx, b))
			require.NoError(t, ldg.TryReserve(ctx, 1, date, "10:00", b.ID))

			uc := NewCancelBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

			got, err := uc.Execute(ctx, b.ID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusCancelled), got.Status)
			require.NotNil(t, got.CancelledAt)

			reserved, _ := ldg.IsReserved(ctx, 1, date, "10:00")
			assert.False(t, reserved, "cancel must free the slot")
		})
	}
}

func TestCancelBookingIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	date := futureDate()
	b := seedConfirmed(t, repo, ldg, date, "10:00")

	uc := NewCancelBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	first, err := uc.Execute(ctx, b.ID, 2)
	require.NoError(t, err)
	firstAt := first.CancelledAt
	require.NotNil(t, firstAt)

	// The freed slot goes to someone else before the retry lands.
	require.NoError(t, ldg.TryReserve(ctx, 1, date, "10:00", 900))

	second, err := uc.Execute(ctx, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), second.Status)

	// The retry must not touch the ledger: the new holder keeps the slot.
	reserved, _ := ldg.IsReserved(ctx, 1, date, "10:00")
	assert.True(t, reserved)
}

func TestCancelBookingCommitsWhenReleaseKeepsFailing(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := newFlakyLedger(100)

	date := futureDate()
	b := seedConfirmed(t, repo, ldg, date, "10:00")

	uc := NewCancelBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	// The cancel is already committed when the release runs, so a ledger
	// outage downgrades to a reconciliation alert instead of an error.
	got, err := uc.Execute(ctx, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)

	stored, gerr := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, string(domain.StatusCancelled), stored.Status)

	// The reservation leaks until reconciliation; it was flagged, not freed.
	reserved, _ := ldg.IsReserved(ctx, 1, date, "10:00")
	assert.True(t, reserved)
}

func TestCancelBookingNonParticipant(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedConfirmed(t, repo, ldg, futureDate(), "10:00")

	uc := NewCancelBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	_, err := uc.Execute(ctx, b.ID, 999)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))

	stored, gerr := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, string(domain.StatusConfirmed), stored.Status)
}

func TestCancelBookingPendingRejected(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedPending(t, repo, ldg, futureDate(), "10:00")

	uc := NewCancelBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	_, err := uc.Execute(ctx, b.ID, 2)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidState))

	// Pending bookings are the sweeper's business; the reservation stays.
	reserved, _ := ldg.IsReserved(ctx, 1, b.Date, b.Time)
	assert.True(t, reserved)
}
