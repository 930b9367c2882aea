package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consultahub/consulta-scheduler/internal/calendar"
	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/notify"
)

// seedConfirmed writes a confirmed booking holding its slot.
func seedConfirmed(t *testing.T, repo *fakeRepo, ldg ledger.Ledger, date, hm string) *models.Booking {
	t.Helper()
	ctx := context.Background()

	b := &models.Booking{
		ProviderID: 1,
		ClientID:   2,
		Date:       date,
		Time:       hm,
		Status:     string(domain.StatusConfirmed),
	}
	require.NoError(t, repo.CreateBooking(ctx, b))
	require.NoError(t, ldg.TryReserve(ctx, 1, date, hm, b.ID))
	return b
}

func laterDate() string {
	return time.Now().AddDate(0, 0, 45).Format(calendar.DateLayout)
}

func TestPostponeBooking(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	oldDate := futureDate()
	b := seedConfirmed(t, repo, ldg, oldDate, "09:00")

	uc := NewPostponeBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	newDate := laterDate()
	got, err := uc.Execute(ctx, PostponeBookingInput{
		BookingID: b.ID,
		ClientID:  2,
		NewDate:   newDate,
		NewTime:   "14:00",
		Reason:    "conflict with work",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPostponed), got.Status)
	assert.Equal(t, newDate, got.Date)
	assert.Equal(t, "14:00", got.Time)
	assert.Equal(t, "conflict with work", got.PostponeReason)

	// Old slot free, new slot held: exactly one of the two is reserved.
	oldReserved, _ := ldg.IsReserved(ctx, 1, oldDate, "09:00")
	newReserved, _ := ldg.IsReserved(ctx, 1, newDate, "14:00")
	assert.False(t, oldReserved)
	assert.True(t, newReserved)

	// A third party can now book the old slot, but not the new one.
	require.NoError(t, ldg.TryReserve(ctx, 1, oldDate, "09:00", 500))
	assert.ErrorIs(t, ldg.TryReserve(ctx, 1, newDate, "14:00", 501), ledger.ErrSlotTaken)
}

func TestPostponeBookingNewSlotTaken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	oldDate := futureDate()
	b := seedConfirmed(t, repo, ldg, oldDate, "09:00")

	newDate := laterDate()
	require.NoError(t, ldg.TryReserve(ctx, 1, newDate, "14:00", 77))

	uc := NewPostponeBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	_, err := uc.Execute(ctx, PostponeBookingInput{
		BookingID: b.ID, ClientID: 2, NewDate: newDate, NewTime: "14:00", Reason: "r",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeSlotUnavailable))

	// Aborted with no side effects: booking and both slots untouched.
	stored, gerr := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, string(domain.StatusConfirmed), stored.Status)
	assert.Equal(t, oldDate, stored.Date)

	oldReserved, _ := ldg.IsReserved(ctx, 1, oldDate, "09:00")
	assert.True(t, oldReserved)
}

func TestPostponeBookingAtMostOnce(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedConfirmed(t, repo, ldg, futureDate(), "09:00")

	uc := NewPostponeBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	first := laterDate()
	_, err := uc.Execute(ctx, PostponeBookingInput{
		BookingID: b.ID, ClientID: 2, NewDate: first, NewTime: "14:00", Reason: "first",
	})
	require.NoError(t, err)

	// Second attempt is rejected and leaves the first postpone in place.
	second := time.Now().AddDate(0, 0, 60).Format(calendar.DateLayout)
	_, err = uc.Execute(ctx, PostponeBookingInput{
		BookingID: b.ID, ClientID: 2, NewDate: second, NewTime: "09:00", Reason: "second",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyPostponed))

	stored, gerr := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, gerr)
	assert.Equal(t, first, stored.Date)

	secondReserved, _ := ldg.IsReserved(ctx, 1, second, "09:00")
	assert.False(t, secondReserved)
}

func TestPostponeBookingGuards(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		status  domain.Status
		newTime string
		newDate string
		code    string
	}{
		{"pending payment", domain.StatusPendingPayment, "14:00", laterDate(), httperr.CodeInvalidState},
		{"cancelled", domain.StatusCancelled, "14:00", laterDate(), httperr.CodeInvalidState},
		{"off-grid time", domain.StatusConfirmed, "14:11", laterDate(), httperr.CodeInvalidSlotTime},
		{"past date", domain.StatusConfirmed, "14:00", "2020-01-06", httperr.CodePastDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(testProvider())
			ldg := ledger.NewMemoryLedger()

			b := &models.Booking{
				ProviderID: 1, ClientID: 2,
				Date: futureDate(), Time: "09:00",
				Status: string(tt.status),
			}
			require.NoError(t, repo.CreateBooking(ctx, b))

			uc := NewPostponeBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

			_, err := uc.Execute(ctx, PostponeBookingInput{
				BookingID: b.ID, ClientID: 2, NewDate: tt.newDate, NewTime: tt.newTime, Reason: "r",
			})
			assert.True(t, httperr.IsBusiness(err, tt.code), "want %s, got %v", tt.code, err)
		})
	}
}

func TestPostponeBookingRetriesOldSlotRelease(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := newFlakyLedger(2)

	oldDate := futureDate()
	b := seedConfirmed(t, repo, ldg, oldDate, "09:00")

	uc := NewPostponeBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	newDate := laterDate()
	got, err := uc.Execute(ctx, PostponeBookingInput{
		BookingID: b.ID, ClientID: 2, NewDate: newDate, NewTime: "14:00", Reason: "r",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPostponed), got.Status)

	// The first two release attempts failed; the third freed the old slot.
	assert.Equal(t, 3, ldg.releaseCalls)
	oldReserved, _ := ldg.IsReserved(ctx, 1, oldDate, "09:00")
	assert.False(t, oldReserved)

	newReserved, _ := ldg.IsReserved(ctx, 1, newDate, "14:00")
	assert.True(t, newReserved)
}

func TestPostponeBookingNotOwned(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(testProvider())
	ldg := ledger.NewMemoryLedger()

	b := seedConfirmed(t, repo, ldg, futureDate(), "09:00")

	uc := NewPostponeBooking(repo, ldg, notify.NopSink{}, nil, zerolog.Nop())

	_, err := uc.Execute(ctx, PostponeBookingInput{
		BookingID: b.ID, ClientID: 999, NewDate: laterDate(), NewTime: "14:00", Reason: "r",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}
