package booking

import (
	"context"
	"time"

	"github.com/consultahub/consulta-scheduler/internal/models"
)

type Repository interface {
	// -------- Users --------
	GetProviderByID(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	// -------- Availability --------
	ListRules(
		ctx context.Context,
		providerID uint,
	) ([]models.AvailabilityRule, error)

	ListCustomSlots(
		ctx context.Context,
		providerID uint,
		fromDate string,
		toDate string,
	) ([]models.CustomSlot, error)

	// -------- Booking (create / read) --------
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	GetBookingByID(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	GetBookingForClient(
		ctx context.Context,
		bookingID uint,
		clientID uint,
	) (*models.Booking, error)

	// -------- Booking (state change) --------

	// UpdateBookingIfStatus persists b only while the stored row still has
	// fromStatus. Returns false when a concurrent transition won the race.
	UpdateBookingIfStatus(
		ctx context.Context,
		b *models.Booking,
		fromStatus string,
	) (bool, error)

	DeleteBooking(
		ctx context.Context,
		id uint,
	) error

	// -------- Listing / sweeping --------
	ListBookingsForParticipant(
		ctx context.Context,
		userID uint,
		role string,
	) ([]models.Booking, error)

	ListPendingOlderThan(
		ctx context.Context,
		cutoff time.Time,
	) ([]models.Booking, error)
}
