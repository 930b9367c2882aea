// Package ledger is the authoritative record of slot occupancy. Booking rows
// reference slots, but only the ledger decides whether a reservation may
// proceed: TryReserve is a single conditional insert, so two concurrent
// attempts on the same (provider, date, time) cannot both succeed.
package ledger

import (
	"context"
	"errors"

	"github.com/consultahub/consulta-scheduler/internal/models"
)

// ErrSlotTaken is returned by TryReserve when the slot is already occupied.
var ErrSlotTaken = errors.New("slot already reserved")

type Ledger interface {
	// TryReserve atomically claims the slot for bookingID.
	TryReserve(ctx context.Context, providerID uint, date, hm string, bookingID uint) error

	// Release frees the slot. Idempotent: releasing a free slot is a no-op.
	Release(ctx context.Context, providerID uint, date, hm string) error

	IsReserved(ctx context.Context, providerID uint, date, hm string) (bool, error)

	// ListForPeriod returns all reservations with fromDate <= date < toDate,
	// used to flag materialized slots as unavailable.
	ListForPeriod(ctx context.Context, providerID uint, fromDate, toDate string) ([]models.Reservation, error)
}
