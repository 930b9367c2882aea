package booking

import (
	"time"

	"github.com/consultahub/consulta-scheduler/internal/calendar"
	"github.com/consultahub/consulta-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(b *models.Booking, now time.Time) error {
	if err := CanConfirm(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	b.ConfirmedAt = &now
	return nil
}

// Postpone moves the booking to a new slot and records why. Callers must have
// already reserved the new slot; releasing the old one happens alongside the
// status update.
func Postpone(b *models.Booking, newDate, newTime, reason string) error {
	if err := CanPostpone(Status(b.Status), b.PostponeReason); err != nil {
		return err
	}

	b.Date = newDate
	b.Time = newTime
	b.Status = string(StatusPostponed)
	b.PostponeReason = reason
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelledAt = &now
	return nil
}

// EffectiveStatus is what callers see: confirmed or postponed bookings whose
// slot is in the past read as completed without any stored transition.
func EffectiveStatus(b *models.Booking, now time.Time, loc *time.Location) Status {
	s := Status(b.Status)
	if s != StatusConfirmed && s != StatusPostponed {
		return s
	}

	instant, err := calendar.SlotInstant(b.Date, b.Time, loc)
	if err != nil {
		return s
	}
	if instant.Before(now) {
		return StatusCompleted
	}
	return s
}
