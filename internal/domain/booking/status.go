package booking

import "github.com/consultahub/consulta-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusPostponed      Status = "postponed"
	StatusCancelled      Status = "cancelled"

	// StatusCompleted is derived at read time, never stored: a confirmed or
	// postponed booking whose slot instant has passed reads as completed.
	StatusCompleted Status = "completed"
)

func InitialStatus() Status {
	return StatusPendingPayment
}

// ===============================
// Transition guards
// ===============================

// CanConfirm: only a booking awaiting its checkout outcome can confirm.
func CanConfirm(current Status) error {
	if current != StatusPendingPayment {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// CanPostpone enforces the postpone-at-most-once policy: a postponed booking
// (or one that already carries a postpone reason) cannot move again.
func CanPostpone(current Status, postponeReason string) error {
	if current == StatusPostponed || postponeReason != "" {
		return httperr.ErrBusiness(httperr.CodeAlreadyPostponed)
	}
	if current != StatusConfirmed {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

func CanCancel(current Status) error {
	if current != StatusConfirmed && current != StatusPostponed {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}

// Occupying reports whether a booking in this status holds its slot's
// reservation in the ledger.
func Occupying(current Status) bool {
	switch current {
	case StatusPendingPayment, StatusConfirmed, StatusPostponed:
		return true
	}
	return false
}
