package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/httpresp"
	"github.com/consultahub/consulta-scheduler/internal/middleware"
	ucBooking "github.com/consultahub/consulta-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	createUC   *ucBooking.CreateBooking
	postponeUC *ucBooking.PostponeBooking
	cancelUC   *ucBooking.CancelBooking
	listUC     *ucBooking.ListBookings
}

func NewBookingHandler(
	createUC *ucBooking.CreateBooking,
	postponeUC *ucBooking.PostponeBooking,
	cancelUC *ucBooking.CancelBooking,
	listUC *ucBooking.ListBookings,
) *BookingHandler {
	return &BookingHandler{
		createUC:   createUC,
		postponeUC: postponeUC,
		cancelUC:   cancelUC,
		listUC:     listUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ProviderID uint   `json:"provider_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`

	Notes         string `json:"notes"`
	PaymentMethod string `json:"payment_method"`
	CaseID        *uint  `json:"case_id"`
}

type PostponeBookingRequest struct {
	NewDate string `json:"new_date" binding:"required"`
	NewTime string `json:"new_time" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
}

// ======================================================
// HANDLERS
// ======================================================

// Create opens a booking: the slot is reserved, the row written in
// pending_payment and a checkout returned for the client to pay.
func (h *BookingHandler) Create(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	out, err := h.createUC.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		ProviderID:    req.ProviderID,
		ClientID:      clientID,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		CaseID:        req.CaseID,
	})
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.Created(c, out)
}

func (h *BookingHandler) Postpone(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "ID inválido.")
		return
	}

	var req PostponeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.postponeUC.Execute(c.Request.Context(), ucBooking.PostponeBookingInput{
		BookingID: uint(bookingID),
		ClientID:  clientID,
		NewDate:   req.NewDate,
		NewTime:   req.NewTime,
		Reason:    req.Reason,
	})
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "ID inválido.")
		return
	}

	b, err := h.cancelUC.Execute(c.Request.Context(), uint(bookingID), userID)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	bookings, err := h.listUC.Execute(c.Request.Context(), userID, role)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	httpresp.List(c, bookings)
}
