package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/models"
	ucBooking "github.com/consultahub/consulta-scheduler/internal/usecase/booking"
)

// PaymentWebhookHandler receives the gateway's checkout outcome. The gateway
// retries deliveries, so the endpoint is idempotent and always answers 200 for
// outcomes it has already applied.
type PaymentWebhookHandler struct {
	db        *gorm.DB
	confirmUC *ucBooking.ConfirmPayment
	logger    zerolog.Logger
}

func NewPaymentWebhookHandler(
	db *gorm.DB,
	confirmUC *ucBooking.ConfirmPayment,
	logger zerolog.Logger,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		db:        db,
		confirmUC: confirmUC,
		logger:    logger,
	}
}

type PaymentWebhookRequest struct {
	ExternalReference string `json:"external_reference" binding:"required"`
	Status            string `json:"status" binding:"required"`
}

// outcomeForStatus maps a gateway payment status onto a booking outcome.
// Only terminal statuses act on the booking: Mercado Pago delivers
// "pending"/"in_process"/"in_mediation" for pix and boleto flows while the
// payment is still settling, and tearing the booking down on those would
// orphan the later "approved" callback.
func outcomeForStatus(status string) (outcome string, terminal bool) {
	switch status {
	case "approved":
		return ucBooking.OutcomeSuccess, true
	case "rejected", "cancelled", "refunded", "charged_back":
		return ucBooking.OutcomeFailure, true
	default:
		return "", false
	}
}

func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	var b models.Booking
	if err := h.db.
		Where("payment_ref = ?", req.ExternalReference).
		First(&b).Error; err != nil {

		// The pending row may already be gone (failed earlier, or swept).
		// Acknowledge so the gateway stops retrying.
		h.logger.Warn().
			Str("external_reference", req.ExternalReference).
			Msg("webhook for unknown payment reference")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	outcome, terminal := outcomeForStatus(req.Status)
	if !terminal {
		// Payment still settling; acknowledge and wait for the next delivery.
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
		return
	}

	result, err := h.confirmUC.Execute(c.Request.Context(), ucBooking.ConfirmPaymentInput{
		BookingID: b.ID,
		Outcome:   outcome,
	})
	if err != nil {
		if httperr.BusinessCode(err) == httperr.CodePaymentFailed {
			// Failure outcome applied: booking torn down, slot released.
			c.JSON(http.StatusOK, gin.H{"status": "failed"})
			return
		}
		writeUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"booking": result,
	})
}
