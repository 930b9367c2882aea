package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/httpresp"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
	ucSchedule "github.com/consultahub/consulta-scheduler/internal/usecase/schedule"
)

// PublicHandler serves the unauthenticated surface: provider directory and the
// materialized slot calendar clients browse before booking.
type PublicHandler struct {
	db       *gorm.DB
	getSlots *ucSchedule.GetSlots
}

func NewPublicHandler(db *gorm.DB, getSlots *ucSchedule.GetSlots) *PublicHandler {
	return &PublicHandler{db: db, getSlots: getSlots}
}

func (h *PublicHandler) ListProviders(c *gin.Context) {
	var providers []models.User
	if err := h.db.
		Where("role = ?", models.RoleProvider).
		Order("name ASC").
		Find(&providers).Error; err != nil {

		httperr.Internal(c, "providers_list_failed", "Erro ao listar profissionais.")
		return
	}

	out := make([]gin.H, 0, len(providers))
	for i := range providers {
		p := &providers[i]
		out = append(out, gin.H{
			"id":               p.ID,
			"name":             p.Name,
			"specialty":        p.Specialty,
			"consultation_fee": p.ConsultationFee,
			"timezone":         p.Timezone,
		})
	}

	httpresp.List(c, out)
}

// GetSlots returns a provider's slot calendar for one month.
// Defaults to the current month in the provider's timezone.
func (h *PublicHandler) GetSlots(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_provider_id", "ID inválido.")
		return
	}

	now := timezone.Now()
	year := now.Year()
	month := int(now.Month())

	if v := c.Query("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			httperr.BadRequest(c, "invalid_year", "Ano inválido.")
			return
		}
	}
	if v := c.Query("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			httperr.BadRequest(c, "invalid_month", "Mês inválido.")
			return
		}
	}

	slots, err := h.getSlots.Execute(c.Request.Context(), uint(providerID), year, time.Month(month))
	if err != nil {
		writeUsecaseError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"provider_id": providerID,
		"year":        year,
		"month":       month,
		"slots":       slots,
	})
}
