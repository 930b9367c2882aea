package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	"github.com/consultahub/consulta-scheduler/internal/calendar"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/httpresp"
	"github.com/consultahub/consulta-scheduler/internal/middleware"
	"github.com/consultahub/consulta-scheduler/internal/models"
)

type CustomSlotsHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewCustomSlotsHandler(db *gorm.DB, auditDispatcher *audit.Dispatcher) *CustomSlotsHandler {
	return &CustomSlotsHandler{db: db, audit: auditDispatcher}
}

type CustomSlotRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func (h *CustomSlotsHandler) List(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	var slots []models.CustomSlot
	if err := h.db.
		Where("provider_id = ?", providerID).
		Order("date ASC, time ASC").
		Find(&slots).Error; err != nil {

		httperr.Internal(c, "custom_slots_list_failed", "Erro ao listar horários avulsos.")
		return
	}

	httpresp.List(c, slots)
}

func (h *CustomSlotsHandler) Create(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CustomSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if _, err := time.Parse(calendar.DateLayout, req.Date); err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Data inválida.")
		return
	}
	if !calendar.IsBookableTime(req.Time) {
		httperr.BadRequest(c, httperr.CodeInvalidSlotTime, "Horário fora da grade de atendimento.")
		return
	}

	slot := models.CustomSlot{
		ProviderID: providerID,
		Date:       req.Date,
		Time:       req.Time,
	}

	if err := h.db.Create(&slot).Error; err != nil {
		httperr.Internal(c, "custom_slot_create_failed", "Erro ao criar horário avulso.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &providerID,
		Action:   "custom_slot_created",
		Entity:   "custom_slot",
		EntityID: &slot.ID,
	})

	httpresp.Created(c, slot)
}

func (h *CustomSlotsHandler) Delete(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	slotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_slot_id", "ID inválido.")
		return
	}

	res := h.db.
		Where("id = ? AND provider_id = ?", slotID, providerID).
		Delete(&models.CustomSlot{})

	if res.Error != nil {
		httperr.Internal(c, "custom_slot_delete_failed", "Erro ao remover horário avulso.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "custom_slot_not_found", "Horário avulso não encontrado.")
		return
	}

	id := uint(slotID)
	h.audit.Dispatch(audit.Event{
		UserID:   &providerID,
		Action:   "custom_slot_deleted",
		Entity:   "custom_slot",
		EntityID: &id,
	})

	httpresp.OK(c, gin.H{"status": "ok"})
}
