package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/audit"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/httpresp"
	"github.com/consultahub/consulta-scheduler/internal/middleware"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/schedule"
)

// ======================================================
// HANDLER
// ======================================================

type AvailabilityRulesHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAvailabilityRulesHandler(db *gorm.DB, auditDispatcher *audit.Dispatcher) *AvailabilityRulesHandler {
	return &AvailabilityRulesHandler{db: db, audit: auditDispatcher}
}

// ======================================================
// REQUESTS
// ======================================================

type AvailabilityRuleRequest struct {
	DaysOfWeek string `json:"days_of_week" binding:"required"`
	TimeOfDay  string `json:"time_of_day" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Exceptions string `json:"exceptions"`
}

// ======================================================
// HANDLERS
// ======================================================

func (h *AvailabilityRulesHandler) List(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	var rules []models.AvailabilityRule
	if err := h.db.
		Where("provider_id = ?", providerID).
		Order("id ASC").
		Find(&rules).Error; err != nil {

		httperr.Internal(c, "rules_list_failed", "Erro ao listar regras.")
		return
	}

	httpresp.List(c, rules)
}

func (h *AvailabilityRulesHandler) Create(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	var req AvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	rule := models.AvailabilityRule{
		ProviderID: providerID,
		DaysOfWeek: req.DaysOfWeek,
		TimeOfDay:  req.TimeOfDay,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Exceptions: req.Exceptions,
	}

	if err := schedule.ValidateRule(&rule); err != nil {
		writeUsecaseError(c, err)
		return
	}

	if err := h.db.Create(&rule).Error; err != nil {
		httperr.Internal(c, "rule_create_failed", "Erro ao criar regra.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &providerID,
		Action:   "rule_created",
		Entity:   "availability_rule",
		EntityID: &rule.ID,
	})

	httpresp.Created(c, rule)
}

func (h *AvailabilityRulesHandler) Update(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_rule_id", "ID inválido.")
		return
	}

	var rule models.AvailabilityRule
	if err := h.db.
		Where("id = ? AND provider_id = ?", ruleID, providerID).
		First(&rule).Error; err != nil {

		httperr.NotFound(c, httperr.CodeRuleNotFound, "Regra não encontrada.")
		return
	}

	var req AvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	rule.DaysOfWeek = req.DaysOfWeek
	rule.TimeOfDay = req.TimeOfDay
	rule.StartDate = req.StartDate
	rule.EndDate = req.EndDate
	rule.Exceptions = req.Exceptions

	if err := schedule.ValidateRule(&rule); err != nil {
		writeUsecaseError(c, err)
		return
	}

	if err := h.db.Save(&rule).Error; err != nil {
		httperr.Internal(c, "rule_update_failed", "Erro ao atualizar regra.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &providerID,
		Action:   "rule_updated",
		Entity:   "availability_rule",
		EntityID: &rule.ID,
	})

	httpresp.OK(c, rule)
}

// Delete removes a rule. Slots already booked under it keep their reservations;
// only the unbooked recurrences stop materializing.
func (h *AvailabilityRulesHandler) Delete(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextUserID).(uint)

	ruleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_rule_id", "ID inválido.")
		return
	}

	res := h.db.
		Where("id = ? AND provider_id = ?", ruleID, providerID).
		Delete(&models.AvailabilityRule{})

	if res.Error != nil {
		httperr.Internal(c, "rule_delete_failed", "Erro ao remover regra.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, httperr.CodeRuleNotFound, "Regra não encontrada.")
		return
	}

	id := uint(ruleID)
	h.audit.Dispatch(audit.Event{
		UserID:   &providerID,
		Action:   "rule_deleted",
		Entity:   "availability_rule",
		EntityID: &id,
	})

	httpresp.OK(c, gin.H{"status": "ok"})
}
