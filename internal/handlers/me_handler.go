package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/middleware"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userIDVal, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_not_in_context"})
		return
	}

	userID, ok := userIDVal.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_user_id_type"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userPayload(&user)})
}

type UpdateMeRequest struct {
	Name            *string  `json:"name"`
	Phone           *string  `json:"phone"`
	Specialty       *string  `json:"specialty"`
	ConsultationFee *float64 `json:"consultation_fee"`
	Timezone        *string  `json:"timezone"`
}

func (h *MeHandler) UpdateMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user_not_found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	// Profile fields only providers carry.
	if user.Role == models.RoleProvider {
		if req.Specialty != nil {
			user.Specialty = *req.Specialty
		}
		if req.ConsultationFee != nil {
			if *req.ConsultationFee <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_consultation_fee"})
				return
			}
			user.ConsultationFee = *req.ConsultationFee
		}
		if req.Timezone != nil {
			if !timezone.IsValid(*req.Timezone) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_timezone"})
				return
			}
			user.Timezone = *req.Timezone
		}
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userPayload(&user)})
}
