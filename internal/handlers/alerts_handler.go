package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/reservaestilo/booking-api/internal/httperr"
	"github.com/reservaestilo/booking-api/internal/models"
)

type AlertsHandler struct {
	db *gorm.DB
}

func NewAlertsHandler(db *gorm.DB) *AlertsHandler {
	return &AlertsHandler{db: db}
}

// List retorna las alertas pendientes de revisión manual, las más
// recientes primero. Con ?all=true incluye también las resueltas.
func (h *AlertsHandler) List(c *gin.Context) {
	q := h.db.Model(&models.AlertLog{}).Order("created_at DESC")

	if c.Query("all") != "true" {
		q = q.Where("resolved = false")
	}
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var alerts []models.AlertLog
	if err := q.Limit(200).Find(&alerts).Error; err != nil {
		httperr.Internal(c, "failed_to_list_alerts", "Error al listar alertas.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *AlertsHandler) Resolve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "ID inválido.")
		return
	}

	var alert models.AlertLog
	if err := h.db.First(&alert, uint(id)).Error; err != nil {
		httperr.NotFound(c, "alert_not_found", "Alerta no encontrada.")
		return
	}

	now := time.Now()
	alert.Resolved = true
	alert.ResolvedAt = &now

	if err := h.db.Save(&alert).Error; err != nil {
		httperr.Internal(c, "failed_to_resolve_alert", "Error al resolver la alerta.")
		return
	}

	c.JSON(http.StatusOK, alert)
}
