// agencia-crm/internal/handlers/event_handler.go
package handlers

import (
	"net/http"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
)

// ListEventsHandler devuelve el registro de actividad paginado, del más
// reciente al más antiguo.
func ListEventsHandler(c *gin.Context) {
	var totalRows int64
	if err := config.DB.Model(&models.Event{}).Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar los eventos"})
		return
	}

	var eventos []models.Event
	if err := config.DB.Scopes(Paginate(c)).Order("id desc").Find(&eventos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar los eventos"})
		return
	}
	if eventos == nil {
		eventos = make([]models.Event, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, eventos, totalRows))
}
