// agencia-crm/internal/handlers/travel_info_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TravelInfoUpsert define los datos de alojamiento y traslado del viaje.
type TravelInfoUpsert struct {
	Hotel         string  `json:"hotel"`
	Ciudad        string  `json:"ciudad"`
	FechaCheckin  *string `json:"fecha_checkin"`
	FechaCheckout *string `json:"fecha_checkout"`
	Traslados     string  `json:"traslados"`
}

func parseFechaOpcional(valor *string) (*time.Time, error) {
	if valor == nil || *valor == "" {
		return nil, nil
	}
	fecha, err := time.Parse("2006-01-02", *valor)
	if err != nil {
		return nil, err
	}
	return &fecha, nil
}

// UpsertTravelInfoHandler crea o reemplaza la información de viaje de una transacción.
func UpsertTravelInfoHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}

	var req TravelInfoUpsert
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	checkin, err := parseFechaOpcional(req.FechaCheckin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Fecha de checkin inválida, use el formato YYYY-MM-DD"})
		return
	}
	checkout, err := parseFechaOpcional(req.FechaCheckout)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Fecha de checkout inválida, use el formato YYYY-MM-DD"})
		return
	}

	var info models.TravelInfo
	err = config.DB.Where("transaction_id = ?", transaccion.ID).First(&info).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la información de viaje"})
		return
	}

	info.TransactionID = transaccion.ID
	info.Hotel = req.Hotel
	info.Ciudad = req.Ciudad
	info.FechaCheckin = checkin
	info.FechaCheckout = checkout
	info.Traslados = req.Traslados

	if err := config.DB.Save(&info).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo guardar la información de viaje"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetTravelInfoHandler devuelve la información de viaje de una transacción.
func GetTravelInfoHandler(c *gin.Context) {
	var info models.TravelInfo
	if err := config.DB.Where("transaction_id = ?", c.Param("id")).First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "No hay información de viaje para esta transacción"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la información de viaje"})
		return
	}
	c.JSON(http.StatusOK, info)
}
