// agencia-crm/internal/handlers/itinerario_handler.go
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

// ItinerarioCreate define el alta de un tramo de vuelo.
type ItinerarioCreate struct {
	Aerolinea   string `json:"aerolinea" binding:"required"`
	Ruta        string `json:"ruta" binding:"required"`
	Fecha       string `json:"fecha" binding:"required"`
	HoraSalida  string `json:"hora_salida"`
	HoraLlegada string `json:"hora_llegada"`
}

// ItinerarioUpdate define la actualización parcial de un tramo.
type ItinerarioUpdate struct {
	Aerolinea   *string `json:"aerolinea"`
	Ruta        *string `json:"ruta"`
	Fecha       *string `json:"fecha"`
	HoraSalida  *string `json:"hora_salida"`
	HoraLlegada *string `json:"hora_llegada"`
}

// AddItinerarioHandler agrega un tramo de vuelo a una transacción.
func AddItinerarioHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}

	var req ItinerarioCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Fecha inválida, use el formato YYYY-MM-DD"})
		return
	}

	itinerario := models.Itinerario{
		TransactionID: transaccion.ID,
		Aerolinea:     req.Aerolinea,
		Ruta:          req.Ruta,
		Fecha:         fecha,
		HoraSalida:    req.HoraSalida,
		HoraLlegada:   req.HoraLlegada,
	}
	if err := config.DB.Create(&itinerario).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo crear el itinerario"})
		return
	}

	c.JSON(http.StatusCreated, itinerario)
}

// GetItinerariosByTransactionHandler lista los tramos de una transacción.
func GetItinerariosByTransactionHandler(c *gin.Context) {
	var itinerarios []models.Itinerario
	if err := config.DB.Where("transaction_id = ?", c.Param("id")).Order("fecha asc").Find(&itinerarios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar los itinerarios"})
		return
	}
	if len(itinerarios) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron itinerarios para esta transacción"})
		return
	}
	c.JSON(http.StatusOK, itinerarios)
}

// ListAllItinerariosHandler lista todos los tramos registrados.
func ListAllItinerariosHandler(c *gin.Context) {
	var itinerarios []models.Itinerario
	if err := config.DB.Order("fecha asc").Find(&itinerarios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar los itinerarios"})
		return
	}
	c.JSON(http.StatusOK, itinerarios)
}

// UpdateItinerarioHandler actualiza parcialmente un tramo de una transacción.
func UpdateItinerarioHandler(c *gin.Context) {
	var itinerario models.Itinerario
	err := config.DB.Where("id = ? AND transaction_id = ?", c.Param("itinerario_id"), c.Param("id")).First(&itinerario).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Itinerario no encontrado para esta transacción"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el itinerario"})
		return
	}

	var req ItinerarioUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	cambios := map[string]interface{}{}
	if req.Aerolinea != nil {
		cambios["aerolinea"] = *req.Aerolinea
	}
	if req.Ruta != nil {
		cambios["ruta"] = *req.Ruta
	}
	if req.Fecha != nil {
		fecha, err := time.Parse("2006-01-02", *req.Fecha)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Fecha inválida, use el formato YYYY-MM-DD"})
			return
		}
		cambios["fecha"] = fecha
	}
	if req.HoraSalida != nil {
		cambios["hora_salida"] = *req.HoraSalida
	}
	if req.HoraLlegada != nil {
		cambios["hora_llegada"] = *req.HoraLlegada
	}

	if len(cambios) > 0 {
		if err := config.DB.Model(&itinerario).Updates(cambios).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar el itinerario"})
			return
		}
	}

	c.JSON(http.StatusOK, itinerario)
}

// DeleteItinerarioHandler elimina un tramo de una transacción.
func DeleteItinerarioHandler(c *gin.Context) {
	var itinerario models.Itinerario
	err := config.DB.Where("id = ? AND transaction_id = ?", c.Param("itinerario_id"), c.Param("id")).First(&itinerario).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Itinerario no encontrado para esta transacción"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el itinerario"})
		return
	}

	if err := config.DB.Delete(&itinerario).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo eliminar el itinerario"})
		return
	}

	c.Status(http.StatusNoContent)
}
