// agencia-crm/internal/handlers/documento_handler.go
package handlers

import (
	"errors"
	"net/http"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DocumentoCreate define el alta de un documento de soporte.
type DocumentoCreate struct {
	Nombre  string `json:"nombre" binding:"required"`
	Archivo string `json:"archivo" binding:"required"`
}

// AddDocumentoHandler adjunta un documento de soporte a una transacción.
func AddDocumentoHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}

	var req DocumentoCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	documento := models.Documento{
		TransactionID: transaccion.ID,
		Nombre:        req.Nombre,
		Archivo:       req.Archivo,
	}
	if err := config.DB.Create(&documento).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo guardar el documento"})
		return
	}

	c.JSON(http.StatusCreated, documento)
}

// GetDocumentosByTransactionHandler lista los documentos de una transacción.
func GetDocumentosByTransactionHandler(c *gin.Context) {
	var documentos []models.Documento
	if err := config.DB.Where("transaction_id = ?", c.Param("id")).Order("id asc").Find(&documentos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar los documentos"})
		return
	}
	c.JSON(http.StatusOK, documentos)
}

// DeleteDocumentoHandler elimina un documento de una transacción.
func DeleteDocumentoHandler(c *gin.Context) {
	var documento models.Documento
	err := config.DB.Where("id = ? AND transaction_id = ?", c.Param("documento_id"), c.Param("id")).First(&documento).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Documento no encontrado para esta transacción"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el documento"})
		return
	}

	if err := config.DB.Delete(&documento).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo eliminar el documento"})
		return
	}

	c.Status(http.StatusNoContent)
}
