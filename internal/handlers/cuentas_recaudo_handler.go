// agencia-crm/internal/handlers/cuentas_recaudo_handler.go
package handlers

import (
	"errors"
	"net/http"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CuentaRecaudoCreate define los datos de alta de una cuenta de recaudo.
type CuentaRecaudoCreate struct {
	Banco        string `json:"banco" binding:"required"`
	NumeroCuenta string `json:"numero_cuenta" binding:"required"`
	TipoCuenta   string `json:"tipo_cuenta" binding:"required"`
	Titular      string `json:"titular" binding:"required"`
}

// CreateCuentaRecaudoHandler registra una cuenta bancaria de recaudo.
func CreateCuentaRecaudoHandler(c *gin.Context) {
	var req CuentaRecaudoCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	cuenta := models.CuentasRecaudo{
		Banco:        req.Banco,
		NumeroCuenta: req.NumeroCuenta,
		TipoCuenta:   req.TipoCuenta,
		Titular:      req.Titular,
	}
	if err := config.DB.Create(&cuenta).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo crear la cuenta de recaudo"})
		return
	}

	c.JSON(http.StatusCreated, cuenta)
}

// ListCuentasRecaudoHandler lista las cuentas de recaudo registradas.
func ListCuentasRecaudoHandler(c *gin.Context) {
	var cuentas []models.CuentasRecaudo
	if err := config.DB.Order("id asc").Find(&cuentas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las cuentas de recaudo"})
		return
	}
	c.JSON(http.StatusOK, cuentas)
}

// DeleteCuentaRecaudoHandler elimina una cuenta de recaudo.
func DeleteCuentaRecaudoHandler(c *gin.Context) {
	var cuenta models.CuentasRecaudo
	if err := config.DB.First(&cuenta, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Cuenta de recaudo no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la cuenta de recaudo"})
		return
	}

	if err := config.DB.Delete(&cuenta).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo eliminar la cuenta de recaudo"})
		return
	}

	c.Status(http.StatusNoContent)
}
