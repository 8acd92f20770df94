// agencia-crm/internal/handlers/plan_pagos_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/Knetic/govaluate"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuotaPreview es una cuota del plan de pagos propuesto.
type CuotaPreview struct {
	Fecha   string  `json:"fecha"`
	Formula string  `json:"formula"`
	Monto   float64 `json:"monto"`
}

// PlanPagosRequest define las cuotas a previsualizar, cada una con su fórmula.
// Las fórmulas pueden usar las variables Monto, CostoAgencia y Margen.
type PlanPagosRequest struct {
	Cuotas []struct {
		Fecha   string `json:"fecha" binding:"required"`
		Formula string `json:"formula" binding:"required"`
	} `json:"cuotas" binding:"required"`
}

// PreviewPlanPagosHandler calcula las cuotas de un plan de pagos para una venta
// a cuotas (abono) evaluando las fórmulas contra los montos de la transacción.
// No persiste nada: es una previsualización para acordar el plan con el cliente.
func PreviewPlanPagosHandler(c *gin.Context) {
	transactionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ID de transacción inválido"})
		return
	}

	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}

	var req PlanPagosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if len(req.Cuotas) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "El plan debe tener al menos una cuota"})
		return
	}

	parameters := map[string]interface{}{
		"Monto":        transaccion.Amount,
		"CostoAgencia": transaccion.AgencyCost,
		"Margen":       transaccion.Amount - transaccion.AgencyCost,
	}

	cuotas := make([]CuotaPreview, 0, len(req.Cuotas))
	total := decimal.Zero

	for _, cuota := range req.Cuotas {
		expr, err := govaluate.NewEvaluableExpression(cuota.Formula)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Error en la fórmula de la cuota: " + cuota.Formula})
			return
		}

		result, err := expr.Evaluate(parameters)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "No se pudo evaluar la fórmula: " + cuota.Formula})
			return
		}

		monto, ok := result.(float64)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "El resultado de la fórmula no es un número: " + cuota.Formula})
			return
		}

		cuotas = append(cuotas, CuotaPreview{
			Fecha:   cuota.Fecha,
			Formula: cuota.Formula,
			Monto:   monto,
		})
		total = total.Add(decimal.NewFromFloat(monto))
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction_id": transaccion.ID,
		"monto_objetivo": transaccion.Amount,
		"cuotas":         cuotas,
		"total_plan":     total.Round(2).InexactFloat64(),
	})
}
