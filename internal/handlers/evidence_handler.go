// agencia-crm/internal/handlers/evidence_handler.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EvidenceCreate define los datos para registrar una evidencia de pago.
type EvidenceCreate struct {
	EvidenceFile string  `json:"evidence_file" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
}

// AddEvidenceHandler registra una nueva evidencia de pago para una transacción.
// La evidencia nace pendiente de revisión y sin facturar. No hay tope sobre la
// suma de evidencias frente al monto de la transacción: el sobrepago se tolera.
func AddEvidenceHandler(c *gin.Context) {
	transactionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ID de transacción inválido"})
		return
	}

	var req EvidenceCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
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

	evidencia := models.Evidence{
		TransactionID: transaccion.ID,
		EvidenceFile:  req.EvidenceFile,
		Amount:        req.Amount,
		Status:        models.EvidenciaPendiente,
		InvoiceStatus: models.NoFacturado,
		UploadDate:    time.Now().UTC(),
	}
	if err := config.DB.Create(&evidencia).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo guardar la evidencia"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Evidencia agregada con éxito", "evidence": evidencia})
}

// GetEvidencesByTransactionHandler lista las evidencias de una transacción.
func GetEvidencesByTransactionHandler(c *gin.Context) {
	transactionID := c.Param("id")

	var evidencias []models.Evidence
	if err := config.DB.Where("transaction_id = ?", transactionID).Order("id asc").Find(&evidencias).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
		return
	}
	if len(evidencias) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron evidencias para esta transacción"})
		return
	}

	c.JSON(http.StatusOK, evidencias)
}

// DeleteEvidenceHandler elimina una evidencia de una transacción. El estado de
// pago de la transacción NO se recalcula aquí; quien dependa del valor cacheado
// tras un borrado debe forzar el recálculo con otra mutación.
func DeleteEvidenceHandler(c *gin.Context) {
	transactionID := c.Param("id")
	evidenceID := c.Param("evidence_id")

	var evidencia models.Evidence
	err := config.DB.Where("id = ? AND transaction_id = ?", evidenceID, transactionID).First(&evidencia).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Evidencia no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la evidencia"})
		return
	}

	if err := config.DB.Delete(&evidencia).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo eliminar la evidencia"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAllEvidencesHandler lista todas las evidencias registradas.
func ListAllEvidencesHandler(c *gin.Context) {
	var evidencias []models.Evidence
	if err := config.DB.Order("id asc").Find(&evidencias).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
		return
	}
	if len(evidencias) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron evidencias"})
		return
	}
	c.JSON(http.StatusOK, evidencias)
}

// EvidenceStatusUpdate define el cuerpo del PATCH de estado de revisión.
type EvidenceStatusUpdate struct {
	Status models.EvidenceStatus `json:"status" binding:"required"`
}

// UpdateEvidenceStatusHandler cambia la decisión del revisor sobre una evidencia.
// Solo la transición a "approved" dispara el recálculo del estado de pago de la
// transacción dueña; pasar a "rejected" o volver a "pending" deja el valor
// cacheado como está hasta la próxima mutación que sí recalcule.
func UpdateEvidenceStatusHandler(c *gin.Context) {
	evidenceID, err := strconv.Atoi(c.Param("evidence_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ID de evidencia inválido"})
		return
	}

	var req EvidenceStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if !req.Status.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de evidencia no reconocido: %s", req.Status)})
		return
	}

	var evidencia models.Evidence
	if err := config.DB.First(&evidencia, evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Evidencia no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la evidencia"})
		return
	}

	if err := config.DB.Model(&evidencia).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar la evidencia"})
		return
	}

	if req.Status == models.EvidenciaAprobada {
		if err := UpdateTransactionPaymentStatus(config.DB, evidencia.TransactionID); err != nil {
			slog.Error("Fallo el recálculo del estado de pago", "transaction_id", evidencia.TransactionID, "error", err)
		}
		RegistrarEvento(config.DB, fmt.Sprintf("Evidencia %d aprobada para la transacción %d", evidencia.ID, evidencia.TransactionID))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Estado de la evidencia actualizado", "evidence": evidencia})
}

// EvidenceInvoiceUpdate define el cuerpo del PATCH de estado de facturación.
type EvidenceInvoiceUpdate struct {
	InvoiceStatus models.InvoiceStatus `json:"invoice_status" binding:"required"`
}

// UpdateEvidenceInvoiceStatusHandler cambia el eje contable de una evidencia.
// A diferencia del estado de revisión, aquí el recálculo del estado de pago se
// dispara en ambas direcciones: facturar puede completar el pago y desfacturar
// puede deshacerlo.
func UpdateEvidenceInvoiceStatusHandler(c *gin.Context) {
	evidenceID, err := strconv.Atoi(c.Param("evidence_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ID de evidencia inválido"})
		return
	}

	var req EvidenceInvoiceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if !req.InvoiceStatus.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de facturación no reconocido: %s", req.InvoiceStatus)})
		return
	}

	var evidencia models.Evidence
	if err := config.DB.First(&evidencia, evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Evidencia no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la evidencia"})
		return
	}

	if err := config.DB.Model(&evidencia).Update("invoice_status", req.InvoiceStatus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar la evidencia"})
		return
	}

	if err := UpdateTransactionPaymentStatus(config.DB, evidencia.TransactionID); err != nil {
		slog.Error("Fallo el recálculo del estado de pago", "transaction_id", evidencia.TransactionID, "error", err)
	}
	RegistrarEvento(config.DB, fmt.Sprintf("Evidencia %d marcada como %s en la transacción %d",
		evidencia.ID, req.InvoiceStatus, evidencia.TransactionID))

	c.JSON(http.StatusOK, gin.H{"message": "Estado de facturación actualizado", "evidence": evidencia})
}

// FilterEvidenceHandler lista evidencias por estado de revisión y facturación.
// Por defecto filtra las no facturadas (la bandeja de contabilidad); con los
// parámetros opcionales se puede acotar por estado de la transacción dueña,
// por estado de facturación y por estado de pago.
func FilterEvidenceHandler(c *gin.Context) {
	status := models.EvidenceStatus(c.Param("status"))
	if !status.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de evidencia no reconocido: %s", status)})
		return
	}

	invoiceStatus := models.InvoiceStatus(c.DefaultQuery("invoice", string(models.NoFacturado)))
	if !invoiceStatus.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de facturación no reconocido: %s", invoiceStatus)})
		return
	}

	query := config.DB.Model(&models.Evidence{}).
		Joins("JOIN transactions ON transactions.id = evidences.transaction_id").
		Where("evidences.status = ? AND evidences.invoice_status = ?", status, invoiceStatus).
		Where("transactions.deleted_at IS NULL")

	if ts := c.Query("transaction_status"); ts != "" {
		estado := models.TransactionStatus(ts)
		if !estado.EstadoValido() {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de transacción no reconocido: %s", ts)})
			return
		}
		query = query.Where("transactions.status = ?", estado)
	}
	if ps := c.Query("payment_status"); ps != "" {
		if ps != string(models.PagoIncompleto) && ps != string(models.PagoCompleto) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de pago no reconocido: %s", ps)})
			return
		}
		query = query.Where("transactions.payment_status = ?", ps)
	}

	var evidencias []models.Evidence
	if err := query.Order("evidences.id asc").Find(&evidencias).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
		return
	}
	if len(evidencias) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron evidencias con los criterios especificados"})
		return
	}

	c.JSON(http.StatusOK, evidencias)
}
