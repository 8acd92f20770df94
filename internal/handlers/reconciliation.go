// agencia-crm/internal/handlers/reconciliation.go
package handlers

import (
	"errors"
	"log/slog"

	"agencia-crm/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// cuentaComoPago es el predicado único que decide si una evidencia suma al pago
// de su transacción: debe estar aprobada por el revisor Y facturada por contabilidad.
func cuentaComoPago(e models.Evidence) bool {
	return e.Status == models.EvidenciaAprobada && e.InvoiceStatus == models.Facturado
}

// totalPagado suma los montos de las evidencias que cuentan como pago.
// La suma se hace en decimal para evitar el arrastre de error de los float.
func totalPagado(evidencias []models.Evidence) decimal.Decimal {
	total := decimal.Zero
	for _, e := range evidencias {
		if cuentaComoPago(e) {
			total = total.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return total
}

// estadoDePago deriva el estado de pago de una transacción a partir de su
// libro de evidencias. El pago está completo cuando lo pagado alcanza o supera
// el monto objetivo; la igualdad exacta cuenta como completo y el sobrepago
// también (no se modela un estado aparte).
func estadoDePago(monto float64, evidencias []models.Evidence) models.PaymentStatus {
	if totalPagado(evidencias).GreaterThanOrEqual(decimal.NewFromFloat(monto)) {
		return models.PagoCompleto
	}
	return models.PagoIncompleto
}

// CalculatePaymentStatus consulta las evidencias de la transacción y deriva su
// estado de pago. Si la transacción no existe devuelve pago_incompleto: nunca
// falla, para que los llamadores no tengan que distinguir ese caso.
func CalculatePaymentStatus(db *gorm.DB, transactionID uint) models.PaymentStatus {
	var transaccion models.Transaction
	if err := db.First(&transaccion, transactionID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("No se pudo consultar la transacción para calcular su estado de pago",
				"transaction_id", transactionID, "error", err)
		}
		return models.PagoIncompleto
	}

	var evidencias []models.Evidence
	if err := db.Where("transaction_id = ?", transactionID).Find(&evidencias).Error; err != nil {
		slog.Error("No se pudieron consultar las evidencias de la transacción",
			"transaction_id", transactionID, "error", err)
		return models.PagoIncompleto
	}

	return estadoDePago(transaccion.Amount, evidencias)
}

// UpdateTransactionPaymentStatus recalcula y persiste el estado de pago de la
// transacción. La escritura es incondicional (aunque el valor no cambie), por lo
// que la operación es idempotente. Si la transacción no existe, retorna en
// silencio. La lectura del libro y la escritura del estado corren dentro de una
// misma transacción de base de datos para no persistir un agregado desfasado.
func UpdateTransactionPaymentStatus(db *gorm.DB, transactionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var transaccion models.Transaction
		if err := tx.First(&transaccion, transactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var evidencias []models.Evidence
		if err := tx.Where("transaction_id = ?", transactionID).Find(&evidencias).Error; err != nil {
			return err
		}

		estado := estadoDePago(transaccion.Amount, evidencias)
		return tx.Model(&transaccion).Update("payment_status", estado).Error
	})
}
