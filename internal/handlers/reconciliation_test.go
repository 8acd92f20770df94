// agencia-crm/internal/handlers/reconciliation_test.go
package handlers

import (
	"testing"

	"agencia-crm/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evidencia(monto float64, status models.EvidenceStatus, invoice models.InvoiceStatus) models.Evidence {
	return models.Evidence{Amount: monto, Status: status, InvoiceStatus: invoice}
}

func TestEstadoDePagoUmbral(t *testing.T) {
	// La igualdad exacta cuenta como pago completo.
	estado := estadoDePago(100, []models.Evidence{
		evidencia(100, models.EvidenciaAprobada, models.Facturado),
	})
	assert.Equal(t, models.PagoCompleto, estado)

	// Un centavo por debajo sigue incompleto.
	estado = estadoDePago(100, []models.Evidence{
		evidencia(99.99, models.EvidenciaAprobada, models.Facturado),
	})
	assert.Equal(t, models.PagoIncompleto, estado)
}

func TestEstadoDePagoSobrepago(t *testing.T) {
	estado := estadoDePago(100, []models.Evidence{
		evidencia(150, models.EvidenciaAprobada, models.Facturado),
	})
	assert.Equal(t, models.PagoCompleto, estado)
}

func TestEstadoDePagoEjesIndependientes(t *testing.T) {
	// Aprobada pero sin facturar no suma, sin importar el monto.
	estado := estadoDePago(100, []models.Evidence{
		evidencia(150, models.EvidenciaAprobada, models.NoFacturado),
	})
	assert.Equal(t, models.PagoIncompleto, estado)

	// Facturada pero pendiente de revisión tampoco.
	estado = estadoDePago(100, []models.Evidence{
		evidencia(150, models.EvidenciaPendiente, models.Facturado),
	})
	assert.Equal(t, models.PagoIncompleto, estado)

	// La rechazada nunca suma.
	estado = estadoDePago(100, []models.Evidence{
		evidencia(150, models.EvidenciaRechazada, models.Facturado),
	})
	assert.Equal(t, models.PagoIncompleto, estado)
}

func TestEstadoDePagoSumaParcial(t *testing.T) {
	evidencias := []models.Evidence{
		evidencia(40, models.EvidenciaAprobada, models.Facturado),
		evidencia(30, models.EvidenciaAprobada, models.Facturado),
		evidencia(50, models.EvidenciaAprobada, models.NoFacturado),
	}
	assert.Equal(t, models.PagoIncompleto, estadoDePago(100, evidencias))

	evidencias = append(evidencias, evidencia(30, models.EvidenciaAprobada, models.Facturado))
	assert.Equal(t, models.PagoCompleto, estadoDePago(100, evidencias))
}

func TestEstadoDePagoMonotonia(t *testing.T) {
	// Agregar una evidencia aprobada y facturada nunca retrocede el estado.
	evidencias := []models.Evidence{
		evidencia(100, models.EvidenciaAprobada, models.Facturado),
	}
	require.Equal(t, models.PagoCompleto, estadoDePago(100, evidencias))

	evidencias = append(evidencias, evidencia(0.01, models.EvidenciaAprobada, models.Facturado))
	assert.Equal(t, models.PagoCompleto, estadoDePago(100, evidencias))
}

func TestEstadoDePagoCentavosSinArrastre(t *testing.T) {
	// Tres pagos de 0.10 cubren exactamente 0.30; la suma decimal no
	// acumula error de representación binaria.
	evidencias := []models.Evidence{
		evidencia(0.10, models.EvidenciaAprobada, models.Facturado),
		evidencia(0.10, models.EvidenciaAprobada, models.Facturado),
		evidencia(0.10, models.EvidenciaAprobada, models.Facturado),
	}
	assert.Equal(t, models.PagoCompleto, estadoDePago(0.30, evidencias))
}

func TestEstadoDePagoSinEvidencias(t *testing.T) {
	assert.Equal(t, models.PagoIncompleto, estadoDePago(100, nil))
	// Monto cero con libro vacío queda completo: cero pagado alcanza cero.
	assert.Equal(t, models.PagoCompleto, estadoDePago(0, nil))
}

func TestCalculatePaymentStatusTransaccionInexistente(t *testing.T) {
	db, mock := nuevaBaseSimulada(t)

	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	assert.Equal(t, models.PagoIncompleto, CalculatePaymentStatus(db, 99))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalculatePaymentStatusDesdeElLibro(t *testing.T) {
	db, mock := nuevaBaseSimulada(t)

	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).AddRow(7, 100.0))
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "amount", "status", "invoice_status"}).
			AddRow(1, 7, 60.0, "approved", "facturado").
			AddRow(2, 7, 40.0, "approved", "facturado"))

	assert.Equal(t, models.PagoCompleto, CalculatePaymentStatus(db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func esperarRecalculo(mock sqlmock.Sqlmock, monto float64, filas *sqlmock.Rows, estadoFinal models.PaymentStatus) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).AddRow(7, monto))
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).WillReturnRows(filas)
	mock.ExpectExec(`UPDATE "transactions" SET "payment_status"=\$1`).
		WithArgs(string(estadoFinal), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestUpdateTransactionPaymentStatusPersiste(t *testing.T) {
	db, mock := nuevaBaseSimulada(t)

	filas := sqlmock.NewRows([]string{"id", "transaction_id", "amount", "status", "invoice_status"}).
		AddRow(1, 7, 100.0, "approved", "facturado")
	esperarRecalculo(mock, 100.0, filas, models.PagoCompleto)

	require.NoError(t, UpdateTransactionPaymentStatus(db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTransactionPaymentStatusEscrituraIncondicional(t *testing.T) {
	// Aunque el valor derivado no cambie, la escritura ocurre igual:
	// la operación es idempotente y siempre deja el cache re-sellado.
	db, mock := nuevaBaseSimulada(t)

	filas := sqlmock.NewRows([]string{"id", "transaction_id", "amount", "status", "invoice_status"}).
		AddRow(1, 7, 10.0, "pending", "no_facturado")
	esperarRecalculo(mock, 100.0, filas, models.PagoIncompleto)

	require.NoError(t, UpdateTransactionPaymentStatus(db, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTransactionPaymentStatusTransaccionInexistente(t *testing.T) {
	db, mock := nuevaBaseSimulada(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	assert.NoError(t, UpdateTransactionPaymentStatus(db, 404))
	assert.NoError(t, mock.ExpectationsWereMet())
}
