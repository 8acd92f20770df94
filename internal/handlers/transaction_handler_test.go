// agencia-crm/internal/handlers/transaction_handler_test.go
package handlers

import (
	"net/http"
	"testing"

	"agencia-crm/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEstadoEvidenciaPara(t *testing.T) {
	veredicto, ok := estadoEvidenciaPara(models.TransaccionAprobada)
	assert.True(t, ok)
	assert.Equal(t, models.EvidenciaAprobada, veredicto)

	veredicto, ok = estadoEvidenciaPara(models.TransaccionRechazada)
	assert.True(t, ok)
	assert.Equal(t, models.EvidenciaRechazada, veredicto)

	// Los estados sin equivalente en el vocabulario de evidencias no propagan.
	for _, estado := range []models.TransactionStatus{
		models.TransaccionPendiente,
		models.TransaccionTerminada,
		models.TransaccionIncompleta,
	} {
		_, ok := estadoEvidenciaPara(estado)
		assert.False(t, ok, "el estado %s no debería propagar veredicto", estado)
	}
}

func routerTransacciones() *gin.Engine {
	r := gin.New()
	r.PATCH("/transactions/:id/status", UpdateTransactionStatusHandler)
	return r
}

func filaTransaccion(id uint, monto float64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "amount", "status", "payment_status"}).
		AddRow(id, monto, status, "pago_incompleto")
}

// esperarCambioDeEstado cubre el First + Update del PATCH de estado.
func esperarCambioDeEstado(mock sqlmock.Sqlmock, filas *sqlmock.Rows, nuevoEstado string) {
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).WillReturnRows(filas)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions" SET "status"=\$1`).
		WithArgs(nuevoEstado, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestAprobarTransaccionPendientePropagaVeredicto(t *testing.T) {
	mock := usarBaseSimulada(t)

	esperarCambioDeEstado(mock, filaTransaccion(7, 100, "pending"), "approved")

	// La evidencia más reciente hereda el veredicto.
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WillReturnRows(filaEvidencia(3, 7, 100, "pending", "facturado"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "evidences" SET "status"=\$1`).
		WithArgs("approved", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Re-sincronización defensiva del estado de pago.
	esperarRecalculo(mock, 100.0,
		filaEvidencia(3, 7, 100, "approved", "facturado"), "pago_completo")
	esperarEvento(mock)

	w := patchJSON(routerTransacciones(), "/transactions/7/status", `{"status": "approved"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRechazarTransaccionPendientePropagaVeredicto(t *testing.T) {
	mock := usarBaseSimulada(t)

	esperarCambioDeEstado(mock, filaTransaccion(7, 100, "pending"), "rejected")

	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WillReturnRows(filaEvidencia(3, 7, 100, "pending", "facturado"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "evidences" SET "status"=\$1`).
		WithArgs("rejected", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	esperarRecalculo(mock, 100.0,
		filaEvidencia(3, 7, 100, "rejected", "facturado"), "pago_incompleto")
	esperarEvento(mock)

	w := patchJSON(routerTransacciones(), "/transactions/7/status", `{"status": "rejected"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTerminarTransaccionPendienteNoTocaEvidencias(t *testing.T) {
	mock := usarBaseSimulada(t)

	// "terminado" no tiene equivalente en el vocabulario de evidencias:
	// no hay búsqueda de la última evidencia, solo el re-sync del pago.
	esperarCambioDeEstado(mock, filaTransaccion(7, 100, "pending"), "terminado")
	esperarRecalculo(mock, 100.0,
		filaEvidencia(3, 7, 100, "pending", "facturado"), "pago_incompleto")
	esperarEvento(mock)

	w := patchJSON(routerTransacciones(), "/transactions/7/status", `{"status": "terminado"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAprobarTransaccionNoPendienteNoPropaga(t *testing.T) {
	mock := usarBaseSimulada(t)

	// El acople solo dispara sobre la arista pending → {approved, rejected}.
	esperarCambioDeEstado(mock, filaTransaccion(7, 100, "incompleta"), "approved")
	esperarRecalculo(mock, 100.0,
		filaEvidencia(3, 7, 100, "pending", "facturado"), "pago_incompleto")
	esperarEvento(mock)

	w := patchJSON(routerTransacciones(), "/transactions/7/status", `{"status": "approved"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAprobarTransaccionPendienteSinEvidencias(t *testing.T) {
	mock := usarBaseSimulada(t)

	esperarCambioDeEstado(mock, filaTransaccion(7, 100, "pending"), "approved")

	// Sin evidencias no hay a quién propagar el veredicto; el flujo sigue.
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(filaTransaccion(7, 100, "approved"))
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "transactions" SET "payment_status"=\$1`).
		WithArgs("pago_incompleto", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	esperarEvento(mock)

	w := patchJSON(routerTransacciones(), "/transactions/7/status", `{"status": "approved"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCambiarEstadoTransaccionInexistente(t *testing.T) {
	mock := usarBaseSimulada(t)

	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := patchJSON(routerTransacciones(), "/transactions/99/status", `{"status": "approved"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCambiarEstadoTransaccionInvalido(t *testing.T) {
	usarBaseSimulada(t)

	w := patchJSON(routerTransacciones(), "/transactions/7/status", `{"status": "cancelada"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
