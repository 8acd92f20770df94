// agencia-crm/internal/handlers/plan_pagos_handler_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func routerPlanPagos() *gin.Engine {
	r := gin.New()
	r.POST("/transactions/:id/plan-pagos/preview", PreviewPlanPagosHandler)
	return r
}

func postPlanPagos(t *testing.T, cuerpo string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transactions/7/plan-pagos/preview", strings.NewReader(cuerpo))
	req.Header.Set("Content-Type", "application/json")
	routerPlanPagos().ServeHTTP(w, req)
	return w
}

func filaTransaccionConCosto(monto, costo float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "amount", "agency_cost"}).AddRow(7, monto, costo)
}

func TestPreviewPlanPagos(t *testing.T) {
	mock := usarBaseSimulada(t)
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(filaTransaccionConCosto(1000, 600))

	w := postPlanPagos(t, `{"cuotas": [
		{"fecha": "2025-02-01", "formula": "Monto * 0.5"},
		{"fecha": "2025-03-01", "formula": "Monto * 0.3"},
		{"fecha": "2025-04-01", "formula": "Margen / 2"}
	]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_plan":1000`)
	assert.Contains(t, w.Body.String(), `"monto":500`)
	assert.Contains(t, w.Body.String(), `"monto":200`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewPlanPagosFormulaInvalida(t *testing.T) {
	mock := usarBaseSimulada(t)
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(filaTransaccionConCosto(1000, 600))

	w := postPlanPagos(t, `{"cuotas": [{"fecha": "2025-02-01", "formula": "Monto *"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewPlanPagosVariableDesconocida(t *testing.T) {
	mock := usarBaseSimulada(t)
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(filaTransaccionConCosto(1000, 600))

	w := postPlanPagos(t, `{"cuotas": [{"fecha": "2025-02-01", "formula": "Descuento * 2"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewPlanPagosSinCuotas(t *testing.T) {
	mock := usarBaseSimulada(t)
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(filaTransaccionConCosto(1000, 600))

	w := postPlanPagos(t, `{"cuotas": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewPlanPagosTransaccionInexistente(t *testing.T) {
	mock := usarBaseSimulada(t)
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := postPlanPagos(t, `{"cuotas": [{"fecha": "2025-02-01", "formula": "Monto"}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
