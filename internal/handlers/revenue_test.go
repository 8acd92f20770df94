// agencia-crm/internal/handlers/revenue_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agencia-crm/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidarRangoFechas(t *testing.T) {
	t.Run("sin rango", func(t *testing.T) {
		desde, hasta, err := validarRangoFechas("", "")
		require.NoError(t, err)
		assert.Nil(t, desde)
		assert.Nil(t, hasta)
	})

	t.Run("una sola fecha es error", func(t *testing.T) {
		_, _, err := validarRangoFechas("2025-01-01", "")
		assert.Error(t, err)
		_, _, err = validarRangoFechas("", "2025-01-31")
		assert.Error(t, err)
	})

	t.Run("formato inválido", func(t *testing.T) {
		_, _, err := validarRangoFechas("01/01/2025", "2025-01-31")
		assert.Error(t, err)
	})

	t.Run("rango invertido", func(t *testing.T) {
		_, _, err := validarRangoFechas("2025-02-01", "2025-01-01")
		assert.Error(t, err)
	})

	t.Run("rango válido", func(t *testing.T) {
		desde, hasta, err := validarRangoFechas("2025-01-01", "2025-03-15")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-01", desde.Format("2006-01-02"))
		assert.Equal(t, "2025-03-15", hasta.Format("2006-01-02"))
	})

	t.Run("mismo día", func(t *testing.T) {
		desde, hasta, err := validarRangoFechas("2025-01-01", "2025-01-01")
		require.NoError(t, err)
		assert.True(t, desde.Equal(*hasta))
	})
}

func TestSumarIngresos(t *testing.T) {
	// El ingreso se reconoce con la sola aprobación: una evidencia aprobada
	// sin facturar suma aquí aunque no cuente para el estado de pago.
	evidencias := []models.Evidence{
		evidencia(100, models.EvidenciaAprobada, models.Facturado),
		evidencia(50, models.EvidenciaAprobada, models.NoFacturado),
		evidencia(999, models.EvidenciaPendiente, models.Facturado),
		evidencia(999, models.EvidenciaRechazada, models.NoFacturado),
	}

	total, cantidad := sumarIngresos(evidencias)
	assert.True(t, total.Equal(decimal.NewFromInt(150)), "total = %s", total)
	assert.Equal(t, 2, cantidad)
}

func TestResumirPeriodoPorcentajes(t *testing.T) {
	evidencias := []models.Evidence{
		evidencia(1000, models.EvidenciaAprobada, models.Facturado),
	}
	resumen := resumirPeriodo(evidencias, nil)

	assert.Equal(t, 1000.0, resumen.Ingresos)
	assert.Equal(t, 150.0, resumen.Ganancias)
	assert.Equal(t, 50.0, resumen.Comision)
	assert.Equal(t, 1, resumen.CantidadEvidencias)
}

func TestContarVentas(t *testing.T) {
	transacciones := []models.Transaction{
		{Status: models.TransaccionPendiente},
		{Status: models.TransaccionAprobada},
		{Status: models.TransaccionAprobada},
		{Status: models.TransaccionRechazada},
		{Status: models.TransaccionTerminada},
		{Status: models.TransaccionIncompleta},
	}

	e := contarVentas(transacciones)
	assert.Equal(t, 6, e.TotalVentas)
	assert.Equal(t, 1, e.Pending)
	assert.Equal(t, 2, e.Approved)
	assert.Equal(t, 1, e.Rejected)
	assert.Equal(t, 1, e.Terminado)
	assert.Equal(t, 1, e.Incompleta)
}

func fecha(valor string) time.Time {
	f, err := time.Parse("2006-01-02", valor)
	if err != nil {
		panic(err)
	}
	return f
}

func TestPartirEnMeses(t *testing.T) {
	t.Run("rango dentro de un mes", func(t *testing.T) {
		meses := partirEnMeses(fecha("2025-03-10"), fecha("2025-03-20"))
		require.Len(t, meses, 1)
		assert.Equal(t, "2025-03-10", meses[0].Inicio.Format("2006-01-02"))
		assert.Equal(t, "2025-03-20", meses[0].Fin.Format("2006-01-02"))
	})

	t.Run("extremos recortados e intermedios naturales", func(t *testing.T) {
		meses := partirEnMeses(fecha("2025-01-15"), fecha("2025-03-10"))
		require.Len(t, meses, 3)

		assert.Equal(t, "2025-01-15", meses[0].Inicio.Format("2006-01-02"))
		assert.Equal(t, "2025-01-31", meses[0].Fin.Format("2006-01-02"))

		assert.Equal(t, "2025-02-01", meses[1].Inicio.Format("2006-01-02"))
		assert.Equal(t, "2025-02-28", meses[1].Fin.Format("2006-01-02"))

		assert.Equal(t, "2025-03-01", meses[2].Inicio.Format("2006-01-02"))
		assert.Equal(t, "2025-03-10", meses[2].Fin.Format("2006-01-02"))
	})

	t.Run("cruza el fin de año", func(t *testing.T) {
		meses := partirEnMeses(fecha("2024-12-15"), fecha("2025-02-10"))
		require.Len(t, meses, 3)
		assert.Equal(t, "2024-12-31", meses[0].Fin.Format("2006-01-02"))
		assert.Equal(t, "2025-01-01", meses[1].Inicio.Format("2006-01-02"))
		assert.Equal(t, "2025-01-31", meses[1].Fin.Format("2006-01-02"))
		assert.Equal(t, "2025-02-10", meses[2].Fin.Format("2006-01-02"))
	})

	t.Run("año bisiesto", func(t *testing.T) {
		meses := partirEnMeses(fecha("2024-02-01"), fecha("2024-02-29"))
		require.Len(t, meses, 1)
		assert.Equal(t, "2024-02-29", meses[0].Fin.Format("2006-01-02"))
	})

	t.Run("un solo día", func(t *testing.T) {
		meses := partirEnMeses(fecha("2025-06-15"), fecha("2025-06-15"))
		require.Len(t, meses, 1)
		assert.True(t, meses[0].Inicio.Equal(meses[0].Fin))
	})
}

func TestPartirEnMesesCubreElRangoCompleto(t *testing.T) {
	desde, hasta := fecha("2024-11-07"), fecha("2025-03-23")
	meses := partirEnMeses(desde, hasta)

	require.NotEmpty(t, meses)
	assert.True(t, meses[0].Inicio.Equal(desde))
	assert.True(t, meses[len(meses)-1].Fin.Equal(hasta))

	// Los segmentos son contiguos y sin solaparse.
	for i := 1; i < len(meses); i++ {
		assert.True(t, meses[i].Inicio.Equal(meses[i-1].Fin.AddDate(0, 0, 1)),
			"hueco entre el segmento %d y %d", i-1, i)
	}
}

func TestOrdenarPorComision(t *testing.T) {
	usuarios := []ComisionUsuario{
		{UserID: 1, ingresos: decimal.NewFromInt(100)},
		{UserID: 2, ingresos: decimal.NewFromInt(500)},
		{UserID: 3, ingresos: decimal.NewFromInt(250)},
	}

	ordenarPorComision(usuarios)

	assert.Equal(t, uint(2), usuarios[0].UserID)
	assert.Equal(t, uint(3), usuarios[1].UserID)
	assert.Equal(t, uint(1), usuarios[2].UserID)
}

func TestComisionesPorUsuarioExcluyeVendedoresFueraDelRango(t *testing.T) {
	// El ranking parte de las transacciones CREADAS dentro del rango. Un
	// vendedor cuyas transacciones son todas anteriores al rango no aparece,
	// aunque tenga evidencias con fecha de subida dentro de él.
	mock := usarBaseSimulada(t)

	desde, hasta := fecha("2025-01-01"), fecha("2025-01-31")
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WithArgs(desde, hasta.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seller_id", "status", "amount"}).
			AddRow(10, 1, "approved", 500.0).
			AddRow(11, 1, "pending", 300.0))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(1, "Laura Gómez", "laura@agencia.com"))
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_id", "amount", "status"}).
			AddRow(1, 10, 100.0, "approved").
			AddRow(2, 11, 50.0, "approved"))

	r := gin.New()
	r.GET("/transactions/comisiones-por-usuario", ComisionesPorUsuarioHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/transactions/comisiones-por-usuario?fecha_inicio=2025-01-01&fecha_fin=2025-01-31", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var respuesta struct {
		CantidadUsuarios int               `json:"cantidad_usuarios"`
		Usuarios         []ComisionUsuario `json:"usuarios"`
		TotalGeneral     struct {
			Ingresos    float64 `json:"ingresos"`
			Comision    float64 `json:"comision"`
			TotalVentas int     `json:"total_ventas"`
		} `json:"total_general"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respuesta))

	require.Equal(t, 1, respuesta.CantidadUsuarios)
	assert.Equal(t, uint(1), respuesta.Usuarios[0].UserID)
	assert.Equal(t, 150.0, respuesta.Usuarios[0].Ingresos)
	assert.Equal(t, 7.5, respuesta.Usuarios[0].Comision)
	assert.Equal(t, 150.0, respuesta.TotalGeneral.Ingresos)
	assert.Equal(t, 2, respuesta.TotalGeneral.TotalVentas)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvidenciasAprobadasRangoInclusivo(t *testing.T) {
	// El límite superior se consulta como "< fecha_fin + 1 día": una evidencia
	// subida exactamente el último día del rango queda incluida.
	db, mock := nuevaBaseSimulada(t)

	desde, hasta := fecha("2025-01-01"), fecha("2025-01-31")
	mock.ExpectQuery(`SELECT \* FROM "evidences"`).
		WithArgs("approved", desde, fecha("2025-02-01")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "status"}).
			AddRow(1, 100.0, "approved"))

	evidencias, err := evidenciasAprobadas(db, &desde, &hasta, "")
	require.NoError(t, err)
	assert.Len(t, evidencias, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
