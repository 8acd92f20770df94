// agencia-crm/internal/handlers/revenue_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Porcentajes fijos sobre el ingreso. Ganancia y comisión no se registran por
// separado: siempre se derivan del ingreso del período.
var (
	porcentajeGanancia = decimal.NewFromFloat(0.15)
	porcentajeComision = decimal.NewFromFloat(0.05)
)

var nombresMeses = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// validarRangoFechas interpreta los parámetros fecha_inicio / fecha_fin.
// Ambos son opcionales pero van juntos: uno sin el otro es un error, igual que
// un rango invertido o una fecha mal formada. Devuelve (nil, nil, nil) cuando
// no se pidió rango.
func validarRangoFechas(inicio, fin string) (*time.Time, *time.Time, error) {
	if inicio == "" && fin == "" {
		return nil, nil, nil
	}
	if inicio == "" || fin == "" {
		return nil, nil, errors.New("Debe indicar fecha_inicio y fecha_fin juntas")
	}

	desde, err := time.Parse("2006-01-02", inicio)
	if err != nil {
		return nil, nil, fmt.Errorf("Formato de fecha inválido: %s. Use YYYY-MM-DD", inicio)
	}
	hasta, err := time.Parse("2006-01-02", fin)
	if err != nil {
		return nil, nil, fmt.Errorf("Formato de fecha inválido: %s. Use YYYY-MM-DD", fin)
	}
	if desde.After(hasta) {
		return nil, nil, errors.New("fecha_inicio no puede ser posterior a fecha_fin")
	}
	return &desde, &hasta, nil
}

// EstadisticasVentas cuenta las transacciones del período por estado de flujo.
type EstadisticasVentas struct {
	TotalVentas int `json:"total_ventas"`
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Incompleta  int `json:"incompleta"`
	Rejected    int `json:"rejected"`
	Terminado   int `json:"terminado"`
}

func contarVentas(transacciones []models.Transaction) EstadisticasVentas {
	var e EstadisticasVentas
	e.TotalVentas = len(transacciones)
	for _, t := range transacciones {
		switch t.Status {
		case models.TransaccionPendiente:
			e.Pending++
		case models.TransaccionAprobada:
			e.Approved++
		case models.TransaccionIncompleta:
			e.Incompleta++
		case models.TransaccionRechazada:
			e.Rejected++
		case models.TransaccionTerminada:
			e.Terminado++
		}
	}
	return e
}

// sumarIngresos suma los montos de las evidencias aprobadas. A diferencia del
// cálculo de estado de pago, el ingreso se reconoce con la sola aprobación:
// la facturación no es requisito para reportarlo.
func sumarIngresos(evidencias []models.Evidence) (decimal.Decimal, int) {
	total := decimal.Zero
	cantidad := 0
	for _, e := range evidencias {
		if e.Status == models.EvidenciaAprobada {
			total = total.Add(decimal.NewFromFloat(e.Amount))
			cantidad++
		}
	}
	return total, cantidad
}

// ResumenPeriodo son los totales financieros de un período.
type ResumenPeriodo struct {
	Ingresos           float64            `json:"ingresos"`
	Ganancias          float64            `json:"ganancias"`
	Comision           float64            `json:"comision"`
	CantidadEvidencias int                `json:"cantidad_evidencias"`
	Estadisticas       EstadisticasVentas `json:"estadisticas_ventas"`
}

func resumirPeriodo(evidencias []models.Evidence, transacciones []models.Transaction) ResumenPeriodo {
	ingresos, cantidad := sumarIngresos(evidencias)
	return ResumenPeriodo{
		Ingresos:           ingresos.Round(2).InexactFloat64(),
		Ganancias:          ingresos.Mul(porcentajeGanancia).Round(2).InexactFloat64(),
		Comision:           ingresos.Mul(porcentajeComision).Round(2).InexactFloat64(),
		CantidadEvidencias: cantidad,
		Estadisticas:       contarVentas(transacciones),
	}
}

// evidenciasAprobadas trae las evidencias aprobadas del período, filtradas por
// fecha de subida (rango inclusivo) y opcionalmente por vendedor.
func evidenciasAprobadas(db *gorm.DB, desde, hasta *time.Time, sellerID string) ([]models.Evidence, error) {
	query := db.Model(&models.Evidence{}).Where("evidences.status = ?", models.EvidenciaAprobada)
	if desde != nil {
		query = query.Where("evidences.upload_date >= ? AND evidences.upload_date < ?",
			*desde, hasta.AddDate(0, 0, 1))
	}
	if sellerID != "" {
		query = query.
			Joins("JOIN transactions ON transactions.id = evidences.transaction_id").
			Where("transactions.seller_id = ? AND transactions.deleted_at IS NULL", sellerID)
	}

	var evidencias []models.Evidence
	err := query.Find(&evidencias).Error
	return evidencias, err
}

// transaccionesDelPeriodo trae las transacciones creadas en el período,
// opcionalmente de un vendedor.
func transaccionesDelPeriodo(db *gorm.DB, desde, hasta *time.Time, sellerID string) ([]models.Transaction, error) {
	query := db.Model(&models.Transaction{})
	if desde != nil {
		query = query.Where("created_at >= ? AND created_at < ?", *desde, hasta.AddDate(0, 0, 1))
	}
	if sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}

	var transacciones []models.Transaction
	err := query.Find(&transacciones).Error
	return transacciones, err
}

// IngresosTotalesHandler devuelve los totales de ingresos del período
// (histórico completo si no se pide rango), opcionalmente por vendedor.
// Un período sin movimientos es una respuesta válida con totales en cero.
func IngresosTotalesHandler(c *gin.Context) {
	desde, hasta, err := validarRangoFechas(c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	sellerID := c.Query("user_id")
	if sellerID != "" {
		var vendedor models.User
		if err := config.DB.First(&vendedor, sellerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Vendedor no encontrado"})
			return
		}
	}

	evidencias, err := evidenciasAprobadas(config.DB, desde, hasta, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
		return
	}
	transacciones, err := transaccionesDelPeriodo(config.DB, desde, hasta, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}

	resumen := resumirPeriodo(evidencias, transacciones)

	respuesta := gin.H{
		"titulo_periodo":      "Histórico completo",
		"total_ingresos":      resumen.Ingresos,
		"total_ganancias":     resumen.Ganancias,
		"total_comision":      resumen.Comision,
		"cantidad_evidencias": resumen.CantidadEvidencias,
		"estadisticas_ventas": resumen.Estadisticas,
	}
	if desde != nil {
		respuesta["titulo_periodo"] = fmt.Sprintf("Del %s al %s", desde.Format("2006-01-02"), hasta.Format("2006-01-02"))
		respuesta["fecha_inicio"] = desde.Format("2006-01-02")
		respuesta["fecha_fin"] = hasta.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, respuesta)
}

// IngresosTotalesUsuarioHandler devuelve los totales de un vendedor concreto.
func IngresosTotalesUsuarioHandler(c *gin.Context) {
	sellerID := c.Query("user_id")
	if sellerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Debe indicar user_id"})
		return
	}

	var vendedor models.User
	if err := config.DB.First(&vendedor, sellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Vendedor no encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar el vendedor"})
		return
	}

	desde, hasta, err := validarRangoFechas(c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	evidencias, err := evidenciasAprobadas(config.DB, desde, hasta, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
		return
	}
	transacciones, err := transaccionesDelPeriodo(config.DB, desde, hasta, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}

	resumen := resumirPeriodo(evidencias, transacciones)

	respuesta := gin.H{
		"user_id":             vendedor.ID,
		"usuario_email":       vendedor.Email,
		"titulo_periodo":      fmt.Sprintf("Histórico completo de %s", vendedor.Name),
		"total_ingresos":      resumen.Ingresos,
		"total_ganancias":     resumen.Ganancias,
		"total_comision":      resumen.Comision,
		"cantidad_evidencias": resumen.CantidadEvidencias,
		"estadisticas_ventas": resumen.Estadisticas,
	}
	if desde != nil {
		respuesta["titulo_periodo"] = fmt.Sprintf("Ventas de %s del %s al %s",
			vendedor.Name, desde.Format("2006-01-02"), hasta.Format("2006-01-02"))
		respuesta["fecha_inicio"] = desde.Format("2006-01-02")
		respuesta["fecha_fin"] = hasta.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, respuesta)
}

// mesCalendario es un mes (o fracción) dentro del rango pedido.
type mesCalendario struct {
	Inicio time.Time // primer día incluido
	Fin    time.Time // último día incluido
}

// partirEnMeses divide [desde, hasta] en meses calendario. El primero y el
// último quedan recortados a los límites pedidos; los intermedios usan su
// inicio y fin naturales. Funciona también cruzando el fin de año.
func partirEnMeses(desde, hasta time.Time) []mesCalendario {
	var meses []mesCalendario

	inicio := desde
	for !inicio.After(hasta) {
		finDeMes := time.Date(inicio.Year(), inicio.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 1, -1)
		fin := finDeMes
		if fin.After(hasta) {
			fin = hasta
		}
		meses = append(meses, mesCalendario{Inicio: inicio, Fin: fin})
		inicio = finDeMes.AddDate(0, 0, 1)
	}
	return meses
}

// DatosMes es el resumen financiero de un mes dentro del rango pedido.
type DatosMes struct {
	NombreMes          string             `json:"nombre_mes"`
	Anio               int                `json:"año"`
	FechaInicio        string             `json:"fecha_inicio"`
	FechaFin           string             `json:"fecha_fin"`
	Ingresos           float64            `json:"ingresos"`
	Ganancias          float64            `json:"ganancias"`
	Comision           float64            `json:"comision"`
	CantidadEvidencias int                `json:"cantidad_evidencias"`
	Estadisticas       EstadisticasVentas `json:"estadisticas_ventas"`
}

// IngresosTotalesMensualHandler desglosa los ingresos por mes calendario y
// acumula el total del rango completo.
func IngresosTotalesMensualHandler(c *gin.Context) {
	desde, hasta, err := validarRangoFechas(c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if desde == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Debe indicar fecha_inicio y fecha_fin"})
		return
	}

	meses := partirEnMeses(*desde, *hasta)
	datos := make([]DatosMes, 0, len(meses))

	acumuladoIngresos := decimal.Zero
	acumuladoEvidencias := 0
	var acumuladoVentas EstadisticasVentas

	for _, mes := range meses {
		inicio, fin := mes.Inicio, mes.Fin
		evidencias, err := evidenciasAprobadas(config.DB, &inicio, &fin, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
			return
		}
		transacciones, err := transaccionesDelPeriodo(config.DB, &inicio, &fin, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
			return
		}

		resumen := resumirPeriodo(evidencias, transacciones)
		datos = append(datos, DatosMes{
			NombreMes:          nombresMeses[mes.Inicio.Month()-1],
			Anio:               mes.Inicio.Year(),
			FechaInicio:        mes.Inicio.Format("2006-01-02"),
			FechaFin:           mes.Fin.Format("2006-01-02"),
			Ingresos:           resumen.Ingresos,
			Ganancias:          resumen.Ganancias,
			Comision:           resumen.Comision,
			CantidadEvidencias: resumen.CantidadEvidencias,
			Estadisticas:       resumen.Estadisticas,
		})

		ingresosMes, _ := sumarIngresos(evidencias)
		acumuladoIngresos = acumuladoIngresos.Add(ingresosMes)
		acumuladoEvidencias += resumen.CantidadEvidencias
		acumuladoVentas.TotalVentas += resumen.Estadisticas.TotalVentas
		acumuladoVentas.Pending += resumen.Estadisticas.Pending
		acumuladoVentas.Approved += resumen.Estadisticas.Approved
		acumuladoVentas.Incompleta += resumen.Estadisticas.Incompleta
		acumuladoVentas.Rejected += resumen.Estadisticas.Rejected
		acumuladoVentas.Terminado += resumen.Estadisticas.Terminado
	}

	c.JSON(http.StatusOK, gin.H{
		"rango_fechas": gin.H{
			"fecha_inicio": desde.Format("2006-01-02"),
			"fecha_fin":    hasta.Format("2006-01-02"),
		},
		"cantidad_meses":  len(datos),
		"datos_mensuales": datos,
		"total_acumulado": gin.H{
			"ingresos":            acumuladoIngresos.Round(2).InexactFloat64(),
			"ganancias":           acumuladoIngresos.Mul(porcentajeGanancia).Round(2).InexactFloat64(),
			"comision":            acumuladoIngresos.Mul(porcentajeComision).Round(2).InexactFloat64(),
			"cantidad_evidencias": acumuladoEvidencias,
			"estadisticas_ventas": acumuladoVentas,
		},
	})
}

// ExportIngresosMensualHandler exporta el desglose mensual a un archivo Excel.
func ExportIngresosMensualHandler(c *gin.Context) {
	desde, hasta, err := validarRangoFechas(c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if desde == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Debe indicar fecha_inicio y fecha_fin"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Ingresos mensuales"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)

	headers := []string{"Mes", "Año", "Desde", "Hasta", "Ingresos", "Ganancias (15%)", "Comisión (5%)", "Evidencias", "Ventas"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, mes := range partirEnMeses(*desde, *hasta) {
		inicio, fin := mes.Inicio, mes.Fin
		evidencias, err := evidenciasAprobadas(config.DB, &inicio, &fin, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
			return
		}
		transacciones, err := transaccionesDelPeriodo(config.DB, &inicio, &fin, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
			return
		}
		resumen := resumirPeriodo(evidencias, transacciones)

		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), nombresMeses[mes.Inicio.Month()-1])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), mes.Inicio.Year())
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), mes.Inicio.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), mes.Fin.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), resumen.Ingresos)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), resumen.Ganancias)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), resumen.Comision)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), resumen.CantidadEvidencias)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), resumen.Estadisticas.TotalVentas)
	}

	fileName := fmt.Sprintf("ingresos_mensuales_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo generar el archivo Excel"})
	}
}

// ComisionUsuario es la fila de un vendedor en el ranking de comisiones.
type ComisionUsuario struct {
	UserID             uint               `json:"user_id"`
	Nombre             string             `json:"nombre"`
	Email              string             `json:"email"`
	Ingresos           float64            `json:"ingresos"`
	Ganancias          float64            `json:"ganancias"`
	Comision           float64            `json:"comision"`
	CantidadEvidencias int                `json:"cantidad_evidencias"`
	Estadisticas       EstadisticasVentas `json:"estadisticas_ventas"`

	ingresos decimal.Decimal
}

// ordenarPorComision ordena el ranking de mayor a menor comisión.
func ordenarPorComision(usuarios []ComisionUsuario) {
	sort.Slice(usuarios, func(i, j int) bool {
		return usuarios[i].ingresos.GreaterThan(usuarios[j].ingresos)
	})
}

// ComisionesPorUsuarioHandler arma el ranking de comisiones por vendedor en el
// rango pedido. Solo aparecen vendedores con al menos una transacción CREADA
// dentro del rango: la evidencia de una transacción creada fuera del rango no
// incluye a su vendedor aunque la fecha de subida caiga dentro.
func ComisionesPorUsuarioHandler(c *gin.Context) {
	desde, hasta, err := validarRangoFechas(c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if desde == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Debe indicar fecha_inicio y fecha_fin"})
		return
	}

	transacciones, err := transaccionesDelPeriodo(config.DB, desde, hasta, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}

	porVendedor := map[uint][]models.Transaction{}
	for _, t := range transacciones {
		porVendedor[t.SellerID] = append(porVendedor[t.SellerID], t)
	}

	usuarios := make([]ComisionUsuario, 0, len(porVendedor))
	totalIngresos := decimal.Zero
	totalEvidencias := 0
	totalVentas := 0

	for sellerID, ventas := range porVendedor {
		var vendedor models.User
		if err := config.DB.First(&vendedor, sellerID).Error; err != nil {
			continue
		}

		ids := make([]uint, 0, len(ventas))
		for _, t := range ventas {
			ids = append(ids, t.ID)
		}
		var evidencias []models.Evidence
		err := config.DB.
			Where("transaction_id IN ? AND status = ?", ids, models.EvidenciaAprobada).
			Find(&evidencias).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las evidencias"})
			return
		}

		ingresos, cantidad := sumarIngresos(evidencias)
		usuarios = append(usuarios, ComisionUsuario{
			UserID:             vendedor.ID,
			Nombre:             vendedor.Name,
			Email:              vendedor.Email,
			Ingresos:           ingresos.Round(2).InexactFloat64(),
			Ganancias:          ingresos.Mul(porcentajeGanancia).Round(2).InexactFloat64(),
			Comision:           ingresos.Mul(porcentajeComision).Round(2).InexactFloat64(),
			CantidadEvidencias: cantidad,
			Estadisticas:       contarVentas(ventas),
			ingresos:           ingresos,
		})

		totalIngresos = totalIngresos.Add(ingresos)
		totalEvidencias += cantidad
		totalVentas += len(ventas)
	}

	ordenarPorComision(usuarios)

	c.JSON(http.StatusOK, gin.H{
		"rango_fechas": gin.H{
			"fecha_inicio": desde.Format("2006-01-02"),
			"fecha_fin":    hasta.Format("2006-01-02"),
		},
		"cantidad_usuarios": len(usuarios),
		"usuarios":          usuarios,
		"total_general": gin.H{
			"ingresos":            totalIngresos.Round(2).InexactFloat64(),
			"ganancias":           totalIngresos.Mul(porcentajeGanancia).Round(2).InexactFloat64(),
			"comision":            totalIngresos.Mul(porcentajeComision).Round(2).InexactFloat64(),
			"cantidad_evidencias": totalEvidencias,
			"total_ventas":        totalVentas,
		},
	})
}
