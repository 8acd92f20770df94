// agencia-crm/internal/handlers/transaction_handler.go
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

// TravelerCreate define los datos de un viajero dentro de una transacción.
type TravelerCreate struct {
	Name     string `json:"name" binding:"required"`
	DNI      string `json:"dni" binding:"required"`
	Age      int    `json:"age" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	DNIImage string `json:"dni_image"`
}

// TransactionCreate define los datos para registrar una venta.
type TransactionCreate struct {
	ClientName      string                   `json:"client_name" binding:"required"`
	ClientEmail     string                   `json:"client_email" binding:"required,email"`
	ClientPhone     string                   `json:"client_phone" binding:"required"`
	ClientDNI       string                   `json:"client_dni" binding:"required"`
	ClientAddress   string                   `json:"client_address" binding:"required"`
	InvoiceImage    string                   `json:"invoice_image"`
	IDImage         string                   `json:"id_image"`
	Package         string                   `json:"package" binding:"required"`
	QuotedFlight    string                   `json:"quoted_flight" binding:"required"`
	AgencyCost      float64                  `json:"agency_cost" binding:"required"`
	Amount          float64                  `json:"amount" binding:"required"`
	TransactionType models.TransactionType   `json:"transaction_type" binding:"required"`
	Status          models.TransactionStatus `json:"status"`
	SellerID        uint                     `json:"seller_id" binding:"required"`
	Receipt         string                   `json:"receipt"`
	StartDate       *time.Time               `json:"start_date"`
	EndDate         *time.Time               `json:"end_date"`
	Travelers       []TravelerCreate         `json:"travelers"`
}

// TransactionUpdate define la actualización parcial de una venta. Solo los
// campos presentes en el cuerpo se modifican.
type TransactionUpdate struct {
	ClientName      *string                   `json:"client_name"`
	ClientEmail     *string                   `json:"client_email"`
	ClientPhone     *string                   `json:"client_phone"`
	ClientDNI       *string                   `json:"client_dni"`
	ClientAddress   *string                   `json:"client_address"`
	InvoiceImage    *string                   `json:"invoice_image"`
	IDImage         *string                   `json:"id_image"`
	Package         *string                   `json:"package"`
	QuotedFlight    *string                   `json:"quoted_flight"`
	AgencyCost      *float64                  `json:"agency_cost"`
	Amount          *float64                  `json:"amount"`
	TransactionType *models.TransactionType   `json:"transaction_type"`
	Status          *models.TransactionStatus `json:"status"`
	SellerID        *uint                     `json:"seller_id"`
	Receipt         *string                   `json:"receipt"`
	StartDate       *time.Time                `json:"start_date"`
	EndDate         *time.Time                `json:"end_date"`
	Travelers       []TravelerCreate          `json:"travelers"`
}

// TransactionResponse es la vista completa de una transacción con su vendedor,
// viajeros e itinerario.
type TransactionResponse struct {
	ID              uint                     `json:"id"`
	ClientName      string                   `json:"client_name"`
	ClientEmail     string                   `json:"client_email"`
	ClientPhone     string                   `json:"client_phone"`
	ClientDNI       string                   `json:"client_dni"`
	ClientAddress   string                   `json:"client_address"`
	InvoiceImage    string                   `json:"invoice_image"`
	IDImage         string                   `json:"id_image"`
	Package         string                   `json:"package"`
	QuotedFlight    string                   `json:"quoted_flight"`
	AgencyCost      float64                  `json:"agency_cost"`
	Amount          float64                  `json:"amount"`
	TransactionType models.TransactionType   `json:"transaction_type"`
	Status          models.TransactionStatus `json:"status"`
	PaymentStatus   models.PaymentStatus     `json:"payment_status"`
	SellerID        uint                     `json:"seller_id"`
	SellerName      string                   `json:"seller_name"`
	Receipt         string                   `json:"receipt"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	StartDate       *time.Time               `json:"start_date"`
	EndDate         *time.Time               `json:"end_date"`
	Travelers       []models.Traveler        `json:"travelers"`
	Itinerario      []models.Itinerario      `json:"itinerario"`
}

func buildTransactionResponse(transaccion models.Transaction) TransactionResponse {
	var vendedor models.User
	config.DB.First(&vendedor, transaccion.SellerID)

	var viajeros []models.Traveler
	config.DB.Where("transaction_id = ?", transaccion.ID).Find(&viajeros)

	var itinerarios []models.Itinerario
	config.DB.Where("transaction_id = ?", transaccion.ID).Find(&itinerarios)

	if viajeros == nil {
		viajeros = make([]models.Traveler, 0)
	}
	if itinerarios == nil {
		itinerarios = make([]models.Itinerario, 0)
	}

	return TransactionResponse{
		ID:              transaccion.ID,
		ClientName:      transaccion.ClientName,
		ClientEmail:     transaccion.ClientEmail,
		ClientPhone:     transaccion.ClientPhone,
		ClientDNI:       transaccion.ClientDNI,
		ClientAddress:   transaccion.ClientAddress,
		InvoiceImage:    transaccion.InvoiceImage,
		IDImage:         transaccion.IDImage,
		Package:         transaccion.Package,
		QuotedFlight:    transaccion.QuotedFlight,
		AgencyCost:      transaccion.AgencyCost,
		Amount:          transaccion.Amount,
		TransactionType: transaccion.TransactionType,
		Status:          transaccion.Status,
		PaymentStatus:   transaccion.PaymentStatus,
		SellerID:        transaccion.SellerID,
		SellerName:      vendedor.Name,
		Receipt:         transaccion.Receipt,
		CreatedAt:       transaccion.CreatedAt,
		UpdatedAt:       transaccion.UpdatedAt,
		StartDate:       transaccion.StartDate,
		EndDate:         transaccion.EndDate,
		Travelers:       viajeros,
		Itinerario:      itinerarios,
	}
}

// CreateTransactionHandler registra una venta con sus viajeros.
func CreateTransactionHandler(c *gin.Context) {
	var req TransactionCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	estado := req.Status
	if estado == "" {
		estado = models.TransaccionPendiente
	}
	if !estado.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de transacción no reconocido: %s", estado)})
		return
	}
	if req.TransactionType != models.TipoVenta && req.TransactionType != models.TipoAbono {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Tipo de transacción no reconocido: %s", req.TransactionType)})
		return
	}

	transaccion := models.Transaction{
		ClientName:        req.ClientName,
		ClientEmail:       req.ClientEmail,
		ClientPhone:       req.ClientPhone,
		ClientDNI:         req.ClientDNI,
		ClientAddress:     req.ClientAddress,
		InvoiceImage:      req.InvoiceImage,
		IDImage:           req.IDImage,
		Package:           req.Package,
		QuotedFlight:      req.QuotedFlight,
		AgencyCost:        req.AgencyCost,
		Amount:            req.Amount,
		TransactionType:   req.TransactionType,
		Status:            estado,
		PaymentStatus:     models.PagoIncompleto,
		SellerID:          req.SellerID,
		Receipt:           req.Receipt,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		NumberOfTravelers: len(req.Travelers),
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transaccion).Error; err != nil {
			return err
		}
		for _, v := range req.Travelers {
			viajero := models.Traveler{
				Name:          v.Name,
				DNI:           v.DNI,
				Age:           v.Age,
				Phone:         v.Phone,
				DNIImage:      v.DNIImage,
				TransactionID: transaccion.ID,
			}
			if err := tx.Create(&viajero).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("No se pudo registrar la transacción", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo registrar la transacción"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Transacción creada con éxito", "transaction": transaccion})
}

// ListTransactionsHandler lista todas las transacciones con su detalle.
func ListTransactionsHandler(c *gin.Context) {
	var transacciones []models.Transaction
	if err := config.DB.Order("id asc").Find(&transacciones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}
	if len(transacciones) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron transacciones"})
		return
	}

	respuesta := make([]TransactionResponse, 0, len(transacciones))
	for _, t := range transacciones {
		respuesta = append(respuesta, buildTransactionResponse(t))
	}
	c.JSON(http.StatusOK, respuesta)
}

// GetTransactionHandler devuelve el detalle de una transacción.
func GetTransactionHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}
	c.JSON(http.StatusOK, buildTransactionResponse(transaccion))
}

// estadoEvidenciaPara traduce explícitamente el estado de flujo de la
// transacción al vocabulario de revisión de evidencias. Los dos vocabularios
// no son isomorfos (terminado/incompleta no tienen equivalente), así que solo
// las decisiones de aprobación y rechazo se propagan; cualquier otro estado
// devuelve false y no toca la evidencia.
func estadoEvidenciaPara(estado models.TransactionStatus) (models.EvidenceStatus, bool) {
	switch estado {
	case models.TransaccionAprobada:
		return models.EvidenciaAprobada, true
	case models.TransaccionRechazada:
		return models.EvidenciaRechazada, true
	}
	return "", false
}

// UpdateTransactionStatusHandler cambia el estado de flujo de una transacción.
// Cuando la transacción estaba pendiente y la decisión es aprobar o rechazar,
// la evidencia más reciente (la que motivó la decisión) hereda el veredicto.
// Después siempre se re-sincroniza el estado de pago, porque el veredicto
// propagado puede cambiar qué evidencias son elegibles.
func UpdateTransactionStatusHandler(c *gin.Context) {
	transactionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ID de transacción inválido"})
		return
	}

	var req struct {
		Status models.TransactionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if !req.Status.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de transacción no reconocido: %s", req.Status)})
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

	estabaPendiente := transaccion.Status == models.TransaccionPendiente

	if err := config.DB.Model(&transaccion).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar la transacción"})
		return
	}

	if veredicto, ok := estadoEvidenciaPara(req.Status); estabaPendiente && ok {
		var ultima models.Evidence
		err := config.DB.Where("transaction_id = ?", transaccion.ID).Order("id desc").First(&ultima).Error
		switch {
		case err == nil:
			if err := config.DB.Model(&ultima).Update("status", veredicto).Error; err != nil {
				slog.Error("No se pudo propagar el veredicto a la evidencia", "evidence_id", ultima.ID, "error", err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			slog.Error("No se pudo buscar la última evidencia", "transaction_id", transaccion.ID, "error", err)
		}
	}

	if err := UpdateTransactionPaymentStatus(config.DB, transaccion.ID); err != nil {
		slog.Error("Fallo el recálculo del estado de pago", "transaction_id", transaccion.ID, "error", err)
	}
	RegistrarEvento(config.DB, fmt.Sprintf("Transacción %d pasó a estado %s", transaccion.ID, req.Status))

	c.JSON(http.StatusOK, gin.H{"message": "Estado de la transacción actualizado", "transaction": transaccion})
}

// UpdateTransactionHandler actualiza parcialmente una venta. Si el cuerpo trae
// viajeros, el listado completo se reemplaza. Editar el monto NO recalcula el
// estado de pago cacheado.
func UpdateTransactionHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}

	var req TransactionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}
	if req.Status != nil && !req.Status.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de transacción no reconocido: %s", *req.Status)})
		return
	}

	cambios := map[string]interface{}{}
	if req.ClientName != nil {
		cambios["client_name"] = *req.ClientName
	}
	if req.ClientEmail != nil {
		cambios["client_email"] = *req.ClientEmail
	}
	if req.ClientPhone != nil {
		cambios["client_phone"] = *req.ClientPhone
	}
	if req.ClientDNI != nil {
		cambios["client_dni"] = *req.ClientDNI
	}
	if req.ClientAddress != nil {
		cambios["client_address"] = *req.ClientAddress
	}
	if req.InvoiceImage != nil {
		cambios["invoice_image"] = *req.InvoiceImage
	}
	if req.IDImage != nil {
		cambios["id_image"] = *req.IDImage
	}
	if req.Package != nil {
		cambios["package"] = *req.Package
	}
	if req.QuotedFlight != nil {
		cambios["quoted_flight"] = *req.QuotedFlight
	}
	if req.AgencyCost != nil {
		cambios["agency_cost"] = *req.AgencyCost
	}
	if req.Amount != nil {
		cambios["amount"] = *req.Amount
	}
	if req.TransactionType != nil {
		cambios["transaction_type"] = *req.TransactionType
	}
	if req.Status != nil {
		cambios["status"] = *req.Status
	}
	if req.SellerID != nil {
		cambios["seller_id"] = *req.SellerID
	}
	if req.Receipt != nil {
		cambios["receipt"] = *req.Receipt
	}
	if req.StartDate != nil {
		cambios["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		cambios["end_date"] = *req.EndDate
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if len(cambios) > 0 {
			if err := tx.Model(&transaccion).Updates(cambios).Error; err != nil {
				return err
			}
		}
		if req.Travelers != nil {
			if err := tx.Where("transaction_id = ?", transaccion.ID).Delete(&models.Traveler{}).Error; err != nil {
				return err
			}
			for _, v := range req.Travelers {
				viajero := models.Traveler{
					Name:          v.Name,
					DNI:           v.DNI,
					Age:           v.Age,
					Phone:         v.Phone,
					DNIImage:      v.DNIImage,
					TransactionID: transaccion.ID,
				}
				if err := tx.Create(&viajero).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&transaccion).Update("number_of_travelers", len(req.Travelers)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("No se pudo actualizar la transacción", "transaction_id", transaccion.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar la transacción"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transacción actualizada con éxito", "transaction": transaccion})
}

// UpdateTravelerHandler actualiza los datos de un viajero de una transacción.
func UpdateTravelerHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
		return
	}

	var viajero models.Traveler
	err := config.DB.Where("id = ? AND transaction_id = ?", c.Param("traveler_id"), transaccion.ID).First(&viajero).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Viajero no encontrado"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		DNI      *string `json:"dni"`
		Age      *int    `json:"age"`
		Phone    *string `json:"phone"`
		DNIImage *string `json:"dni_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Datos inválidos: " + err.Error()})
		return
	}

	cambios := map[string]interface{}{}
	if req.Name != nil {
		cambios["name"] = *req.Name
	}
	if req.DNI != nil {
		cambios["dni"] = *req.DNI
	}
	if req.Age != nil {
		cambios["age"] = *req.Age
	}
	if req.Phone != nil {
		cambios["phone"] = *req.Phone
	}
	if req.DNIImage != nil {
		cambios["dni_image"] = *req.DNIImage
	}

	if len(cambios) > 0 {
		if err := config.DB.Model(&viajero).Updates(cambios).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo actualizar el viajero"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Viajero actualizado con éxito", "traveler": viajero})
}

// FilterTransactionsByStatusHandler lista las transacciones con el estado indicado.
func FilterTransactionsByStatusHandler(c *gin.Context) {
	estado := models.TransactionStatus(c.Param("status"))
	if !estado.EstadoValido() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de transacción no reconocido: %s", estado)})
		return
	}

	var transacciones []models.Transaction
	if err := config.DB.Where("status = ?", estado).Order("id asc").Find(&transacciones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}

	respuesta := make([]TransactionResponse, 0, len(transacciones))
	for _, t := range transacciones {
		respuesta = append(respuesta, buildTransactionResponse(t))
	}
	c.JSON(http.StatusOK, respuesta)
}

// GetTransactionsBySellerHandler lista las ventas de un vendedor.
func GetTransactionsBySellerHandler(c *gin.Context) {
	sellerID := c.Param("seller_id")

	var transacciones []models.Transaction
	if err := config.DB.Where("seller_id = ?", sellerID).Order("id asc").Find(&transacciones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}
	if len(transacciones) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron transacciones para este vendedor"})
		return
	}

	respuesta := make([]TransactionResponse, 0, len(transacciones))
	for _, t := range transacciones {
		respuesta = append(respuesta, buildTransactionResponse(t))
	}
	c.JSON(http.StatusOK, respuesta)
}

var camposFechaValidos = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"start_date": "start_date",
	"end_date":   "end_date",
}

// GetTransactionsByDateRangeHandler lista transacciones dentro de un rango de
// fechas sobre el campo elegido (created_at por defecto).
func GetTransactionsByDateRangeHandler(c *gin.Context) {
	desde, hasta, err := validarRangoFechas(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if desde == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Debe indicar start_date y end_date"})
		return
	}

	campo := c.DefaultQuery("date_field", "created_at")
	columna, ok := camposFechaValidos[campo]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Campo de fecha inválido: %s", campo)})
		return
	}

	var transacciones []models.Transaction
	err = config.DB.
		Where(fmt.Sprintf("%s >= ? AND %s < ?", columna, columna), *desde, hasta.AddDate(0, 0, 1)).
		Order("id asc").Find(&transacciones).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}
	if len(transacciones) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf(
			"No se encontraron transacciones en el rango de fechas especificado para el campo %s", campo)})
		return
	}

	respuesta := make([]TransactionResponse, 0, len(transacciones))
	for _, t := range transacciones {
		respuesta = append(respuesta, buildTransactionResponse(t))
	}
	c.JSON(http.StatusOK, respuesta)
}

// FilterTransactionsMixedHandler combina filtros de vendedor, estado y rango de fechas.
func FilterTransactionsMixedHandler(c *gin.Context) {
	query := config.DB.Model(&models.Transaction{})

	if sellerID := c.Query("seller_id"); sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}
	if estado := c.Query("status"); estado != "" {
		s := models.TransactionStatus(estado)
		if !s.EstadoValido() {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Estado de transacción no reconocido: %s", estado)})
			return
		}
		query = query.Where("status = ?", s)
	}

	desde, hasta, err := validarRangoFechas(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if desde != nil {
		campo := c.DefaultQuery("date_field", "created_at")
		columna, ok := camposFechaValidos[campo]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Campo de fecha inválido: %s", campo)})
			return
		}
		query = query.Where(fmt.Sprintf("%s >= ? AND %s < ?", columna, columna), *desde, hasta.AddDate(0, 0, 1))
	}

	var transacciones []models.Transaction
	if err := query.Order("id asc").Find(&transacciones).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las transacciones"})
		return
	}
	if len(transacciones) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron transacciones con los criterios especificados"})
		return
	}

	respuesta := make([]TransactionResponse, 0, len(transacciones))
	for _, t := range transacciones {
		respuesta = append(respuesta, buildTransactionResponse(t))
	}
	c.JSON(http.StatusOK, respuesta)
}
