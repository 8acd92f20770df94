// agencia-crm/internal/handlers/factura_handler.go
package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"agencia-crm/config"
	"agencia-crm/models"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// montoEnLetras transcribe el monto para el documento impreso, con los
// centavos en la forma contable "con NN/100". num2words solo transcribe en
// inglés; el formato del documento contempla la traducción al emitirlo.
func montoEnLetras(monto float64) string {
	centavos := int(math.Round(monto * 100))
	entero := centavos / 100
	resto := centavos % 100
	if resto == 0 {
		return num2words.Convert(entero)
	}
	return fmt.Sprintf("%s con %02d/100", num2words.Convert(entero), resto)
}

// CreateFacturaHandler emite la factura de una transacción. El número se
// genera con un sufijo aleatorio para que sea único entre sedes, y el monto
// se transcribe en letras para el documento impreso.
func CreateFacturaHandler(c *gin.Context) {
	var transaccion models.Transaction
	if err := config.DB.First(&transaccion, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Transacción no encontrada"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar la transacción"})
		return
	}

	numero := fmt.Sprintf("FAC-%s", strings.ToUpper(uuid.New().String()[:8]))
	factura := models.Factura{
		TransactionID: transaccion.ID,
		Numero:        numero,
		Monto:         transaccion.Amount,
		MontoEnLetras: montoEnLetras(transaccion.Amount),
		FechaEmision:  time.Now().UTC(),
	}

	if err := config.DB.Create(&factura).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "No se pudo emitir la factura"})
		return
	}

	RegistrarEvento(config.DB, fmt.Sprintf("Factura %s emitida para la transacción %d", factura.Numero, transaccion.ID))

	c.JSON(http.StatusCreated, gin.H{"message": "Factura emitida con éxito", "factura": factura})
}

// GetFacturasByTransactionHandler lista las facturas emitidas para una transacción.
func GetFacturasByTransactionHandler(c *gin.Context) {
	var facturas []models.Factura
	if err := config.DB.Where("transaction_id = ?", c.Param("id")).Order("id asc").Find(&facturas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error al consultar las facturas"})
		return
	}
	if len(facturas) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No se encontraron facturas para esta transacción"})
		return
	}
	c.JSON(http.StatusOK, facturas)
}
