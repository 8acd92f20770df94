// agencia-crm/models/factura.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Factura es el comprobante fiscal emitido para una transacción.
type Factura struct {
	gorm.Model
	TransactionID uint      `json:"transaction_id" gorm:"index;not null"`
	Numero        string    `json:"numero" gorm:"unique;not null"`
	Monto         float64   `json:"monto" gorm:"type:numeric(12,2);not null"`
	MontoEnLetras string    `json:"monto_en_letras"`
	FechaEmision  time.Time `json:"fecha_emision"`
}
