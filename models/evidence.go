// agencia-crm/models/evidence.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// EvidenceStatus es la decisión del revisor sobre una evidencia de pago.
type EvidenceStatus string

const (
	EvidenciaPendiente EvidenceStatus = "pending"
	EvidenciaAprobada  EvidenceStatus = "approved"
	EvidenciaRechazada EvidenceStatus = "rejected"
)

// InvoiceStatus es el eje contable de la evidencia, independiente de la aprobación.
type InvoiceStatus string

const (
	NoFacturado InvoiceStatus = "no_facturado"
	Facturado   InvoiceStatus = "facturado"
)

// Evidence es un comprobante de pago aportado por el cliente para una transacción.
// Una evidencia solo cuenta como pago efectivo cuando está aprobada Y facturada.
type Evidence struct {
	gorm.Model
	TransactionID uint           `json:"transaction_id" gorm:"index;not null"`
	EvidenceFile  string         `json:"evidence_file"`
	Amount        float64        `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status        EvidenceStatus `json:"status" gorm:"default:'pending'"`
	InvoiceStatus InvoiceStatus  `json:"invoice_status" gorm:"default:'no_facturado'"`
	UploadDate    time.Time      `json:"upload_date"`
}

// EstadoValido indica si el estado recibido pertenece al vocabulario de revisión.
func (s EvidenceStatus) EstadoValido() bool {
	switch s {
	case EvidenciaPendiente, EvidenciaAprobada, EvidenciaRechazada:
		return true
	}
	return false
}

// EstadoValido indica si el valor recibido pertenece al vocabulario contable.
func (s InvoiceStatus) EstadoValido() bool {
	return s == NoFacturado || s == Facturado
}
