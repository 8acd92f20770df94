// agencia-crm/models/transaction.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType distingue una venta completa de un abono (venta a cuotas).
type TransactionType string

const (
	TipoVenta TransactionType = "venta"
	TipoAbono TransactionType = "abono"
)

// TransactionStatus es el estado de la transacción dentro del flujo de ventas.
// Es independiente del estado de pago.
type TransactionStatus string

const (
	TransaccionPendiente  TransactionStatus = "pending"
	TransaccionAprobada   TransactionStatus = "approved"
	TransaccionRechazada  TransactionStatus = "rejected"
	TransaccionTerminada  TransactionStatus = "terminado"
	TransaccionIncompleta TransactionStatus = "incompleta"
)

// PaymentStatus es el estado de pago derivado del libro de evidencias.
// Es un campo cacheado: la fuente de verdad son las evidencias aprobadas y facturadas.
type PaymentStatus string

const (
	PagoIncompleto PaymentStatus = "pago_incompleto"
	PagoCompleto   PaymentStatus = "pago_completo"
)

// Transaction representa una venta de la agencia con sus datos de cliente y viaje.
type Transaction struct {
	gorm.Model
	ClientName    string `json:"client_name" gorm:"not null"`
	ClientEmail   string `json:"client_email" gorm:"not null"`
	ClientPhone   string `json:"client_phone" gorm:"not null"`
	ClientDNI     string `json:"client_dni" gorm:"column:client_dni;not null"`
	ClientAddress string `json:"client_address" gorm:"not null"`
	InvoiceImage  string `json:"invoice_image"`
	IDImage       string `json:"id_image" gorm:"column:id_image"`
	Package       string `json:"package" gorm:"not null"`
	QuotedFlight  string `json:"quoted_flight" gorm:"not null"`

	AgencyCost      float64           `json:"agency_cost" gorm:"type:numeric(12,2);not null"`
	Amount          float64           `json:"amount" gorm:"type:numeric(12,2);not null"`
	TransactionType TransactionType   `json:"transaction_type" gorm:"not null"`
	Status          TransactionStatus `json:"status" gorm:"default:'pending'"`
	PaymentStatus   PaymentStatus     `json:"payment_status" gorm:"default:'pago_incompleto'"`

	SellerID uint `json:"seller_id" gorm:"index"`
	Seller   User `json:"-" gorm:"foreignKey:SellerID"`

	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Receipt           string     `json:"receipt"`
	NumberOfTravelers int        `json:"number_of_travelers" gorm:"not null"`

	Travelers   []Traveler   `json:"travelers" gorm:"constraint:OnDelete:CASCADE"`
	Itinerarios []Itinerario `json:"itinerario" gorm:"constraint:OnDelete:CASCADE"`
	Evidencias  []Evidence   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// EstadoValido indica si el estado recibido pertenece al vocabulario del flujo de ventas.
func (s TransactionStatus) EstadoValido() bool {
	switch s {
	case TransaccionPendiente, TransaccionAprobada, TransaccionRechazada,
		TransaccionTerminada, TransaccionIncompleta:
		return true
	}
	return false
}

// Traveler es un viajero asociado a una transacción.
type Traveler struct {
	gorm.Model
	Name          string `json:"name" gorm:"not null"`
	DNI           string `json:"dni" gorm:"column:dni;not null"`
	Age           int    `json:"age" gorm:"not null"`
	Phone         string `json:"phone" gorm:"not null"`
	DNIImage      string `json:"dni_image" gorm:"column:dni_image"`
	TransactionID uint   `json:"transaction_id" gorm:"index"`
}

// TravelInfo guarda los datos de alojamiento y traslado del viaje vendido.
type TravelInfo struct {
	gorm.Model
	TransactionID uint       `json:"transaction_id" gorm:"index;not null"`
	Hotel         string     `json:"hotel"`
	Ciudad        string     `json:"ciudad"`
	FechaCheckin  *time.Time `json:"fecha_checkin"`
	FechaCheckout *time.Time `json:"fecha_checkout"`
	Traslados     string     `json:"traslados"`
}

// Documento es un archivo de soporte adjunto a una transacción (vouchers, pasaportes, etc).
type Documento struct {
	gorm.Model
	TransactionID uint   `json:"transaction_id" gorm:"index;not null"`
	Nombre        string `json:"nombre" gorm:"not null"`
	Archivo       string `json:"archivo" gorm:"not null"`
}
