// agencia-crm/models/itinerario.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Itinerario es un tramo de vuelo asociado a una transacción.
type Itinerario struct {
	gorm.Model
	TransactionID uint      `json:"transaction_id" gorm:"index;not null"`
	Aerolinea     string    `json:"aerolinea" gorm:"not null"`
	Ruta          string    `json:"ruta" gorm:"not null"`
	Fecha         time.Time `json:"fecha" gorm:"not null"`
	HoraSalida    string    `json:"hora_salida"`
	HoraLlegada   string    `json:"hora_llegada"`
}
