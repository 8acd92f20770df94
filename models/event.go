// agencia-crm/models/event.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Event es una entrada del registro de actividad de la agencia
// (aprobaciones, facturaciones, cambios de estado).
type Event struct {
	gorm.Model
	Description string    `json:"description" gorm:"not null"`
	Date        time.Time `json:"date"`
}
