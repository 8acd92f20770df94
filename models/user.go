// agencia-crm/models/user.go
package models

import "gorm.io/gorm"

// Roles de usuario dentro de la agencia.
const (
	RolVendedor      = "vendedor"
	RolEncargado     = "encargado"
	RolAdministrador = "administrador"
)

// User representa a un miembro del equipo de la agencia (vendedor, encargado o administrador).
type User struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Role        string `json:"role" gorm:"not null"`
	Email       string `json:"email" gorm:"unique;not null"`
	Password    string `json:"-" gorm:"not null"`
	PhoneNumber string `json:"phone_number"`

	Transactions []Transaction `json:"-" gorm:"foreignKey:SellerID"`
}
