// agencia-crm/models/cuentas_recaudo.go
package models

import "gorm.io/gorm"

// CuentasRecaudo es una cuenta bancaria de la agencia donde los clientes consignan pagos.
type CuentasRecaudo struct {
	gorm.Model
	Banco        string `json:"banco" gorm:"not null"`
	NumeroCuenta string `json:"numero_cuenta" gorm:"not null"`
	TipoCuenta   string `json:"tipo_cuenta" gorm:"not null"`
	Titular      string `json:"titular" gorm:"not null"`
}
