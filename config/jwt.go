// agencia-crm/config/jwt.go
package config

import (
	"log/slog"
	"os"
)

var JwtKey []byte

func LoadJwtKey() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Warn("Variable de entorno JWT_SECRET no definida, se usa una clave de desarrollo.")
		secret = "clave-de-desarrollo-insegura"
	}
	JwtKey = []byte(secret)
}
