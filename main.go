// agencia-crm/main.go
package main

import (
	"log/slog"
	"os"

	"agencia-crm/config"
	"agencia-crm/internal/handlers"
	"agencia-crm/internal/routes"
	"agencia-crm/models"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No se encontró archivo .env, se usan las variables del entorno")
	}

	config.LoadJwtKey()
	config.ConnectDB()
	config.ConnectRedis()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Transaction{},
		&models.Traveler{},
		&models.TravelInfo{},
		&models.Documento{},
		&models.Evidence{},
		&models.Itinerario{},
		&models.Factura{},
		&models.CuentasRecaudo{},
		&models.Event{},
	)
	if err != nil {
		slog.Error("Fallo en la migración de la base de datos", "error", err)
		os.Exit(1)
	}

	go handlers.GlobalEventHub.Run()

	r := routes.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	slog.Info("Servidor iniciado", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("El servidor terminó con error", "error", err)
		os.Exit(1)
	}
}
