// agencia-crm/internal/routes/router.go
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter arma el engine de gin con todos los grupos de rutas de la API.
// CORS queda abierto, igual que el frontend de la agencia espera.
func SetupRouter() *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API de Gestión de Ventas Activa"})
	})

	// Rutas públicas de autenticación.
	RegisterAuthRoutes(r)

	// Rutas de negocio de la agencia.
	RegisterAPIRoutes(r)

	return r
}
