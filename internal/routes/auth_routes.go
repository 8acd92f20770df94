// agencia-crm/internal/routes/auth_routes.go
package routes

import (
	"agencia-crm/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registra las rutas públicas de autenticación.
// Estas rutas no pasan por el middleware de token.
func RegisterAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", handlers.LoginHandler)
		auth.POST("/refresh", handlers.RefreshHandler)
	}
}
