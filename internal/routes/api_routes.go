// agencia-crm/internal/routes/api_routes.go
package routes

import (
	"agencia-crm/internal/handlers"
	"agencia-crm/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registra todas las rutas de negocio de la agencia.
// Las rutas de ventas y evidencias quedan abiertas, igual que en el
// backend original; usuarios y cuentas de recaudo exigen token.
func RegisterAPIRoutes(r *gin.Engine) {
	transactions := r.Group("/transactions")
	{
		transactions.POST("", handlers.CreateTransactionHandler)
		transactions.GET("", handlers.ListTransactionsHandler)

		// Consultas agregadas de ingresos y comisiones.
		transactions.GET("/ingresos-totales", handlers.IngresosTotalesHandler)
		transactions.GET("/ingresos-totales-usuario", handlers.IngresosTotalesUsuarioHandler)
		transactions.GET("/ingresos-totales-mensual", handlers.IngresosTotalesMensualHandler)
		transactions.GET("/ingresos-totales-mensual/export", handlers.ExportIngresosMensualHandler)
		transactions.GET("/comisiones-por-usuario", handlers.ComisionesPorUsuarioHandler)

		// Listados filtrados.
		transactions.GET("/filter/:status", handlers.FilterTransactionsByStatusHandler)
		transactions.GET("/filter-mixed", handlers.FilterTransactionsMixedHandler)
		transactions.GET("/seller/:seller_id", handlers.GetTransactionsBySellerHandler)
		transactions.GET("/date-range", handlers.GetTransactionsByDateRangeHandler)

		// Evidencias referidas por su propio id.
		transactions.PATCH("/evidence/:evidence_id/status", handlers.UpdateEvidenceStatusHandler)
		transactions.PATCH("/evidence/:evidence_id/invoice-status", handlers.UpdateEvidenceInvoiceStatusHandler)
		transactions.GET("/evidence/filter/:status/not-invoiced", handlers.FilterEvidenceHandler)

		// Operaciones sobre una transacción concreta.
		transactions.GET("/:id", handlers.GetTransactionHandler)
		transactions.PATCH("/:id", handlers.UpdateTransactionHandler)
		transactions.PATCH("/:id/status", handlers.UpdateTransactionStatusHandler)
		transactions.PATCH("/:id/travelers/:traveler_id", handlers.UpdateTravelerHandler)

		transactions.POST("/:id/evidence", handlers.AddEvidenceHandler)
		transactions.GET("/:id/evidence", handlers.GetEvidencesByTransactionHandler)
		transactions.DELETE("/:id/evidence/:evidence_id", handlers.DeleteEvidenceHandler)

		transactions.POST("/:id/itinerario", handlers.AddItinerarioHandler)
		transactions.GET("/:id/itinerario", handlers.GetItinerariosByTransactionHandler)
		transactions.PATCH("/:id/itinerario/:itinerario_id", handlers.UpdateItinerarioHandler)
		transactions.DELETE("/:id/itinerario/:itinerario_id", handlers.DeleteItinerarioHandler)

		transactions.POST("/:id/documentos", handlers.AddDocumentoHandler)
		transactions.GET("/:id/documentos", handlers.GetDocumentosByTransactionHandler)
		transactions.DELETE("/:id/documentos/:documento_id", handlers.DeleteDocumentoHandler)

		transactions.PUT("/:id/travel-info", handlers.UpsertTravelInfoHandler)
		transactions.GET("/:id/travel-info", handlers.GetTravelInfoHandler)

		transactions.POST("/:id/factura", handlers.CreateFacturaHandler)
		transactions.GET("/:id/factura", handlers.GetFacturasByTransactionHandler)

		transactions.POST("/:id/plan-pagos/preview", handlers.PreviewPlanPagosHandler)
	}

	r.GET("/evidences", handlers.ListAllEvidencesHandler)
	r.GET("/itinerarios", handlers.ListAllItinerariosHandler)

	events := r.Group("/events")
	{
		events.GET("", handlers.ListEventsHandler)
		events.GET("/ws", handlers.EventWSEndpoint)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.POST("", handlers.CreateUserHandler)
		users.GET("", handlers.ListUsersHandler)
		users.PATCH("/:id", handlers.UpdateUserHandler)
		users.DELETE("/:id", middleware.RoleMiddleware(), handlers.DeleteUserHandler)
	}

	cuentas := r.Group("/cuentas-recaudo")
	cuentas.Use(middleware.AuthMiddleware())
	{
		cuentas.POST("", handlers.CreateCuentaRecaudoHandler)
		cuentas.GET("", handlers.ListCuentasRecaudoHandler)
		cuentas.DELETE("/:id", middleware.RoleMiddleware(), handlers.DeleteCuentaRecaudoHandler)
	}
}
