package routes

import (
	"net/http"
	"time"

	"medibot/handlers"
	"medibot/middleware"
	"medibot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAuthRoutes registers login and logout.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.Auth.LoginHandler)

		// Protected routes (Require Authentication)
		api.POST("/logout", middleware.SessionAuth(hb.Sessions), hb.Auth.LogoutHandler)
	}
}

// RegisterAssistantRoutes registers the conversation endpoints of the signed-in user.
func RegisterAssistantRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/assistant")
	{
		api.Use(middleware.SessionAuth(hb.Sessions))
		api.GET("/transcript", hb.Assistant.TranscriptHandler)
		api.POST("/messages", hb.Assistant.SendMessageHandler)
		api.POST("/messages/:id/view", hb.Assistant.ViewHandler)
		api.GET("/messages/:id/booking", hb.Assistant.BookingFormHandler)
		api.POST("/messages/:id/booking", hb.Assistant.SubmitBookingHandler)
		api.GET("/appointments/:id", hb.Assistant.GetAppointmentHandler)
		api.PUT("/appointments/:id", hb.Assistant.UpdateAppointmentHandler)
		api.POST("/appointments/:id/edit", hb.Assistant.EditAppointmentHandler)
		api.DELETE("/appointments/:id", hb.Assistant.CancelAppointmentHandler)
	}
}

// RegisterRecordStoreRoutes registers the reference Record Store.
func RegisterRecordStoreRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.GET("", hb.Appointments.ListAppointmentsHandler)
		api.POST("", hb.Appointments.CreateAppointmentHandler)
		api.GET("/:id", hb.Appointments.GetAppointmentHandler)
		api.PUT("/:id", hb.Appointments.UpdateAppointmentHandler)
		api.DELETE("/:id", hb.Appointments.DeleteAppointmentHandler)
	}
}

// RegisterClassifierRoutes registers the reference Intent Classification Service.
func RegisterClassifierRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/chat", hb.Chat.ClassifyHandler)
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "Hi, I'm medibot",
			"services": utils.GetHealthStatus().Services,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware. Only the
// groups whose handlers are present in hb are mounted.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	if hb.Auth != nil && hb.Assistant != nil {
		RegisterAuthRoutes(r, hb)
		RegisterAssistantRoutes(r, hb)
	}
	if hb.Appointments != nil {
		RegisterRecordStoreRoutes(r, hb)
	}
	if hb.Chat != nil {
		RegisterClassifierRoutes(r, hb)
	}
}
