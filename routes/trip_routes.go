package routes

import (
	handlers "bringalong/internal/handlers/shared"
	"bringalong/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTripRoutes sets up trip listing, search and trip management routes
func SetupTripRoutes(r *gin.RouterGroup, tripHandler *handlers.TripHandler, jwtSecret string) {
	// Public routes, personalised when a token is present
	public := r.Group("/trips")
	public.Use(middleware.OptionalAuth(jwtSecret))
	{
		public.GET("", tripHandler.ListTrips)
		public.GET("/search", tripHandler.SearchTrips)
		public.GET("/:id", tripHandler.GetTrip)
	}

	// Protected trip routes (require authentication)
	trips := r.Group("/trips")
	trips.Use(middleware.AuthRequired(jwtSecret))
	{
		trips.GET("/mine", tripHandler.GetMyTrips)
		trips.POST("", tripHandler.CreateTrip)
		trips.PUT("/:id", tripHandler.UpdateTrip)
		trips.PATCH("/:id/status", tripHandler.UpdateTripStatus)
		trips.DELETE("/:id", tripHandler.DeleteTrip)

		// Delivery requests
		trips.POST("/:id/requests", tripHandler.RequestTrip)
		trips.GET("/:id/requests", tripHandler.GetTripRequests)
	}
}
