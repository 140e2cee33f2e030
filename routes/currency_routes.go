package routes

import (
	handlers "bringalong/internal/handlers/shared"

	"github.com/gin-gonic/gin"
)

// SetupCurrencyRoutes sets up exchange rate and IP location lookups
func SetupCurrencyRoutes(r *gin.RouterGroup, currencyHandler *handlers.CurrencyHandler, locationHandler *handlers.LocationHandler) {
	currency := r.Group("/currency")
	{
		currency.GET("/rates", currencyHandler.GetRates)
		currency.GET("/convert", currencyHandler.Convert)
	}

	r.GET("/location/detect", locationHandler.Detect)
}
