// README: Pre-order helpers: fare quotes and place lookup.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	gmaps "swiftdrop/internal/maps"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/pricing"
)

type QuoteHandler struct {
	pricing *pricing.Service
	places  *gmaps.PlacesService
	route   *gmaps.RouteService
}

func NewQuoteHandler(pricingSvc *pricing.Service, places *gmaps.PlacesService, route *gmaps.RouteService) *QuoteHandler {
	return &QuoteHandler{pricing: pricingSvc, places: places, route: route}
}

// EstimateFare quotes a fare for a vehicle class. The distance comes either
// from the query or, when pickup/drop addresses are given, from the route
// service.
func (h *QuoteHandler) EstimateFare(c *gin.Context) {
	vehicle := order.VehicleType(c.Query("vehicle"))
	distanceKm := -1.0
	if v := c.Query("distance_km"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid distance_km")
			return
		}
		distanceKm = d
	} else if pickup, drop := c.Query("pickup"), c.Query("drop"); pickup != "" && drop != "" {
		d, err := h.route.EstimateDistanceKm(c.Request.Context(), pickup, drop)
		if err != nil {
			writeError(c, http.StatusBadRequest, "distance_km required (route estimate unavailable)")
			return
		}
		distanceKm = d
	}
	fare, err := h.pricing.Estimate(c.Request.Context(), distanceKm, vehicle)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"vehicle":     vehicle,
		"distance_km": distanceKm,
		"fare":        fare.Amount,
		"currency":    fare.Currency,
	})
}

func (h *QuoteHandler) SearchPlace(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		writeError(c, http.StatusBadRequest, "missing q")
		return
	}
	place := h.places.FindPlace(c.Request.Context(), query)
	writeJSON(c, http.StatusOK, gin.H{
		"address":  place.Address,
		"map_link": place.MapLink,
	})
}
