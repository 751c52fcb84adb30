package handlers

import (
	"net/http"

	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/http/middleware"
	"busticket/internal/services"

	"github.com/gin-gonic/gin"
)

func tripService(c *gin.Context) services.TripService {
	return services.TripService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/trips/search?origin=&destination=&date=YYYY-MM-DD
func SearchTrips(c *gin.Context) {
	filter := domain.TripFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
	}
	trips, err := tripService(c).Search(c.Request.Context(), filter)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	c.JSON(http.StatusOK, trips)
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	trip, err := tripService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var in models.TripInput
	if !BindJSONOrError(c, &in) {
		return
	}
	trip, err := tripService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// DELETE /api/trips/:id
func DeleteTrip(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := tripService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip and associated bookings deleted"})
}
