package handlers

import (
	"net/http"

	"busticket/internal/domain/models"
	"busticket/internal/http/middleware"
	"busticket/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{RequestID: middleware.GetRequestID(c)}
}

// POST /api/bookings/book
func BookSeats(c *gin.Context) {
	var req models.BookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	booking, err := bookingService(c).Book(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings/my-bookings
func MyBookings(c *gin.Context) {
	list, err := bookingService(c).ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if list == nil {
		list = []models.BookingWithTrip{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/bookings/:id/e-ticket
func DownloadETicket(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rid := middleware.GetRequestID(c)
	svc := services.TicketService{Bookings: services.BookingService{RequestID: rid}, RequestID: rid}
	pdf, filename, err := svc.GenerateETicket(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
