package models

import (
	"time"

	"busticket/internal/domain"
)

// Booking is immutable once created; it is removed only with its trip.
type Booking struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	TripID        int64           `json:"tripId"`
	SelectedSeats domain.SeatList `json:"selectedSeats"`
	TotalPrice    int64           `json:"totalPrice"`
	BookingTime   time.Time       `json:"bookingTime"`
}

// BookingRequest is the inbound booking payload.
type BookingRequest struct {
	TripID        int64    `json:"tripId" binding:"required"`
	SelectedSeats []string `json:"selectedSeats"`
	TotalPrice    int64    `json:"totalPrice"`
}

// BookingWithTrip is a booking joined with its trip summary.
type BookingWithTrip struct {
	Booking
	Trip TripSummary `json:"trip"`
}
