package models

import (
	"time"

	"busticket/internal/domain"
)

// Trip is a scheduled bus journey. BookedSeats is mutated only by the booking transaction.
type Trip struct {
	ID            int64          `json:"id"`
	BusName       string         `json:"busName"`
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureTime time.Time      `json:"departureTime"`
	ArrivalTime   time.Time      `json:"arrivalTime"`
	Price         int64          `json:"price"`
	TotalSeats    int            `json:"totalSeats"`
	BookedSeats   domain.SeatSet `json:"bookedSeats"`
}

// AvailableSeats reports how many seats are still free.
func (t Trip) AvailableSeats() int {
	n := t.TotalSeats - t.BookedSeats.Len()
	if n < 0 {
		return 0
	}
	return n
}

// TripInput carries admin-supplied fields for a new trip.
type TripInput struct {
	BusName       string    `json:"busName" binding:"required"`
	Origin        string    `json:"origin" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departureTime" binding:"required"`
	ArrivalTime   time.Time `json:"arrivalTime" binding:"required"`
	Price         int64     `json:"price"`
	TotalSeats    int       `json:"totalSeats" binding:"required"`
}

// TripSummary is the trip projection joined onto a user's bookings.
type TripSummary struct {
	ID            int64     `json:"id"`
	BusName       string    `json:"busName"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
}
