package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "busticket/internal/config"
	intdb "busticket/internal/db"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/utils"
)

type TripService struct {
	TripRepo    repositories.TripRepo
	BookingRepo repositories.BookingRepo
	DB          *sql.DB
	RequestID   string
}

func (s TripService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s TripService) trips() repositories.TripRepo {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepo{DB: s.db()}
}

func (s TripService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

func (s TripService) Search(ctx context.Context, f domain.TripFilter) ([]models.Trip, error) {
	out, err := s.trips().Search(ctx, f)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, domain.StorageError{Op: "search trips", Err: err}
	}
	return out, nil
}

func (s TripService) Get(ctx context.Context, id int64) (models.Trip, error) {
	t, err := s.trips().GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Trip{}, err
		}
		return models.Trip{}, domain.StorageError{Op: "get trip", Err: err}
	}
	return t, nil
}

// Create validates admin input and stores a trip with no booked seats.
func (s TripService) Create(ctx context.Context, in models.TripInput) (models.Trip, error) {
	if err := validateTripInput(in); err != nil {
		return models.Trip{}, err
	}
	t, err := s.trips().Create(ctx, in)
	if err != nil {
		return models.Trip{}, domain.StorageError{Op: "create trip", Err: err}
	}
	utils.LogEvent(s.RequestID, "trip", "create", fmt.Sprintf("trip_id=%d seats=%d", t.ID, t.TotalSeats))
	return t, nil
}

func validateTripInput(in models.TripInput) error {
	switch {
	case strings.TrimSpace(in.BusName) == "":
		return domain.ValidationError{Field: "busName", Msg: "required"}
	case strings.TrimSpace(in.Origin) == "":
		return domain.ValidationError{Field: "origin", Msg: "required"}
	case strings.TrimSpace(in.Destination) == "":
		return domain.ValidationError{Field: "destination", Msg: "required"}
	case in.TotalSeats <= 0:
		return domain.ValidationError{Field: "totalSeats", Msg: "must be positive"}
	case in.Price < 0:
		return domain.ValidationError{Field: "price", Msg: "must not be negative"}
	case in.DepartureTime.IsZero():
		return domain.ValidationError{Field: "departureTime", Msg: "required"}
	case in.ArrivalTime.Before(in.DepartureTime):
		return domain.ValidationError{Field: "arrivalTime", Msg: "must not be before departure"}
	}
	return nil
}

// Delete removes the trip and all of its bookings in one transaction.
func (s TripService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid trip id"}
	}
	var removedBookings int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		n, err := s.bookings().DeleteByTrip(ctx, tx, id)
		if err != nil {
			return domain.StorageError{Op: "delete bookings", Err: err}
		}
		removedBookings = n

		affected, err := s.trips().Delete(ctx, tx, id)
		if err != nil {
			return domain.StorageError{Op: "delete trip", Err: err}
		}
		if affected == 0 {
			return domain.NotFoundError{Resource: "trip"}
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "trip", "delete", fmt.Sprintf("trip_id=%d bookings_removed=%d", id, removedBookings))
	return nil
}
