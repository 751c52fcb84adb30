package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	intconfig "busticket/internal/config"
	intdb "busticket/internal/db"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/utils"
)

// SeatsTakenMessage is returned to callers when a requested seat is already booked.
const SeatsTakenMessage = "Sorry, one or more seats were just booked."

type BookingService struct {
	TripRepo    repositories.TripRepo
	BookingRepo repositories.BookingRepo
	DB          *sql.DB
	RequestID   string
	Now         func() time.Time
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) trips() repositories.TripRepo {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepo{DB: s.db()}
}

func (s BookingService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Book reserves the requested seats on a trip or fails without side effects.
//
// The trip row is locked with SELECT ... FOR UPDATE for the whole
// read-check-write span, so at most one booking per trip is in flight while
// bookings on other trips proceed in parallel. The booking insert and the
// booked-seat update commit together or not at all.
func (s BookingService) Book(ctx context.Context, userID int64, req models.BookingRequest) (models.Booking, error) {
	if userID <= 0 {
		return models.Booking{}, domain.UnauthorizedError{Msg: "You must be logged in to book."}
	}
	if req.TripID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "tripId", Msg: "invalid trip id"}
	}
	seats := utils.CleanSeatList(req.SelectedSeats)
	if len(seats) == 0 {
		return models.Booking{}, domain.ValidationError{Field: "selectedSeats", Msg: "select at least one seat"}
	}
	if len(seats) != len(req.SelectedSeats) {
		return models.Booking{}, domain.ValidationError{Field: "selectedSeats", Msg: "seat numbers must not be blank"}
	}
	if domain.NewSeatSet(seats...).Len() != len(seats) {
		return models.Booking{}, domain.ValidationError{Field: "selectedSeats", Msg: "duplicate seat in request"}
	}
	if req.TotalPrice < 0 {
		return models.Booking{}, domain.ValidationError{Field: "totalPrice", Msg: "must not be negative"}
	}

	var booking models.Booking
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		trip, err := s.trips().LockByID(ctx, tx, req.TripID)
		if err != nil {
			if domain.IsNotFound(err) {
				return err
			}
			return domain.StorageError{Op: "lock trip", Err: err}
		}

		normalized, err := normalizeSeats(seats, trip.TotalSeats)
		if err != nil {
			return err
		}
		seats = normalized

		if taken := trip.BookedSeats.Intersect(seats); len(taken) > 0 {
			return domain.ConflictError{
				Msg: SeatsTakenMessage,
				Err: fmt.Errorf("trip %d seats taken: %s", trip.ID, strings.Join(taken, ",")),
			}
		}

		total := trip.Price * int64(len(seats))
		if req.TotalPrice > 0 && req.TotalPrice != total {
			return domain.ValidationError{
				Field: "totalPrice",
				Msg:   fmt.Sprintf("total price mismatch: expected %d", total),
			}
		}

		booking = models.Booking{
			UserID:        userID,
			TripID:        trip.ID,
			SelectedSeats: domain.SeatList(seats),
			TotalPrice:    total,
			BookingTime:   s.now().Truncate(time.Millisecond),
		}
		if err := s.bookings().Insert(ctx, tx, &booking); err != nil {
			return domain.StorageError{Op: "insert booking", Err: err}
		}
		if err := s.trips().UpdateBookedSeats(ctx, tx, trip.ID, trip.BookedSeats.Union(seats)); err != nil {
			return domain.StorageError{Op: "update booked seats", Err: err}
		}
		return nil
	})
	if err != nil {
		if domain.IsStorage(err) {
			utils.LogError(s.RequestID, "booking", "book", err)
		} else {
			utils.LogEvent(s.RequestID, "booking", "book_rejected",
				fmt.Sprintf("trip_id=%d user_id=%d reason=%v", req.TripID, userID, err))
		}
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "book",
		fmt.Sprintf("booking_id=%d trip_id=%d seats=%d", booking.ID, booking.TripID, len(seats)))
	return booking, nil
}

// normalizeSeats requires every seat to be a decimal number in 1..totalSeats
// and rewrites it to its canonical spelling, so "01" and "+1" are seat "1".
// Seats that collide after rewriting are rejected.
func normalizeSeats(seats []string, totalSeats int) ([]string, error) {
	out := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		n, err := strconv.Atoi(seat)
		if err != nil || n < 1 || n > totalSeats {
			return nil, domain.ValidationError{
				Field: "selectedSeats",
				Msg:   fmt.Sprintf("seat %q is outside 1..%d", seat, totalSeats),
			}
		}
		canonical := strconv.Itoa(n)
		if _, dup := seen[canonical]; dup {
			return nil, domain.ValidationError{Field: "selectedSeats", Msg: "duplicate seat in request"}
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}

// ListByUser returns the user's bookings with their trip summary.
func (s BookingService) ListByUser(ctx context.Context, userID int64) ([]models.BookingWithTrip, error) {
	if userID <= 0 {
		return nil, domain.UnauthorizedError{Msg: "You must be logged in."}
	}
	out, err := s.bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.StorageError{Op: "list bookings", Err: err}
	}
	return out, nil
}

// GetOwned returns a booking only when userID owns it; other users see NotFound.
func (s BookingService) GetOwned(ctx context.Context, userID, bookingID int64) (models.BookingWithTrip, error) {
	b, err := s.bookings().GetByID(ctx, bookingID)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.BookingWithTrip{}, err
		}
		return models.BookingWithTrip{}, domain.StorageError{Op: "get booking", Err: err}
	}
	if b.UserID != userID {
		return models.BookingWithTrip{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}
