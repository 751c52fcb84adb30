package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "busticket/internal/config"
	intdb "busticket/internal/db"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
)

const bookingWithTripQuery = `
	SELECT
		b.id, b.user_id, b.trip_id, b.selected_seats, b.total_price, b.booking_time,
		t.id, t.bus_name, t.origin, t.destination, t.departure_time
	FROM bookings b
	JOIN trips t ON b.trip_id = t.id
`

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Insert writes b inside q and fills in its ID.
func (r BookingRepo) Insert(ctx context.Context, q intdb.DBTX, b *models.Booking) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO bookings (user_id, trip_id, selected_seats, total_price, booking_time)
		VALUES (?, ?, ?, ?, ?)
	`, b.UserID, b.TripID, b.SelectedSeats, b.TotalPrice, b.BookingTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func scanBookingWithTrip(row rowScanner) (models.BookingWithTrip, error) {
	var b models.BookingWithTrip
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.TripID,
		&b.SelectedSeats,
		&b.TotalPrice,
		&b.BookingTime,
		&b.Trip.ID,
		&b.Trip.BusName,
		&b.Trip.Origin,
		&b.Trip.Destination,
		&b.Trip.DepartureTime,
	)
	return b, err
}

// ListByUser returns the user's bookings joined with their trip summary.
func (r BookingRepo) ListByUser(ctx context.Context, userID int64) ([]models.BookingWithTrip, error) {
	rows, err := r.db().QueryContext(ctx, bookingWithTripQuery+` WHERE b.user_id = ? ORDER BY b.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BookingWithTrip{}
	for rows.Next() {
		b, err := scanBookingWithTrip(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BookingRepo) GetByID(ctx context.Context, id int64) (models.BookingWithTrip, error) {
	b, err := scanBookingWithTrip(r.db().QueryRowContext(ctx, bookingWithTripQuery+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BookingWithTrip{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.BookingWithTrip{}, err
	}
	return b, nil
}

// DeleteByTrip removes every booking of tripID inside q.
func (r BookingRepo) DeleteByTrip(ctx context.Context, q intdb.DBTX, tripID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM bookings WHERE trip_id = ?`, tripID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
