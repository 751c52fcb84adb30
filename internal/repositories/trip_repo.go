package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "busticket/internal/config"
	intdb "busticket/internal/db"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/utils"
)

const tripColumns = `id, bus_name, origin, destination, departure_time, arrival_time, price, total_seats, booked_seats`

type TripRepo struct {
	DB *sql.DB
}

func (r TripRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID,
		&t.BusName,
		&t.Origin,
		&t.Destination,
		&t.DepartureTime,
		&t.ArrivalTime,
		&t.Price,
		&t.TotalSeats,
		&t.BookedSeats,
	)
	return t, err
}

// Search matches origin/destination case-insensitively and date against the
// local calendar-day window of departure_time. No filters returns every trip.
func (r TripRepo) Search(ctx context.Context, f domain.TripFilter) ([]models.Trip, error) {
	where := []string{"1=1"}
	args := []any{}

	if origin := strings.TrimSpace(f.Origin); origin != "" {
		where = append(where, "LOWER(origin) = ?")
		args = append(args, strings.ToLower(origin))
	}
	if dest := strings.TrimSpace(f.Destination); dest != "" {
		where = append(where, "LOWER(destination) = ?")
		args = append(args, strings.ToLower(dest))
	}
	if date := strings.TrimSpace(f.Date); date != "" {
		start, end, err := utils.DayWindow(date)
		if err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD", Err: err}
		}
		where = append(where, "departure_time >= ? AND departure_time <= ?")
		args = append(args, start, end)
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID is a plain, lock-free read.
func (r TripRepo) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	return r.getByID(ctx, r.db(), id, false)
}

// LockByID reads the trip row with SELECT ... FOR UPDATE inside tx. Any other
// transaction locking the same row blocks until tx ends.
func (r TripRepo) LockByID(ctx context.Context, tx intdb.DBTX, id int64) (models.Trip, error) {
	return r.getByID(ctx, tx, id, true)
}

func (r TripRepo) getByID(ctx context.Context, q intdb.DBTX, id int64, forUpdate bool) (models.Trip, error) {
	if id <= 0 {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTrip(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return models.Trip{}, err
	}
	return t, nil
}

// Create inserts a trip with an empty booked-seat set.
func (r TripRepo) Create(ctx context.Context, in models.TripInput) (models.Trip, error) {
	t := models.Trip{
		BusName:       strings.TrimSpace(in.BusName),
		Origin:        strings.TrimSpace(in.Origin),
		Destination:   strings.TrimSpace(in.Destination),
		DepartureTime: in.DepartureTime,
		ArrivalTime:   in.ArrivalTime,
		Price:         in.Price,
		TotalSeats:    in.TotalSeats,
		BookedSeats:   domain.NewSeatSet(),
	}
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO trips (bus_name, origin, destination, departure_time, arrival_time, price, total_seats, booked_seats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.BusName, t.Origin, t.Destination, t.DepartureTime, t.ArrivalTime, t.Price, t.TotalSeats, t.BookedSeats)
	if err != nil {
		return models.Trip{}, err
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// UpdateBookedSeats overwrites the persisted seat set; callers must hold the row lock.
func (r TripRepo) UpdateBookedSeats(ctx context.Context, tx intdb.DBTX, id int64, seats domain.SeatSet) error {
	_, err := tx.ExecContext(ctx, `UPDATE trips SET booked_seats = ? WHERE id = ?`, seats, id)
	return err
}

// Delete removes the trip row and reports how many rows went away.
func (r TripRepo) Delete(ctx context.Context, q intdb.DBTX, id int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
