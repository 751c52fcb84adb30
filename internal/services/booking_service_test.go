package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"busticket/internal/domain"
	"busticket/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

const lockTripSQL = `SELECT .+ FROM trips WHERE id = \? FOR UPDATE`

var (
	tripCols    = []string{"id", "bus_name", "origin", "destination", "departure_time", "arrival_time", "price", "total_seats", "booked_seats"}
	fixedNow    = time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)
	departureAt = time.Date(2025, 6, 10, 7, 0, 0, 0, time.Local)
)

func newBookingService(t *testing.T) (BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return BookingService{DB: db, Now: func() time.Time { return fixedNow }}, mock
}

func lockedTrip(booked string) *sqlmock.Rows {
	return sqlmock.NewRows(tripCols).
		AddRow(7, "Primajasa", "Jakarta", "Bandung", departureAt, departureAt.Add(3*time.Hour), 250, 40, booked)
}

func TestBookCommitsBookingAndSeatUnion(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`["5"]`))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(1), int64(7), `["2","1"]`, int64(500), fixedNow).
		WillReturnResult(sqlmock.NewResult(33, 1))
	mock.ExpectExec(`UPDATE trips SET booked_seats = \? WHERE id = \?`).
		WithArgs(`["1","2","5"]`, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 7, SelectedSeats: []string{"2", "1"}, TotalPrice: 500})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if b.ID != 33 || b.TotalPrice != 500 || len(b.SelectedSeats) != 2 || b.SelectedSeats[0] != "2" {
		t.Fatalf("unexpected booking %#v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookComputesPriceWhenCallerOmitsIt(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`[]`))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(1), int64(7), `["3"]`, int64(250), fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET booked_seats").WithArgs(`["3"]`, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 7, SelectedSeats: []string{"3"}})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if b.TotalPrice != 250 {
		t.Fatalf("expected server price 250, got %d", b.TotalPrice)
	}
}

func TestBookOverlapIsConflictAndRollsBack(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`["1","2"]`))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), 2, models.BookingRequest{TripID: 7, SelectedSeats: []string{"2", "3"}, TotalPrice: 250})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != SeatsTakenMessage {
		t.Fatalf("unexpected conflict message %q", err.Error())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no write may happen on conflict: %v", err)
	}
}

// Two bookings racing for seat "2": the second one reads the row only after
// the first commit (row lock), so it sees ["1","2"] and must lose.
func TestBookSecondOverlappingRequestLoses(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`[]`))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET booked_seats").WithArgs(`["1","2"]`, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`["1","2"]`))
	mock.ExpectRollback()

	if _, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 7, SelectedSeats: []string{"1", "2"}, TotalPrice: 500}); err != nil {
		t.Fatalf("first booking should succeed: %v", err)
	}
	if _, err := svc.Book(context.Background(), 2, models.BookingRequest{TripID: 7, SelectedSeats: []string{"2", "3"}, TotalPrice: 250}); !domain.IsConflict(err) {
		t.Fatalf("second booking should conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookMissingTripIsNotFound(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows(tripCols))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 99, SelectedSeats: []string{"1"}})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookSeatUpdateFailureRollsBackInsert(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`[]`))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET booked_seats").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 7, SelectedSeats: []string{"1"}})
	if !domain.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("booking insert must be rolled back: %v", err)
	}
}

func TestBookLockFailureIsStorageError(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WillReturnError(errors.New("deadlock found"))
	mock.ExpectRollback()

	_, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 7, SelectedSeats: []string{"1"}})
	if !domain.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestBookCommitFailureIsStorageError(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WillReturnRows(lockedTrip(`[]`))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE trips SET booked_seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

	_, err := svc.Book(context.Background(), 1, models.BookingRequest{TripID: 7, SelectedSeats: []string{"1"}})
	if !domain.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestBookRejectsInvalidRequestsBeforeLocking(t *testing.T) {
	cases := map[string]models.BookingRequest{
		"empty seats":    {TripID: 7, SelectedSeats: []string{}},
		"nil seats":      {TripID: 7},
		"blank seat":     {TripID: 7, SelectedSeats: []string{"1", " "}},
		"duplicate seat": {TripID: 7, SelectedSeats: []string{"4", "4"}},
		"bad trip id":    {TripID: 0, SelectedSeats: []string{"1"}},
		"negative price": {TripID: 7, SelectedSeats: []string{"1"}, TotalPrice: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			svc, mock := newBookingService(t)
			if _, err := svc.Book(context.Background(), 1, req); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("no database access expected: %v", err)
			}
		})
	}
}

func TestBookRequiresUser(t *testing.T) {
	svc, _ := newBookingService(t)
	if _, err := svc.Book(context.Background(), 0, models.BookingRequest{TripID: 7, SelectedSeats: []string{"1"}}); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestBookRejectsUnderLockValidation(t *testing.T) {
	cases := map[string]models.BookingRequest{
		"seat above capacity": {TripID: 7, SelectedSeats: []string{"41"}},
		"seat zero":           {TripID: 7, SelectedSeats: []string{"0"}},
		"non numeric seat":    {TripID: 7, SelectedSeats: []string{"A1"}},
		"price mismatch":      {TripID: 7, SelectedSeats: []string{"1", "2"}, TotalPrice: 100},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			svc, mock := newBookingService(t)
			mock.ExpectBegin()
			mock.ExpectQuery(lockTripSQL).WillReturnRows(lockedTrip(`[]`))
			mock.ExpectRollback()

			if _, err := svc.Book(context.Background(), 1, req); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestBookSeatSpellingsMapToOneSeat(t *testing.T) {
	cases := []struct {
		name     string
		booked   string
		seats    []string
		conflict bool
	}{
		{"leading zero against booked seat", `["1"]`, []string{"01"}, true},
		{"plus sign against booked seat", `["1"]`, []string{"+1"}, true},
		{"padded against booked seat", `["1"]`, []string{" 1"}, true},
		{"same seat twice with leading zero", `[]`, []string{"1", "01"}, false},
		{"same seat twice with plus sign", `[]`, []string{"+2", "2"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock := newBookingService(t)
			mock.ExpectBegin()
			mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(tc.booked))
			mock.ExpectRollback()

			_, err := svc.Book(context.Background(), 2, models.BookingRequest{TripID: 7, SelectedSeats: tc.seats})
			if tc.conflict && !domain.IsConflict(err) {
				t.Fatalf("expected conflict, got %v", err)
			}
			if !tc.conflict && !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("no write may happen: %v", err)
			}
		})
	}
}

func TestBookStoresCanonicalSeatNumbers(t *testing.T) {
	svc, mock := newBookingService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockTripSQL).WithArgs(int64(7)).WillReturnRows(lockedTrip(`["1"]`))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(2), int64(7), `["7"]`, int64(250), fixedNow).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("UPDATE trips SET booked_seats").WithArgs(`["1","7"]`, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := svc.Book(context.Background(), 2, models.BookingRequest{TripID: 7, SelectedSeats: []string{"007"}})
	if err != nil {
		t.Fatalf("Book error: %v", err)
	}
	if len(b.SelectedSeats) != 1 || b.SelectedSeats[0] != "7" {
		t.Fatalf("expected canonical seat 7, got %v", b.SelectedSeats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByUser(t *testing.T) {
	svc, mock := newBookingService(t)
	mock.ExpectQuery(`FROM bookings b`).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "trip_id", "selected_seats", "total_price", "booking_time", "tid", "bus_name", "origin", "destination", "departure_time"}).
			AddRow(1, 4, 7, `["1"]`, 250, fixedNow, 7, "Primajasa", "Jakarta", "Bandung", departureAt))

	out, err := svc.ListByUser(context.Background(), 4)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(out) != 1 || out[0].Trip.Origin != "Jakarta" {
		t.Fatalf("unexpected result %#v", out)
	}
}

func TestGetOwnedHidesOtherUsersBookings(t *testing.T) {
	svc, mock := newBookingService(t)
	mock.ExpectQuery(`FROM bookings b`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "trip_id", "selected_seats", "total_price", "booking_time", "tid", "bus_name", "origin", "destination", "departure_time"}).
			AddRow(1, 4, 7, `["1"]`, 250, fixedNow, 7, "Primajasa", "Jakarta", "Bandung", departureAt))

	if _, err := svc.GetOwned(context.Background(), 5, 1); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for foreign booking, got %v", err)
	}
}
