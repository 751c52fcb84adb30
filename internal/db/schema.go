package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// HasTable checks information_schema for table in the current database.
func HasTable(ctx context.Context, q DBTX, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

var tableDDL = []struct {
	name string
	ddl  string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	google_id VARCHAR(64) NOT NULL,
	name VARCHAR(255) NOT NULL DEFAULT '',
	email VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_google_id (google_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_name VARCHAR(255) NOT NULL,
	origin VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	departure_time DATETIME(3) NOT NULL,
	arrival_time DATETIME(3) NOT NULL,
	price BIGINT NOT NULL DEFAULT 0,
	total_seats INT NOT NULL,
	booked_seats TEXT NOT NULL,
	KEY idx_route (origin, destination),
	KEY idx_departure (departure_time)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	trip_id BIGINT NOT NULL,
	selected_seats TEXT NOT NULL,
	total_price BIGINT NOT NULL,
	booking_time DATETIME(3) NOT NULL,
	KEY idx_user (user_id),
	KEY idx_trip (trip_id),
	CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id),
	CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// EnsureSchema creates any missing table. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, conn DBTX) error {
	if conn == nil {
		return errors.New("database not available")
	}
	for _, t := range tableDDL {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}
