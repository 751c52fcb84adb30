package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "busticket/internal/config"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
)

type UserRepo struct {
	DB *sql.DB
}

func (r UserRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r UserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.getOne(ctx, `SELECT id, google_id, name, email, created_at FROM users WHERE id = ?`, id)
}

func (r UserRepo) GetByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	return r.getOne(ctx, `SELECT id, google_id, name, email, created_at FROM users WHERE google_id = ?`, googleID)
}

func (r UserRepo) getOne(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.GoogleID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertByGoogleID returns the user linked to googleID, creating it on first login.
// An existing row keeps its stored name/email.
func (r UserRepo) UpsertByGoogleID(ctx context.Context, googleID, name, email string) (models.User, error) {
	googleID = strings.TrimSpace(googleID)
	if googleID == "" {
		return models.User{}, domain.ValidationError{Field: "google_id", Msg: "empty"}
	}

	u, err := r.GetByGoogleID(ctx, googleID)
	if err == nil {
		return u, nil
	}
	if !domain.IsNotFound(err) {
		return models.User{}, err
	}

	// INSERT IGNORE absorbs a concurrent first login racing on the unique key.
	if _, err := r.db().ExecContext(ctx,
		`INSERT IGNORE INTO users (google_id, name, email) VALUES (?, ?, ?)`,
		googleID, strings.TrimSpace(name), strings.TrimSpace(email),
	); err != nil {
		return models.User{}, err
	}
	return r.GetByGoogleID(ctx, googleID)
}
