package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"busticket/internal/domain"
	"busticket/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-42","name":"Rina","email":"rina@example.com"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogleAuth(t *testing.T, srv *httptest.Server) (GoogleAuthService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return GoogleAuthService{
		OAuth: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/auth/google/callback",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		UserRepo:    repositories.UserRepo{DB: db},
		UserInfoURL: srv.URL + "/userinfo",
	}, mock
}

func TestGoogleLoginLinksExistingUser(t *testing.T) {
	srv := fakeGoogle(t)
	svc, mock := newGoogleAuth(t, srv)

	mock.ExpectQuery(`FROM users WHERE google_id = \?`).WithArgs("g-42").
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "name", "email", "created_at"}).
			AddRow(5, "g-42", "Rina", "rina@example.com", time.Now()))

	u, err := svc.Login(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if u.ID != 5 || u.GoogleID != "g-42" {
		t.Fatalf("unexpected user %#v", u)
	}
}

func TestGoogleLoginRejectsBadCode(t *testing.T) {
	srv := fakeGoogle(t)
	svc, _ := newGoogleAuth(t, srv)

	if _, err := svc.Login(context.Background(), "bad-code"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Login(context.Background(), " "); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty code, got %v", err)
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	srv := fakeGoogle(t)
	svc, _ := newGoogleAuth(t, srv)
	if url := svc.AuthCodeURL("st-1"); url == "" || !strings.Contains(url, "state=st-1") || !strings.Contains(url, "client_id=client") {
		t.Fatalf("unexpected auth url %q", url)
	}
}
