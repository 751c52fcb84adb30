package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"busticket/internal/config"
	"busticket/internal/domain"
	"busticket/internal/domain/models"
	"busticket/internal/repositories"
	"busticket/internal/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProfile is the subset of the userinfo response we keep.
type GoogleProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GoogleAuthService runs the OAuth2 code flow and links the Google account to a local user.
type GoogleAuthService struct {
	OAuth       *oauth2.Config
	UserRepo    repositories.UserRepo
	UserInfoURL string
	RequestID   string
}

// NewGoogleOAuthConfig builds the oauth2 config from auth settings.
func NewGoogleOAuthConfig(cfg config.AuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.profile", "https://www.googleapis.com/auth/userinfo.email"},
		Endpoint:     google.Endpoint,
	}
}

func (s GoogleAuthService) AuthCodeURL(state string) string {
	return s.OAuth.AuthCodeURL(state)
}

// Login exchanges the authorization code, reads the Google profile and
// returns the matching local user, creating it on first login.
func (s GoogleAuthService) Login(ctx context.Context, code string) (models.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.User{}, domain.ValidationError{Field: "code", Msg: "missing authorization code"}
	}

	token, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		return models.User{}, domain.UnauthorizedError{Msg: "failed to exchange token"}
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return models.User{}, err
	}

	u, err := s.UserRepo.UpsertByGoogleID(ctx, profile.ID, profile.Name, profile.Email)
	if err != nil {
		if domain.IsValidation(err) {
			return models.User{}, err
		}
		return models.User{}, domain.StorageError{Op: "upsert user", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "google_login", fmt.Sprintf("user_id=%d", u.ID))
	return u, nil
}

func (s GoogleAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (GoogleProfile, error) {
	url := s.UserInfoURL
	if url == "" {
		url = googleUserInfoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return GoogleProfile{}, err
	}
	resp, err := s.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleProfile{}, domain.UnauthorizedError{Msg: "failed to get user info"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, domain.UnauthorizedError{Msg: fmt.Sprintf("user info returned %d", resp.StatusCode)}
	}

	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return GoogleProfile{}, domain.UnauthorizedError{Msg: "failed to decode user info"}
	}
	if strings.TrimSpace(p.ID) == "" {
		return GoogleProfile{}, domain.UnauthorizedError{Msg: "user info without id"}
	}
	return p, nil
}
