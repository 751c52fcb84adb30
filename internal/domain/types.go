package domain

// ID is used across domain entities.
type ID int64

// Principal carries the authenticated caller resolved by the session middleware.
type Principal struct {
	UserID   ID     `json:"userId"`
	GoogleID string `json:"googleId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// TripFilter narrows trip search; empty fields are ignored.
type TripFilter struct {
	Origin      string
	Destination string
	Date        string // YYYY-MM-DD, server-local calendar day
}
