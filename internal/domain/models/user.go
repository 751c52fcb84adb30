package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	GoogleID  string    `json:"googleId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
