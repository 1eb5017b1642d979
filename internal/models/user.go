package models

import "time"

// User is an account holder. ID is the store-assigned identifier
// (Mongo ObjectID hex or Postgres UUID).
type User struct {
	ID        string    `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialize
	CreatedOn time.Time `json:"createdOn"`
}

// Profile is the subset of User returned by GET /get-user.
type Profile struct {
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	ID        string    `json:"_id"`
	CreatedOn time.Time `json:"createdOn"`
}

func (u *User) Profile() Profile {
	return Profile{FullName: u.FullName, Email: u.Email, ID: u.ID, CreatedOn: u.CreatedOn}
}

// RegisterRequest is the JSON body for POST /createAccount.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
