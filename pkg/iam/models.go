package iam

import (
	"time"
)

// User represents a platform user. The ID is the identity provider's subject
// string; users are materialized on first sight of a verified token.
type User struct {
	ID            string     `json:"id"`
	Nickname      string     `json:"nickname"`
	Email         string     `json:"email,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	Image         string     `json:"image,omitempty"`
	Role          string     `json:"role"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// CreateUserParams contains parameters for creating a new user
type CreateUserParams struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Image         string `json:"image,omitempty"`
}

// UserQuery filters and pages user listings
type UserQuery struct {
	Search string `json:"search,omitempty"` // matches nickname or email
	Role   string `json:"role,omitempty"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// UserPage is one page of a user listing
type UserPage struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}
