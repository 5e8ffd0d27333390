// Package model defines the data structures used throughout the application.
package model

import "time"

// Roles a user account can hold. RoleAdmin unlocks the moderation endpoints.
const (
	RoleGeneral = "GENERAL"
	RoleAdmin   = "ADMIN"
)

// Social-login provider tags stored in users.social_login_type.
// GENERAL marks accounts created through the normal register form.
const (
	ProviderGeneral = "GENERAL"
	ProviderGoogle  = "GOOGLE"
)

// User represents a registered account.
//
// ID is the user-chosen, email-like login identifier and is unique.
// UserNum is the numeric surrogate key generated by the database; every
// owned resource (lost-pet post, report, community post, comment) stores it
// as its owner key.
//
// PasswordHash is empty for social accounts — Google users never set a
// password, so attempting a normal login with such an account fails the
// same way a wrong password does.
type User struct {
	UserNum      int64     `json:"userNum"`
	ID           string    `json:"id"`
	PasswordHash string    `json:"-"` // never serialized
	Nickname     string    `json:"nickname"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	Provider     string    `json:"socialLoginType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayName is what the frontend shows next to a user's content:
// the nickname when set, otherwise the real name.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
