// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

// User is the identity created and owned by the account subsystem.
// This core only ever reads it.
type User struct {
	ID     string
	Name   string
	Email  string // lower-cased, unique; used in personal room addressing
	Phone  string
	Avatar string
}

// PublicProfile is the subset of a user embedded in message payloads,
// so recipients never need a follow-up lookup.
type PublicProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}
