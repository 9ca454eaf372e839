// Package domain contains core concepts of the chat system.
// This file defines User identities as seen by the chat core.
package domain

import "time"

// UnknownUserName is displayed for users that cannot be resolved.
const UnknownUserName = "Unknown"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// DisplayName never returns an empty string.
func (u User) DisplayName() string {
	if u.Name == "" {
		return UnknownUserName
	}
	return u.Name
}

// IsAnonymous is true for guest accounts, which have no email to log in with.
func (u User) IsAnonymous() bool {
	return u.Email == ""
}

func nameOrUnknown(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return UnknownUserName
}
