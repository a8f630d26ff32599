// Package domain contains core concepts of the news and chat system.
// This file defines Identity values consumed by the chat core.
// Identity is owned by the authentication collaborator; the chat core
// treats it as an immutable value for the lifetime of a session.
package domain

type Identity struct {
	ID          string
	Email       string
	DisplayName string
}
