// Package domain contains core concepts of the news and chat system.
// This file defines Message values and their ordering rules.
// Messages are immutable once created; only HiddenFor grows.
package domain

import (
	"time"
)

// Message is the read-side projection of one chat record.
//
// ID, SenderID and Text never change after creation. Timestamp is assigned
// by the store at write commit; a nil Timestamp means the commit is still
// pending and the message sorts after every committed one.
type Message struct {
	ID         string
	Text       string
	SenderID   string
	SenderName string
	Timestamp  *time.Time
	HiddenFor  []string
}

// Before reports whether m was committed before other, following the
// store-assigned timestamp order. Pending messages (nil timestamp) sort last.
func (m Message) Before(other Message) bool {
	switch {
	case m.Timestamp == nil:
		return false
	case other.Timestamp == nil:
		return true
	default:
		return m.Timestamp.Before(*other.Timestamp)
	}
}
