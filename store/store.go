//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
// Package store implements the real-time document store behind the chat
// room: ordered append, atomic field-union patches, and live queries that
// re-deliver the full ordered result set on every change.
package store

import (
	"context"
	"time"
)

// Record is the raw persisted shape of one chat message. Field names follow
// the wire document layout; Timestamp is assigned by the store at commit
// time and is nil only for records that have not committed yet.
type Record struct {
	ID         string     `cbor:"id"`
	Text       string     `cbor:"text"`
	SenderID   string     `cbor:"senderId"`
	SenderName string     `cbor:"senderName"`
	Timestamp  *time.Time `cbor:"timestamp"`
	HiddenFor  []string   `cbor:"hiddenFor"`
}

// FieldUnion describes an atomic set-union update of one array field of a
// single record. Elements already present are left alone, which makes the
// update safe to repeat and safe under concurrent unions by other writers.
type FieldUnion struct {
	Field string
	Add   []string
}

type IMessageStore interface {
	// Append persists a new record, assigns its id and server timestamp,
	// and returns the id. Triggers one change notification to every live
	// query.
	Append(ctx context.Context, rec Record) (string, error)

	// LiveQuery registers a standing query over the message collection,
	// ordered ascending by store timestamp. onSnapshot receives the full
	// current result set immediately and again after every change, never a
	// delta. The returned subscription's Cancel guarantees no further call
	// after it returns.
	LiveQuery(onSnapshot func([]Record)) (*Subscription, error)

	// Patch applies a field-union update to the record with the given id.
	Patch(ctx context.Context, id string, union FieldUnion) error

	// AllowList returns the uids of the chat allow-list document and
	// whether the document exists at all.
	AllowList(ctx context.Context) ([]string, bool, error)
}
