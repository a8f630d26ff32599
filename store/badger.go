package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	apperrors "newsdesk/errors"
)

const (
	messagePrefix = "msg:"
	idIndexPrefix = "msgid:"
	allowListKey  = "config:allowedUsers"

	maxPatchAttempts = 5
)

// BadgerStore persists chat records in BadgerDB.
//
// The primary key is "msg:{timestamp_padded}:{uuid}": 19-digit zero padding
// makes a forward prefix scan yield store-timestamp order, and the uuid
// disambiguates two commits landing on the same nanosecond. A secondary
// "msgid:{uuid}" entry maps the record id back to its primary key so Patch
// does not need a scan.
type BadgerStore struct {
	db      *badger.DB
	log     *slog.Logger
	version atomic.Uint64
	changes chan struct{}

	mu      sync.RWMutex
	subs    map[uint64]*Subscription
	nextSub uint64
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{
		db:      db,
		log:     log,
		changes: make(chan struct{}, 1),
		subs:    make(map[uint64]*Subscription),
	}
}

func messageKey(ts time.Time, id string) []byte {
	return fmt.Appendf(nil, "%s%019d:%s", messagePrefix, ts.UnixNano(), id)
}

func idIndexKey(id string) []byte {
	return []byte(idIndexPrefix + id)
}

// Append assigns the record id and the server timestamp, commits both the
// record and its id index entry, and notifies live queries.
func (s *BadgerStore) Append(_ context.Context, rec Record) (string, error) {
	now := time.Now().UTC()
	rec.ID = uuid.NewString()
	rec.Timestamp = &now
	if rec.HiddenFor == nil {
		rec.HiddenFor = []string{}
	}

	data, err := cbor.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrWriteFailure, err)
	}

	key := messageKey(now, rec.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(idIndexKey(rec.ID), key)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrWriteFailure, err)
	}

	s.bump()
	return rec.ID, nil
}

// Patch applies an atomic set-union to the hiddenFor field of one record.
// The read-union-write runs inside a single transaction and is retried on
// commit conflict, so concurrent unions by different viewers never lose an
// element. Repeating the same union is a no-op.
func (s *BadgerStore) Patch(_ context.Context, id string, union FieldUnion) error {
	if union.Field != "hiddenFor" {
		return fmt.Errorf("%w: unsupported patch field %q", apperrors.ErrWriteFailure, union.Field)
	}

	var err error
	for attempt := 0; attempt < maxPatchAttempts; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			return s.unionHiddenFor(txn, id, union.Add)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if errors.Is(err, apperrors.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", apperrors.ErrWriteFailure, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrWriteFailure, err)
	}

	s.bump()
	return nil
}

func (s *BadgerStore) unionHiddenFor(txn *badger.Txn, id string, add []string) error {
	idxItem, err := txn.Get(idIndexKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	key, err := idxItem.ValueCopy(nil)
	if err != nil {
		return err
	}

	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	var rec Record
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &rec)
	})
	if err != nil {
		return err
	}

	changed := false
	for _, v := range add {
		if !slices.Contains(rec.HiddenFor, v) {
			rec.HiddenFor = append(rec.HiddenFor, v)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	data, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// LiveQuery registers a subscription and delivers the current result set
// synchronously before returning. If a commit slipped in between the
// snapshot read and the registration, a change notification is re-armed so
// the fanout worker brings every subscriber up to date.
func (s *BadgerStore) LiveQuery(onSnapshot func([]Record)) (*Subscription, error) {
	records, v, err := s.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSubscriptionFailure, err)
	}

	sub := &Subscription{onSnapshot: onSnapshot}
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = sub
	s.mu.Unlock()

	sub.detach = func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}

	sub.deliver(records, v)
	if s.version.Load() != v {
		s.notify()
	}
	return sub, nil
}

// Snapshot reads the full message collection in store-timestamp order. The
// returned version is the store version the snapshot is at least as fresh as.
func (s *BadgerStore) Snapshot() ([]Record, uint64, error) {
	v := s.version.Load()
	var records []Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return records, v, nil
}

// Broadcast re-reads the collection and delivers it to every live query.
// Called by the snapshot fanout worker, one delivery pass at a time.
func (s *BadgerStore) Broadcast() {
	records, v, err := s.Snapshot()
	if err != nil {
		s.log.Error("snapshot read failed, skipping broadcast", "error", err)
		return
	}

	s.mu.RLock()
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(records, v)
	}
}

// Changes signals that at least one commit happened since the last drain.
// The channel coalesces: the fanout worker always re-reads the full state.
func (s *BadgerStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *BadgerStore) bump() {
	s.version.Add(1)
	s.notify()
}

func (s *BadgerStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

type allowListDoc struct {
	UIDs []string `cbor:"uids"`
}

// AllowList reads the chat allow-list document. A missing document is not
// an error: it reports exists=false and the caller decides the policy.
func (s *BadgerStore) AllowList(_ context.Context) ([]string, bool, error) {
	var doc allowListDoc
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(allowListKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.UIDs, true, nil
}

// SetAllowList writes the allow-list document. Operational tooling only;
// the chat core never mutates it.
func (s *BadgerStore) SetAllowList(_ context.Context, uids []string) error {
	data, err := cbor.Marshal(allowListDoc{UIDs: uids})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(allowListKey), data)
	})
}
