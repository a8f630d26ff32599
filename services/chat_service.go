//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"newsdesk/domain"
	"newsdesk/errors"
	"newsdesk/store"
)

type IChatService interface {
	Subscribe(viewerID string, onUpdate func([]domain.Message)) (func(), error)
	Send(ctx context.Context, text, senderID, senderName string) error
	Hide(ctx context.Context, messageID, viewerID string) error
	IsAllowed(ctx context.Context, viewerID string) bool
}

// ChatService owns the live subscription lifecycle of the hidden chat room.
// On every store snapshot it re-derives the full visible list for the
// subscribing viewer and hands it downstream as a full-state replacement,
// never a delta.
type ChatService struct {
	store store.IMessageStore
	log   *slog.Logger
}

func NewChatService(messageStore store.IMessageStore, log *slog.Logger) *ChatService {
	return &ChatService{store: messageStore, log: log}
}

// Subscribe establishes a live query for viewerID. onUpdate receives the
// complete current visible list on the initial load and after every change,
// in store-timestamp order. The returned handle detaches the query; no
// onUpdate call happens after it returns.
//
// If the live query cannot be established, one automatic retry is made
// before the failure is surfaced.
func (s *ChatService) Subscribe(viewerID string, onUpdate func([]domain.Message)) (func(), error) {
	if viewerID == "" {
		return nil, errors.ErrMissingIdentity
	}

	onSnapshot := func(records []store.Record) {
		onUpdate(visibleMessages(records, viewerID))
	}

	sub, err := s.store.LiveQuery(onSnapshot)
	if err != nil {
		s.log.Warn("live query failed, retrying once", "viewer_id", viewerID, "error", err)
		sub, err = s.store.LiveQuery(onSnapshot)
	}
	if err != nil {
		return nil, err
	}
	return sub.Cancel, nil
}

// visibleMessages maps raw records into the Message shape and drops the
// ones the viewer hid, preserving store order: the result is always a
// subsequence of the store's timestamp order.
func visibleMessages(records []store.Record, viewerID string) []domain.Message {
	return lo.FilterMap(records, func(rec store.Record, _ int) (domain.Message, bool) {
		m := toMessage(rec)
		return m, domain.Visible(m, viewerID)
	})
}

func toMessage(rec store.Record) domain.Message {
	return domain.Message{
		ID:         rec.ID,
		Text:       rec.Text,
		SenderID:   rec.SenderID,
		SenderName: rec.SenderName,
		Timestamp:  rec.Timestamp,
		HiddenFor:  rec.HiddenFor,
	}
}

// Send appends a new message. The caller is responsible for trimming: a
// text that is blank after trimming is a caller error rejected before any
// store call, and the Service never alters the text it is given.
//
// There is no optimistic local insert. The message appears in subscriber
// lists only once the store round-trips it back through the live query,
// which is what keeps every viewer on the store's ordering.
func (s *ChatService) Send(ctx context.Context, text, senderID, senderName string) error {
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyMessage
	}
	if senderID == "" {
		return errors.ErrMissingIdentity
	}
	if senderName == "" {
		senderName = "Anonymous"
	}

	_, err := s.store.Append(ctx, store.Record{
		Text:       text,
		SenderID:   senderID,
		SenderName: senderName,
		HiddenFor:  []string{},
	})
	return err
}

// Hide adds viewerID to the message's hiddenFor set through an atomic
// set-union, so repeating it is a no-op and concurrent hides by other
// viewers are never lost. A failure is reported to the caller only; the
// live subscription is unaffected.
func (s *ChatService) Hide(ctx context.Context, messageID, viewerID string) error {
	if viewerID == "" {
		return errors.ErrMissingIdentity
	}
	if messageID == "" {
		return errors.ErrRecordNotFound
	}
	return s.store.Patch(ctx, messageID, store.FieldUnion{
		Field: "hiddenFor",
		Add:   []string{viewerID},
	})
}

// IsAllowed consults the allow-list document. A missing document or a read
// failure allows every authenticated viewer: the list is an access
// convenience, and failing open keeps the room reachable when the config
// document is absent. The fallback is logged so it stays visible in
// operation.
func (s *ChatService) IsAllowed(ctx context.Context, viewerID string) bool {
	uids, exists, err := s.store.AllowList(ctx)
	if err != nil {
		s.log.Warn("allow list read failed, failing open", "error", err)
		return true
	}
	if !exists {
		return true
	}
	return slices.Contains(uids, viewerID)
}
