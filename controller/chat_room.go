// Package controller holds the UI-facing chat room session: the locally
// materialized message list, the compose buffer, and the subscription
// lifecycle glue between a display surface and the chat service.
package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"newsdesk/domain"
	"newsdesk/errors"
	"newsdesk/services"
)

// State is the lifecycle of one mounted chat session.
type State int

const (
	Idle State = iota
	Subscribing
	Live
	Unsubscribed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Subscribing:
		return "Subscribing"
	case Live:
		return "Live"
	case Unsubscribed:
		return "Unsubscribed"
	default:
		return "Unknown"
	}
}

// ChatRoom is one viewer's chat session. Every update from the service
// replaces the local list wholesale; the controller never patches it.
//
// Stop is safe to call from any exit path and any number of times; the
// unsubscribe handle fires exactly once.
type ChatRoom struct {
	log    *slog.Logger
	chat   services.IChatService
	viewer domain.Identity

	mu       sync.Mutex
	state    State
	messages []domain.Message
	compose  string
	cancel   func()

	sending atomic.Bool

	// onUpdate is invoked after each list replacement, outside the lock.
	// The display surface uses it to push the new list and scroll to the
	// latest message.
	onUpdate func([]domain.Message)
}

func NewChatRoom(log *slog.Logger, chat services.IChatService, viewer domain.Identity,
	onUpdate func([]domain.Message)) *ChatRoom {
	return &ChatRoom{
		log:      log,
		chat:     chat,
		viewer:   viewer,
		state:    Idle,
		onUpdate: onUpdate,
	}
}

// Start subscribes the session. Re-starting an already live session first
// tears the previous subscription down so a viewer never receives
// duplicate deliveries.
func (c *ChatRoom) Start() error {
	c.mu.Lock()
	if c.cancel != nil {
		prev := c.cancel
		c.cancel = nil
		c.mu.Unlock()
		prev()
		c.mu.Lock()
	}
	c.state = Subscribing
	c.mu.Unlock()

	cancel, err := c.chat.Subscribe(c.viewer.ID, c.replaceList)
	if err != nil {
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	return nil
}

func (c *ChatRoom) replaceList(messages []domain.Message) {
	c.mu.Lock()
	c.state = Live
	c.messages = messages
	onUpdate := c.onUpdate
	c.mu.Unlock()

	if onUpdate != nil {
		onUpdate(messages)
	}
}

// Stop tears the subscription down. Must run on every exit path
// (navigation away, identity loss, disposal); after it returns no further
// list replacement occurs. Calling it again is a no-op: the unsubscribe
// handle fires exactly once per subscribe.
func (c *ChatRoom) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.state = Unsubscribed
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	c.log.Debug("chat session unsubscribed", "viewer_id", c.viewer.ID)
}

// SetCompose replaces the compose buffer.
func (c *ChatRoom) SetCompose(text string) {
	c.mu.Lock()
	c.compose = text
	c.mu.Unlock()
}

func (c *ChatRoom) Compose() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compose
}

// Send submits the compose buffer. A single in-flight guard rejects a
// second send while one is outstanding; it is released on completion or
// failure, and a failed send leaves the compose buffer untouched so the
// viewer's text is not lost.
func (c *ChatRoom) Send(ctx context.Context) error {
	if !c.sending.CompareAndSwap(false, true) {
		return errors.ErrSendInFlight
	}
	defer c.sending.Store(false)

	text := strings.TrimSpace(c.Compose())
	if text == "" {
		return errors.ErrEmptyMessage
	}

	if err := c.chat.Send(ctx, text, c.viewer.ID, c.viewer.DisplayName); err != nil {
		return err
	}

	c.SetCompose("")
	return nil
}

// Hide removes one message from this viewer's list only. Idempotent and
// fire-and-forget from the session's perspective; the updated list arrives
// through the live subscription.
func (c *ChatRoom) Hide(ctx context.Context, messageID string) error {
	return c.chat.Hide(ctx, messageID, c.viewer.ID)
}

func (c *ChatRoom) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns the latest delivered visible list.
func (c *ChatRoom) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages
}
