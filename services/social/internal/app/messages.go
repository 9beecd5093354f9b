package app

import (
	"context"
	"fmt"

	"teeup/internal/util"
	"teeup/pkg/domain"
)

// MessageEventName is the realtime event published on a conversation channel
// after a message insert. Clients re-fetch on receipt; the payload is a hint,
// not the source of truth.
const MessageEventName = "message"

// MessageEvent is the realtime payload for a new message.
type MessageEvent struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
}

// SendMessage appends a message to a conversation the caller belongs to and
// broadcasts the insert on the conversation's realtime channel. The caller's
// profile is re-resolved from the user id on every send so a stale session
// never writes under an outdated sender.
func (a *App) SendMessage(ctx context.Context, callerUserID, conversationID, content string) (domain.Message, error) {
	sender, ok, err := a.store.GetProfileByUserID(callerUserID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("resolve sender: %w", err)
	}
	if !ok {
		return domain.Message{}, ErrNotAuthenticated
	}
	convs, err := a.store.ListConversationsByIDs([]string{conversationID})
	if err != nil {
		return domain.Message{}, fmt.Errorf("load conversation: %w", err)
	}
	if len(convs) == 0 {
		return domain.Message{}, ErrConversationNotFound
	}

	msg := domain.Message{
		ID:             a.newID(),
		ConversationID: conversationID,
		SenderID:       sender.ID,
		Content:        content,
		CreatedAt:      a.now(),
	}
	if err := a.store.InsertMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	msg.Sender = &sender

	ch := a.broker.Channel(conversationID)
	if err := ch.Publish(ctx, MessageEventName, MessageEvent{
		MessageID:      msg.ID,
		ConversationID: conversationID,
		SenderID:       sender.ID,
	}); err != nil {
		// The write is durable; a failed broadcast only delays readers until
		// their next fetch.
		util.LoggerFromContext(ctx).Warn("message broadcast failed", "conversation_id", conversationID, "error", err)
	}
	return msg, nil
}

// ListMessages returns a conversation's messages oldest-first with sender
// profiles joined.
func (a *App) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	convs, err := a.store.ListConversationsByIDs([]string{conversationID})
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if len(convs) == 0 {
		return nil, ErrConversationNotFound
	}
	return a.store.ListMessages(conversationID)
}
