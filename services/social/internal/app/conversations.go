package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"teeup/pkg/domain"
)

// GetOrCreateDM returns the direct conversation between the caller and the
// other profile, creating it when none exists yet. Repeated calls converge on
// the same conversation; two racing first calls may each create one, and both
// stay readable.
func (a *App) GetOrCreateDM(ctx context.Context, callerProfileID, otherProfileID string) (domain.Conversation, error) {
	if callerProfileID == "" {
		return domain.Conversation{}, ErrNotAuthenticated
	}
	if otherProfileID == "" || otherProfileID == callerProfileID {
		return domain.Conversation{}, fmt.Errorf("%w: invalid dm participant", ErrValidation)
	}
	if _, ok, err := a.store.GetProfileByID(otherProfileID); err != nil {
		return domain.Conversation{}, fmt.Errorf("check participant: %w", err)
	} else if !ok {
		return domain.Conversation{}, ErrProfileNotFound
	}

	mine, err := a.store.ListConversationIDsForProfile(callerProfileID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("list caller conversations: %w", err)
	}
	theirs, err := a.store.ListConversationIDsForProfile(otherProfileID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("list peer conversations: %w", err)
	}
	shared := intersect(mine, theirs)
	if len(shared) > 0 {
		convs, err := a.store.ListConversationsByIDs(shared)
		if err != nil {
			return domain.Conversation{}, fmt.Errorf("load shared conversations: %w", err)
		}
		for _, c := range convs {
			if c.Type == domain.ConversationDM {
				return c, nil
			}
		}
	}

	conv := domain.Conversation{
		ID:        a.newID(),
		Type:      domain.ConversationDM,
		CreatedAt: a.now(),
	}
	if err := a.store.CreateConversation(conv, callerProfileID, otherProfileID); err != nil {
		return domain.Conversation{}, fmt.Errorf("create dm: %w", err)
	}
	return conv, nil
}

// ListConversations returns the caller's conversations that have at least one
// message, each with participants and the most recent message, newest first.
func (a *App) ListConversations(ctx context.Context, callerProfileID string) ([]domain.ConversationDetails, error) {
	if callerProfileID == "" {
		return nil, ErrNotAuthenticated
	}
	ids, err := a.store.ListConversationIDsForProfile(callerProfileID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(ids) == 0 {
		return []domain.ConversationDetails{}, nil
	}
	convs, err := a.store.ListConversationsByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	participants, err := a.store.ListConversationParticipants(ids)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	res := make([]domain.ConversationDetails, 0, len(convs))
	for _, c := range convs {
		last, ok, err := a.store.LastMessage(c.ID)
		if err != nil {
			return nil, fmt.Errorf("load last message: %w", err)
		}
		if !ok {
			// A conversation nobody wrote to yet is invisible in the list.
			continue
		}
		details := domain.ConversationDetails{
			Conversation: c,
			Participants: participants[c.ID],
			LastMessage:  &last,
		}
		if c.Type == domain.ConversationRound && c.RoundID != "" {
			if round, ok, err := a.store.GetRoundDetails(c.RoundID); err != nil {
				return nil, fmt.Errorf("load round for conversation: %w", err)
			} else if ok {
				details.RoundName = round.Course.Name
			}
		}
		res = append(res, details)
	}
	sort.Slice(res, func(i, j int) bool {
		return lastActivity(res[j]).Before(lastActivity(res[i]))
	})
	return res, nil
}

// RoundConversation resolves the group conversation attached to a round.
func (a *App) RoundConversation(ctx context.Context, roundID string) (string, error) {
	convID, ok, err := a.store.GetRoundConversation(roundID)
	if err != nil {
		return "", fmt.Errorf("find round conversation: %w", err)
	}
	if !ok {
		return "", ErrConversationNotFound
	}
	return convID, nil
}

func lastActivity(c domain.ConversationDetails) time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.CreatedAt
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	var out []string
	for _, id := range b {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
