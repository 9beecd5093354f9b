package app

import (
	"context"
	"fmt"
	"strings"

	"teeup/pkg/domain"
	"teeup/pkg/events"
)

// UpsertReview writes or rewrites the caller's review of a co-participant for
// one round. The (round, reviewer, reviewed) triple is the identity; a second
// submission replaces rating and comment in place.
func (a *App) UpsertReview(ctx context.Context, callerProfileID string, roundID, reviewedUserID string, rating int, comment string) (domain.Review, error) {
	if callerProfileID == "" {
		return domain.Review{}, ErrNotAuthenticated
	}
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}
	if reviewedUserID == callerProfileID {
		return domain.Review{}, ErrSelfReview
	}
	if _, ok, err := a.store.GetRoundDetails(roundID); err != nil {
		return domain.Review{}, fmt.Errorf("load round: %w", err)
	} else if !ok {
		return domain.Review{}, ErrRoundNotFound
	}

	now := a.now()
	review := domain.Review{
		ID:             a.newID(),
		RoundID:        roundID,
		ReviewerID:     callerProfileID,
		ReviewedUserID: reviewedUserID,
		Rating:         rating,
		Comment:        strings.TrimSpace(comment),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	saved, err := a.store.UpsertReview(review)
	if err != nil {
		return domain.Review{}, fmt.Errorf("upsert review: %w", err)
	}

	a.emit(ctx, events.KeyReviewSubmitted, events.ReviewEvent{
		RoundID:        roundID,
		ReviewerID:     callerProfileID,
		ReviewedUserID: reviewedUserID,
		Rating:         rating,
		OccurredAt:     now,
	})
	return saved, nil
}
