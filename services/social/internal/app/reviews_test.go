package app

import (
	"context"
	"errors"
	"testing"
)

func TestUpsertReviewValidation(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")
	seedProfile(t, st, "p2", "Bob")
	seedCourse(t, st, "c1", "Sunningdale Old")
	ctx := context.Background()

	round, err := a.CreateRound(ctx, "p1", validRoundInput("c1"))
	if err != nil {
		t.Fatalf("create round: %v", err)
	}

	if _, err := a.UpsertReview(ctx, "p1", round.ID, "p2", 0, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating 0: err = %v, want ErrInvalidRating", err)
	}
	if _, err := a.UpsertReview(ctx, "p1", round.ID, "p2", 6, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("rating 6: err = %v, want ErrInvalidRating", err)
	}
	if _, err := a.UpsertReview(ctx, "p1", round.ID, "p1", 4, ""); !errors.Is(err, ErrSelfReview) {
		t.Fatalf("self review: err = %v, want ErrSelfReview", err)
	}
	if _, err := a.UpsertReview(ctx, "p1", "missing", "p2", 4, ""); !errors.Is(err, ErrRoundNotFound) {
		t.Fatalf("missing round: err = %v, want ErrRoundNotFound", err)
	}
	if _, err := a.UpsertReview(ctx, "", round.ID, "p2", 4, ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("anonymous: err = %v, want ErrNotAuthenticated", err)
	}
}

func TestUpsertReviewReplacesInPlace(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")
	seedProfile(t, st, "p2", "Bob")
	seedCourse(t, st, "c1", "Sunningdale Old")
	ctx := context.Background()

	round, err := a.CreateRound(ctx, "p1", validRoundInput("c1"))
	if err != nil {
		t.Fatalf("create round: %v", err)
	}

	first, err := a.UpsertReview(ctx, "p1", round.ID, "p2", 3, "  solid short game  ")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Comment != "solid short game" {
		t.Fatalf("comment not trimmed: %q", first.Comment)
	}

	second, err := a.UpsertReview(ctx, "p1", round.ID, "p2", 5, "actually brilliant")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Rating != 5 || second.Comment != "actually brilliant" {
		t.Fatalf("upsert did not replace: %+v", second)
	}

	ratings, err := st.ListRatings("p2")
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(ratings) != 1 || ratings[0] != 5 {
		t.Fatalf("resubmission must replace, not append: %v", ratings)
	}
}
