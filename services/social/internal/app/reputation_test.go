package app

import (
	"context"
	"testing"
	"time"

	"teeup/pkg/domain"
	"teeup/pkg/store"
)

// seedCompletedRound writes a completed round with the given participant
// status directly into the store.
func seedCompletedRound(t *testing.T, st *store.MemoryStore, roundID, profileID string, status domain.ParticipationStatus, joinedAt time.Time) {
	t.Helper()
	if err := st.CreateRound(domain.Round{
		ID:       roundID,
		CourseID: "c1",
		Date:     "2025-01-10",
		Time:     "08:00",
		Status:   domain.RoundCompleted,
	}); err != nil {
		t.Fatalf("seed round: %v", err)
	}
	if err := st.InsertRoundPlayer(domain.RoundPlayer{
		RoundID:             roundID,
		ProfileID:           profileID,
		ParticipationStatus: status,
		JoinedAt:            joinedAt,
	}); err != nil {
		t.Fatalf("seed participant: %v", err)
	}
}

func TestReputationAggregates(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")
	seedProfile(t, st, "p2", "Bob")
	seedCourse(t, st, "c1", "Sunningdale Old")
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	seedCompletedRound(t, st, "r1", "p1", domain.ParticipationPresent, base)
	seedCompletedRound(t, st, "r2", "p1", domain.ParticipationPresent, base.Add(time.Hour))
	seedCompletedRound(t, st, "r3", "p1", domain.ParticipationNoShow, base.Add(2*time.Hour))

	for _, r := range []domain.Review{
		{ID: "rev1", RoundID: "r1", ReviewerID: "p2", ReviewedUserID: "p1", Rating: 4},
		{ID: "rev2", RoundID: "r2", ReviewerID: "p2", ReviewedUserID: "p1", Rating: 5},
	} {
		if _, err := st.UpsertReview(r); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	kpis, err := a.Reputation(ctx, "p1")
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if kpis.RoundsPlayed != 3 {
		t.Fatalf("roundsPlayed = %d, want 3", kpis.RoundsPlayed)
	}
	if kpis.ReliabilityPercent == nil || *kpis.ReliabilityPercent != 67 {
		t.Fatalf("reliabilityPercent = %v, want 67", kpis.ReliabilityPercent)
	}
	if kpis.ReliabilitySampleSize != 3 {
		t.Fatalf("reliabilitySampleSize = %d, want 3", kpis.ReliabilitySampleSize)
	}
	if kpis.AverageRating == nil || *kpis.AverageRating != 4.5 {
		t.Fatalf("averageRating = %v, want 4.5", kpis.AverageRating)
	}
	if kpis.ReviewsCount != 2 {
		t.Fatalf("reviewsCount = %d, want 2", kpis.ReviewsCount)
	}
}

func TestReputationEmptyHistory(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")

	kpis, err := a.Reputation(context.Background(), "p1")
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if kpis.RoundsPlayed != 0 || kpis.ReliabilityPercent != nil || kpis.AverageRating != nil {
		t.Fatalf("empty history must yield zero values and nulls: %+v", kpis)
	}
}

func TestReputationToleratesOlderSchemas(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")
	seedCourse(t, st, "c1", "Sunningdale Old")

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	seedCompletedRound(t, st, "r1", "p1", domain.ParticipationPresent, base)

	st.SimulateLegacyParticipationColumn()
	st.SimulateMissingReviewsTable()

	kpis, err := a.Reputation(context.Background(), "p1")
	if err != nil {
		t.Fatalf("reputation on old schema: %v", err)
	}
	if kpis.RoundsPlayed != 1 {
		t.Fatalf("roundsPlayed = %d, want 1 (count query still works)", kpis.RoundsPlayed)
	}
	if kpis.ReliabilityPercent != nil || kpis.ReliabilitySampleSize != 0 {
		t.Fatalf("reliability must degrade to null on old schema: %+v", kpis)
	}
	if kpis.AverageRating != nil || kpis.ReviewsCount != 0 {
		t.Fatalf("rating must degrade to null on old schema: %+v", kpis)
	}
}

func TestProfileReviewsDegradeWhenTableMissing(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")
	st.SimulateMissingReviewsTable()

	reviews, err := a.ProfileReviews(context.Background(), "p1")
	if err != nil {
		t.Fatalf("profile reviews: %v", err)
	}
	if len(reviews) != 0 {
		t.Fatalf("expected empty list, got %+v", reviews)
	}
}

func TestRoundReviewTargetsExcludeSelfAndJoinExisting(t *testing.T) {
	a, st, _ := newTestApp(t)
	seedProfile(t, st, "p1", "Alice")
	seedProfile(t, st, "p2", "Bob")
	seedProfile(t, st, "p3", "Cara")
	seedCourse(t, st, "c1", "Sunningdale Old")
	ctx := context.Background()

	round, err := a.CreateRound(ctx, "p1", validRoundInput("c1"))
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	if err := a.JoinRound(ctx, "p2", round.ID); err != nil {
		t.Fatalf("join p2: %v", err)
	}
	if err := a.JoinRound(ctx, "p3", round.ID); err != nil {
		t.Fatalf("join p3: %v", err)
	}
	if _, err := a.UpsertReview(ctx, "p1", round.ID, "p2", 5, "  great playing partner  "); err != nil {
		t.Fatalf("upsert review: %v", err)
	}

	targets, err := a.RoundReviewTargets(ctx, "p1", round.ID)
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %+v", targets)
	}
	byID := map[string]domain.ReviewTarget{}
	for _, target := range targets {
		if target.ProfileID == "p1" {
			t.Fatalf("caller must not be a review target")
		}
		byID[target.ProfileID] = target
	}
	reviewed := byID["p2"]
	if reviewed.ExistingRating == nil || *reviewed.ExistingRating != 5 {
		t.Fatalf("existing rating not joined: %+v", reviewed)
	}
	if reviewed.ExistingComment == nil || *reviewed.ExistingComment != "great playing partner" {
		t.Fatalf("existing comment not joined or not trimmed: %+v", reviewed)
	}
	if fresh := byID["p3"]; fresh.ExistingRating != nil {
		t.Fatalf("unreviewed target must have no existing rating: %+v", fresh)
	}
}
